package schema

// Default returns the registry for the standard access-control tables.
func Default() *Registry {
	r, err := NewRegistry(
		Table{
			Tag:  Interfaces,
			Base: "0.1",
			Fields: []Field{
				{Name: "name", Suffix: ".1", Kind: KindName},
				{Name: "bind", Suffix: ".2"},
				{Name: "broadcast", Suffix: ".3"},
				{Name: "listen", Suffix: ".4"},
			},
		},
		Table{
			Tag:  Controllers,
			Base: "0.2",
			Fields: []Field{
				{Name: "name", Suffix: ".1", Kind: KindName},
				{Name: "deviceID", Suffix: ".2", Kind: KindNumber},
				{Name: "address", Suffix: ".3"},
				{Name: "datetime", Suffix: ".4", Kind: KindDateTime},
				{Name: "cards", Suffix: ".5", Kind: KindNumber, ReadOnly: true},
				{Name: "events", Suffix: ".6", Kind: KindNumber, ReadOnly: true},
				{Name: "interface", Suffix: ".7"},
			},
			DeleteWhen: []string{"name", "deviceID"},
		},
		Table{
			Tag:  Doors,
			Base: "0.3",
			Fields: []Field{
				{Name: "name", Suffix: ".1", Kind: KindName},
				{Name: "controller", Suffix: ".2"},
				{Name: "deviceID", Suffix: ".3", Kind: KindNumber},
				{Name: "door", Suffix: ".4", Kind: KindNumber},
				{Name: "delay", Suffix: ".5", Kind: KindNumber},
				{Name: "mode", Suffix: ".6", Kind: KindEnum},
				{Name: "keypad", Suffix: ".7", Kind: KindBoolean},
			},
			DeleteWhen: []string{"name"},
		},
		Table{
			Tag:  Cards,
			Base: "0.4",
			Fields: []Field{
				{Name: "name", Suffix: ".1", Kind: KindName},
				{Name: "number", Suffix: ".2", Kind: KindNumber},
				{Name: "from", Suffix: ".3", Kind: KindDate},
				{Name: "to", Suffix: ".4", Kind: KindDate},
				{Name: "PIN", Suffix: ".6", Kind: KindNumber},
			},
			Collections: []Collection{
				{Name: "groups", Suffix: ".5", LabelSuffix: ".1"},
			},
			DeleteWhen: []string{"name", "number"},
		},
		Table{
			Tag:  Groups,
			Base: "0.5",
			Fields: []Field{
				{Name: "name", Suffix: ".1", Kind: KindName},
			},
			Collections: []Collection{
				{Name: "doors", Suffix: ".2", LabelSuffix: ".1"},
			},
			DeleteWhen: []string{"name"},
		},
		Table{
			Tag:      Events,
			Base:     "0.6",
			ReadOnly: true,
			Fields: []Field{
				{Name: "timestamp", Suffix: ".1", Kind: KindDateTime},
				{Name: "deviceID", Suffix: ".2", Kind: KindNumber},
				{Name: "index", Suffix: ".3", Kind: KindNumber},
				{Name: "type", Suffix: ".4", Kind: KindEnum},
				{Name: "door", Suffix: ".5", Kind: KindNumber},
				{Name: "direction", Suffix: ".6", Kind: KindEnum},
				{Name: "card", Suffix: ".7", Kind: KindNumber},
				{Name: "granted", Suffix: ".8", Kind: KindBoolean},
				{Name: "reason", Suffix: ".9", Kind: KindEnum},
			},
		},
		Table{
			Tag:      Logs,
			Base:     "0.7",
			ReadOnly: true,
			Fields: []Field{
				{Name: "timestamp", Suffix: ".1", Kind: KindDateTime},
				{Name: "uid", Suffix: ".2"},
				{Name: "item", Suffix: ".3"},
				{Name: "itemID", Suffix: ".4"},
				{Name: "itemName", Suffix: ".5", Kind: KindName},
				{Name: "field", Suffix: ".6"},
				{Name: "details", Suffix: ".7"},
			},
		},
		Table{
			Tag:  Users,
			Base: "0.8",
			Fields: []Field{
				{Name: "name", Suffix: ".1", Kind: KindName},
				{Name: "uid", Suffix: ".2"},
				{Name: "role", Suffix: ".3", Kind: KindEnum},
				{Name: "password", Suffix: ".4"},
			},
			DeleteWhen: []string{"name", "uid"},
		},
	)
	if err != nil {
		panic(err)
	}
	return r
}
