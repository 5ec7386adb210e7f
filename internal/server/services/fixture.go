package services

import (
	"github.com/dmitrijs2005/accessconsole/internal/oid"
	"github.com/dmitrijs2005/accessconsole/internal/schema"
	"github.com/dmitrijs2005/accessconsole/internal/wire"
)

type site wire.Response

// record adds a live record. kv alternates suffix and value.
func (s site) record(tag schema.Tag, root oid.OID, kv ...string) {
	s[tag] = append(s[tag], wire.Update{OID: root, Value: StatusOK})
	for i := 0; i+1 < len(kv); i += 2 {
		s[tag] = append(s[tag], wire.Update{OID: root.Append(kv[i]), Value: kv[i+1]})
	}
}

// DemoSite is a small installation used to seed an empty tree: two
// controllers with three doors, two access groups, three cards and a few
// events and log lines.
func DemoSite() wire.Response {
	s := make(site)

	s.record(schema.Interfaces, "0.1.1",
		".1", "LAN", ".2", "192.168.1.100:0", ".3", "192.168.1.255:60000", ".4", "192.168.1.100:60001")

	s.record(schema.Controllers, "0.2.1",
		".1", "Alpha", ".2", "405419896", ".3", "192.168.1.100", ".4", "2026-01-05 08:30:00",
		".5", "3", ".6", "2", ".7", "LAN")
	s.record(schema.Controllers, "0.2.2",
		".1", "Beta", ".2", "303986753", ".3", "192.168.1.101", ".4", "2026-01-05 08:30:02",
		".5", "1", ".6", "0", ".7", "LAN")

	s.record(schema.Doors, "0.3.1",
		".1", "Front Door", ".2", "Alpha", ".3", "405419896", ".4", "1", ".5", "5", ".6", "controlled", ".7", "false")
	s.record(schema.Doors, "0.3.2",
		".1", "Back Door", ".2", "Alpha", ".3", "405419896", ".4", "2", ".5", "5", ".6", "controlled", ".7", "false")
	s.record(schema.Doors, "0.3.3",
		".1", "Garage", ".2", "Beta", ".3", "303986753", ".4", "1", ".5", "10", ".6", "normally closed", ".7", "true")

	s.record(schema.Groups, "0.5.1",
		".1", "Staff",
		".2.1", "true", ".2.1.1", "Front Door",
		".2.2", "true", ".2.2.1", "Back Door",
		".2.3", "true", ".2.3.1", "Garage")
	s.record(schema.Groups, "0.5.2",
		".1", "Visitors",
		".2.1", "true", ".2.1.1", "Front Door",
		".2.2", "false", ".2.2.1", "Back Door",
		".2.3", "false", ".2.3.1", "Garage")

	s.record(schema.Cards, "0.4.1",
		".1", "Alice", ".2", "10058400", ".3", "2026-01-01", ".4", "2026-12-31", ".6", "7531",
		".5.1", "true", ".5.1.1", "Staff",
		".5.2", "false", ".5.2.1", "Visitors")
	s.record(schema.Cards, "0.4.2",
		".1", "Bob", ".2", "10058401", ".3", "2026-01-01", ".4", "2026-12-31", ".6", "",
		".5.1", "true", ".5.1.1", "Staff",
		".5.2", "true", ".5.2.1", "Visitors")
	s.record(schema.Cards, "0.4.3",
		".1", "Courier", ".2", "10058402", ".3", "2026-03-01", ".4", "2026-03-31", ".6", "",
		".5.1", "false", ".5.1.1", "Staff",
		".5.2", "true", ".5.2.1", "Visitors")

	s.record(schema.Events, "0.6.1",
		".1", "2026-01-05 08:31:12", ".2", "405419896", ".3", "1", ".4", "card", ".5", "1",
		".6", "in", ".7", "10058400", ".8", "true", ".9", "ok")
	s.record(schema.Events, "0.6.2",
		".1", "2026-01-05 08:35:40", ".2", "405419896", ".3", "2", ".4", "card", ".5", "2",
		".6", "in", ".7", "10058402", ".8", "false", ".9", "no access rights")

	s.record(schema.Logs, "0.7.1",
		".1", "2026-01-05 08:00:00", ".2", "admin", ".3", "card", ".4", "10058402",
		".5", "Courier", ".6", "groups", ".7", "added to Visitors")

	s.record(schema.Users, "0.8.1",
		".1", "Administrator", ".2", "admin", ".3", "admin", ".4", "")

	return wire.Response(s)
}
