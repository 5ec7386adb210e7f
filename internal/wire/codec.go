package wire

import (
	"fmt"

	"github.com/dmitrijs2005/accessconsole/internal/oid"
	"github.com/dmitrijs2005/accessconsole/internal/schema"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	keyTable   = "table"
	keyObjects = "objects"
	keyDeleted = "deleted"
	keyOID     = "OID"
	keyOid     = "oid"
	keyValue   = "value"
)

// EncodePoll builds a poll request for tag.
func EncodePoll(tag schema.Tag) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		keyTable: structpb.NewStringValue(string(tag)),
	}}
}

// DecodePoll extracts the table tag from a poll request.
func DecodePoll(s *structpb.Struct) (schema.Tag, error) {
	tag := s.GetFields()[keyTable].GetStringValue()
	if tag == "" {
		return "", fmt.Errorf("%w: missing table", ErrMalformed)
	}
	return schema.Tag(tag), nil
}

// EncodeSubmission builds a submit request.
func EncodeSubmission(tag schema.Tag, sub Submission) *structpb.Struct {
	objects := make([]*structpb.Value, 0, len(sub.Objects))
	for _, o := range sub.Objects {
		objects = append(objects, structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			keyOid:   structpb.NewStringValue(string(o.OID)),
			keyValue: structpb.NewStringValue(o.Value),
		}}))
	}

	deleted := make([]*structpb.Value, 0, len(sub.Deleted))
	for _, o := range sub.Deleted {
		deleted = append(deleted, structpb.NewStringValue(string(o)))
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		keyTable:   structpb.NewStringValue(string(tag)),
		keyObjects: structpb.NewListValue(&structpb.ListValue{Values: objects}),
		keyDeleted: structpb.NewListValue(&structpb.ListValue{Values: deleted}),
	}}
}

// DecodeSubmission is the inverse of EncodeSubmission.
func DecodeSubmission(s *structpb.Struct) (schema.Tag, Submission, error) {
	tag, err := DecodePoll(s)
	if err != nil {
		return "", Submission{}, err
	}

	var sub Submission
	for i, v := range s.GetFields()[keyObjects].GetListValue().GetValues() {
		fields := v.GetStructValue().GetFields()
		if fields == nil {
			return "", Submission{}, fmt.Errorf("%w: object %d is not a struct", ErrMalformed, i)
		}
		o := fields[keyOid].GetStringValue()
		if o == "" {
			return "", Submission{}, fmt.Errorf("%w: object %d has no oid", ErrMalformed, i)
		}
		sub.Objects = append(sub.Objects, Object{OID: oid.OID(o), Value: fields[keyValue].GetStringValue()})
	}

	for i, v := range s.GetFields()[keyDeleted].GetListValue().GetValues() {
		o := v.GetStringValue()
		if o == "" {
			return "", Submission{}, fmt.Errorf("%w: deleted entry %d is empty", ErrMalformed, i)
		}
		sub.Deleted = append(sub.Deleted, oid.OID(o))
	}

	return tag, sub, nil
}

// EncodeResponse builds a response message keyed by table name.
func EncodeResponse(r Response) *structpb.Struct {
	out := &structpb.Struct{Fields: make(map[string]*structpb.Value, len(r))}
	for tag, updates := range r {
		list := make([]*structpb.Value, 0, len(updates))
		for _, u := range updates {
			list = append(list, structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
				keyOID:   structpb.NewStringValue(string(u.OID)),
				keyValue: structpb.NewStringValue(u.Value),
			}}))
		}
		out.Fields[string(tag)] = structpb.NewListValue(&structpb.ListValue{Values: list})
	}
	return out
}

// DecodeResponse is the inverse of EncodeResponse. Entries without an OID
// are skipped; the ingestion engine filters anything else it cannot route.
func DecodeResponse(s *structpb.Struct) (Response, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: empty response", ErrMalformed)
	}

	r := make(Response, len(s.GetFields()))
	for tag, v := range s.GetFields() {
		list := v.GetListValue()
		if list == nil {
			return nil, fmt.Errorf("%w: table %q is not a list", ErrMalformed, tag)
		}
		updates := make([]Update, 0, len(list.GetValues()))
		for _, item := range list.GetValues() {
			fields := item.GetStructValue().GetFields()
			o := fields[keyOID].GetStringValue()
			if o == "" {
				continue
			}
			updates = append(updates, Update{OID: oid.OID(o), Value: fields[keyValue].GetStringValue()})
		}
		r[schema.Tag(tag)] = updates
	}
	return r, nil
}
