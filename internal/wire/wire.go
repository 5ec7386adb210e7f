// Package wire defines the shapes exchanged between the console and the
// device tree server and their protobuf (structpb) encoding.
//
// Both poll responses and submission responses carry leaf updates keyed by
// table name, so the console decodes them identically.
package wire

import (
	"errors"

	"github.com/dmitrijs2005/accessconsole/internal/oid"
	"github.com/dmitrijs2005/accessconsole/internal/schema"
)

const (
	ServiceName  = "accessconsole.v1.Console"
	PollMethod   = "/" + ServiceName + "/Poll"
	SubmitMethod = "/" + ServiceName + "/Submit"
)

// NewRecordOID and NewRecordValue form the sentinel submission that asks the
// server to allocate a new record in a table.
const (
	NewRecordOID   oid.OID = "<new>"
	NewRecordValue         = "new"
)

var ErrMalformed = errors.New("malformed message")

// Update is one leaf of the server tree.
type Update struct {
	OID   oid.OID `json:"OID"`
	Value string  `json:"value"`
}

// Object is one edited leaf in a submission.
type Object struct {
	OID   oid.OID `json:"oid"`
	Value string  `json:"value"`
}

// Submission is a batched commit request.
type Submission struct {
	Objects []Object  `json:"objects"`
	Deleted []oid.OID `json:"deleted"`
}

// Empty reports whether the submission carries nothing.
func (s Submission) Empty() bool {
	return len(s.Objects) == 0 && len(s.Deleted) == 0
}

// Response is a leaf update stream keyed by table.
type Response map[schema.Tag][]Update

// Len counts the updates across all tables.
func (r Response) Len() int {
	n := 0
	for _, list := range r {
		n += len(list)
	}
	return n
}
