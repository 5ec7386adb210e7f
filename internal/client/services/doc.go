// Package services ties the record store, the ingestion engine and the
// field edit tracker to the server client.
//
// A Console is the only writer of both the store and the tracker. Server
// responses are applied in bounded chunks under the console lock, one whole
// response at a time, so operator edits can interleave between chunks but
// never observe two responses half applied. Network calls are made without
// holding the lock.
package services
