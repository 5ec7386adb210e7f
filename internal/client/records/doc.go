// Package records provides the console's local record store and the
// ingestion engine that decodes the server's flat leaf-update stream into
// it.
//
// # Data Model
//
// Each table holds one Record per root identifier ("0.4.17" for card 17).
// A record carries its scalar fields by logical name, nested collections
// (card groups, group doors) keyed by their sub-identifier, a lifecycle
// status and a liveness timestamp refreshed on every touch.
//
// # Ingestion
//
// Engine.Ingest routes every update by the longest matching table base,
// captures the record root with the table's root pattern and dispatches the
// remainder through the schema. Records are created lazily with blank
// fields. Updates that cannot be routed are dropped and counted; ingestion
// never fails.
//
// # Tombstones
//
// A record whose status is "deleted" is kept until it has gone untouched
// for the grace window, then Store.Sweep evicts it. Live records are never
// evicted, however long they go unmentioned.
//
// # Concurrency
//
// Store and Engine are not safe for concurrent use. The console service
// serializes every access behind its own lock.
package records
