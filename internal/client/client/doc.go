// Package client talks to the device tree server on behalf of the console.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface): Poll fetches
//     a table, Submit sends a commit batch. Both return leaf updates keyed by
//     table name.
//  2. A gRPC implementation (see GRPCClient) that invokes the console service
//     with structpb messages, tags every call with the operator name and maps
//     gRPC status codes to the errors below.
//
// # Error Handling
//
// Transport conditions are sentinels matched with errors.Is: ErrUnavailable,
// ErrUnauthorized. A refusal carrying a message from the server is a
// *RejectedError, matched with errors.As.
//
// # Concurrency & Contexts
//
// GRPCClient is safe for concurrent use. Every call takes a context and
// additionally bounds itself with the client's request timeout.
package client
