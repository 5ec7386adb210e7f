// Package common contains constants and sentinel errors shared by the
// console and the device tree server.
package common

// OperatorHeaderName is the gRPC metadata key naming the operator on whose
// behalf a request is made.
const OperatorHeaderName = "x-operator"

// BatchHeaderName is the gRPC metadata key carrying the identifier of a
// commit batch, so both sides log the same id.
const BatchHeaderName = "x-batch-id"

// TokenHeaderName is the gRPC metadata key carrying the operator token when
// the server requires one.
const TokenHeaderName = "authorization"
