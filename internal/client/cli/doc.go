// Package cli provides the interactive operator console.
//
// It wires configuration, the server client and the services.Console, starts
// the background poll and sweep loop, and runs a read-eval-print loop whose
// output is a projection of the console state: every field is printed with
// its value and a marker for modified (*), pending (~) and conflict (!).
//
// Commands:
//   - tables, list <table>, show <oid>
//   - set <oid> [value], commit <oid>..., rollback <oid>, new <table>
//   - poll [table], sweep, stats, help, exit
//
// The REPL is started via App.Run(ctx), which blocks until the operator exits.
package cli
