package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to. App satisfies it;
// tests provide a lightweight stub.
type execIface interface {
	Tables(ctx context.Context) error
	List(ctx context.Context, table string) error
	Show(ctx context.Context, id string) error
	Set(ctx context.Context, id, value string) error
	Commit(ctx context.Context, ids []string) error
	Rollback(ctx context.Context, id string) error
	New(ctx context.Context, table string) error
	Poll(ctx context.Context, table string) error
	Sweep(ctx context.Context) error
	Stats(ctx context.Context) error
}

const helpText = `Commands:
  tables                 list tables
  list <table>           list records with their edit badges
  show <oid>             show a record's fields
  set <oid> [value...]   edit a field (no value blanks it)
  commit <oid>...        submit the edits of records
  rollback <oid>         discard the edits of a record
  new <table>            create a record
  poll [table]           fetch now
  sweep                  evict expired deleted records
  stats                  counters
  exit | quit`

var errUsage = errors.New("usage")

// runREPL reads commands from reader until EOF or exit. Command errors are
// printed and the loop carries on. The prompt is printed only when prompt is
// set, so piped scripts produce clean output.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer, prompt bool) {
	for {
		if prompt {
			fmt.Fprintf(w, "ac%s> ", statusFn())
		}
		line, readErr := reader.ReadString('\n')
		parts := strings.Fields(line)

		if len(parts) > 0 {
			if quit := dispatch(ctx, a, parts, w); quit {
				return
			}
		}
		if readErr != nil {
			return
		}
	}
}

func dispatch(ctx context.Context, a execIface, parts []string, w io.Writer) bool {
	cmd, args := parts[0], parts[1:]

	var err error
	switch cmd {
	case "help":
		fmt.Fprintln(w, helpText)
	case "tables":
		err = a.Tables(ctx)
	case "list", "l":
		err = needArgs(args, 1, "list <table>")
		if err == nil {
			err = a.List(ctx, args[0])
		}
	case "show":
		err = needArgs(args, 1, "show <oid>")
		if err == nil {
			err = a.Show(ctx, args[0])
		}
	case "set":
		err = needArgs(args, 1, "set <oid> [value...]")
		if err == nil {
			err = a.Set(ctx, args[0], strings.Join(args[1:], " "))
		}
	case "commit":
		err = needArgs(args, 1, "commit <oid>...")
		if err == nil {
			err = a.Commit(ctx, args)
		}
	case "rollback":
		err = needArgs(args, 1, "rollback <oid>")
		if err == nil {
			err = a.Rollback(ctx, args[0])
		}
	case "new":
		err = needArgs(args, 1, "new <table>")
		if err == nil {
			err = a.New(ctx, args[0])
		}
	case "poll":
		table := ""
		if len(args) > 0 {
			table = args[0]
		}
		err = a.Poll(ctx, table)
	case "sweep":
		err = a.Sweep(ctx)
	case "stats":
		err = a.Stats(ctx)
	case "exit", "quit":
		fmt.Fprintln(w, "Bye!")
		return true
	default:
		fmt.Fprintln(w, "Unknown command:", cmd)
	}

	if err != nil {
		fmt.Fprintln(w, "error:", err)
	}
	return false
}

func needArgs(args []string, n int, usage string) error {
	if len(args) < n {
		return fmt.Errorf("%w: %s", errUsage, usage)
	}
	return nil
}
