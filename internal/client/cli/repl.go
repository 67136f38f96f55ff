package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for REPL output. In tests, replace it with a stub.
var printlnFn = fmt.Println

const helpText = `Available commands:
  refresh [kind] [id]     fetch from the remote API (all kinds when omitted)
  list <kind>             list cached characters or planets
  show <kind> <id>        show one cached record
  fav | unfav <kind> <id> mark or unmark a favorite
  delete <kind> <id>      remove a record from the cache
  addchar | addplanet     add a local record
  watch <kind> [id] [s]   print live updates for s seconds (default 10)
  prune                   drop transformations of deleted characters
  status                  show last sync time per kind
  exit | quit             leave the program`

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Refresh(ctx context.Context, args []string) error
	List(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Favorite(ctx context.Context, args []string, favorite bool) error
	Delete(ctx context.Context, args []string) error
	AddCharacter(ctx context.Context) error
	AddPlanet(ctx context.Context) error
	Watch(ctx context.Context, args []string) error
	Prune(ctx context.Context) error
	Status(ctx context.Context) error
}

// runREPL reads a line from reader, parses the first token as the command
// and dispatches to a. The loop exits on EOF, when ctx is done or when the
// user types "exit" or "quit".
//
// The prompt shows the connectivity status returned by statusFn. Reads work
// in either state; refresh reports a transport failure while offline.
//
// Errors returned by command handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("db> %s > ", statusFn()))
		line, ok := readLine(reader)
		if !ok {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help", "h":
			printlnFn(helpText)

		case "refresh", "r":
			err = a.Refresh(ctx, args)

		case "list", "l":
			err = a.List(ctx, args)

		case "show":
			err = a.Show(ctx, args)

		case "fav":
			err = a.Favorite(ctx, args, true)

		case "unfav":
			err = a.Favorite(ctx, args, false)

		case "delete", "rm":
			err = a.Delete(ctx, args)

		case "addchar":
			err = a.AddCharacter(ctx)

		case "addplanet":
			err = a.AddPlanet(ctx)

		case "watch":
			err = a.Watch(ctx, args)

		case "prune":
			err = a.Prune(ctx)

		case "status":
			err = a.Status(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}
