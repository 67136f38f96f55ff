// Package cli provides the interactive command-line client of the cache.
//
// It wires configuration, the local record store, the remote client, the
// synchronization engine and the cache reader behind a REPL. A background
// watcher pings the remote API and switches the prompt between online and
// offline; every read works offline from the local cache.
//
// Commands:
//   - refresh [kind] [id]    fetch from the remote API into the cache
//   - list <kind>            list cached records
//   - show <kind> <id>       show one cached record
//   - fav / unfav <kind> <id>
//   - delete <kind> <id>
//   - addchar / addplanet    add a local record (interactive prompts)
//   - watch <kind> [id] [s]  print live updates for a few seconds
//   - prune                  drop transformations of deleted characters
//   - status                 last sync time per kind
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher and runREPL for details.
package cli
