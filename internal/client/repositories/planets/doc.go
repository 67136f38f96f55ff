// Package planets provides the SQLite persistence of cached planets.
//
// Rows written by a sync go through Upsert, which overwrites remote-origin
// columns only; the locally owned favorite flag changes exclusively through
// SetFavorite. Locally created planets go through Insert, which refuses to
// overwrite an existing id.
package planets
