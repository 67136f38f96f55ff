// Package characters provides the SQLite persistence of cached characters and
// the joined read that combines a character with its origin planet and
// transformations.
package characters
