// Package transformations provides the SQLite persistence of character
// transformations.
package transformations
