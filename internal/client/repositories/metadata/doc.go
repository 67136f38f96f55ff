// Package metadata stores cache bookkeeping in a key/value table.
package metadata
