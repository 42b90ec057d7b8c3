// Package index defines a minimal abstraction for in-memory descriptor
// indexes that can be appended to, queried for the nearest entry, and
// serialized for persistence. Implementations in this module include an
// exact brute-force scan.
package index
