// Package bruteforce provides an exact descriptor index that answers
// nearest-match queries by scanning all entries in position order with
// Euclidean distance. It supports a compact binary format used by snapshots.
package bruteforce
