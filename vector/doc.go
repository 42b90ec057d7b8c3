// Package vector defines the face descriptor model and the SQLite-backed
// descriptor table used by this project. It includes:
//   - Descriptor and the Table persistence interface
//   - SQLiteTable: durable, append-only storage for descriptors
//   - Schema helpers with immutability triggers
//   - Descriptor encoding (BLOB) and distance functions
package vector
