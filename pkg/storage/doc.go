// Package storage provides the pluggable backends that hold alert packets
// and alert schemas for the alert database server.
//
// # Overview
//
// The alert archive is a write-once store populated by the nightly alert
// distribution pipeline. This package only reads from it: given an identifier
// supplied by a caller, it resolves a storage key and fetches the bytes from
// whichever backend the process was configured with at startup.
//
// # Addressing
//
// Callers address objects by (Kind, identifier) only, never by raw storage
// key. ResolveKey is pure and deterministic: the same kind and identifier
// always produce the same key, with alerts and schemas kept in disjoint
// namespaces so a single backend can serve both. Identifier validation is the
// system's defense against path traversal and key injection, so it runs
// before any key is constructed and before any I/O happens.
//
// # Backends
//
// Three implementations of the Backend interface are provided:
//
//   - FileSystemBackend reads from a directory tree on local disk. Best for
//     development and small test archives.
//   - S3Backend reads from an S3-compatible object store (AWS, Ceph, MinIO).
//   - GCSBackend reads from a Google Cloud Storage bucket.
//
// Exactly one backend is selected at process startup via Config; the
// retrieval layer is written against the Backend interface only.
//
// # Error taxonomy
//
// Every backend failure is classified into one of three sentinel errors
// before it crosses the package boundary:
//
//   - ErrInvalidID: the identifier failed syntax validation (client error).
//   - ErrNotFound: no object exists at the resolved key. This is a normal
//     outcome, not a fault.
//   - ErrUnavailable: the storage medium itself failed (network, auth, disk,
//     permissions). Unclassifiable errors default here so a backend outage is
//     never mistaken for missing data.
//
// No backend retries internally. Retry and backoff policy, if any, belongs to
// the operator layer; blind retries on the synchronous serving path would
// amplify backend load during an outage.
package storage
