// Package repositories implements the client's durable key-value storage.
//
// The storage plays the role a browser's local storage plays for a web front end: it survives restarts and holds the session under two keys, [KeyToken] and [KeyUser].
// The store package is its only writer; the HTTP client reads the token from it on every request.
//
// Implementations:
//   - [SQLiteStorage] : A local_storage table created by the embedded migrations (default)
//   - [BoltStorage] : A single BoltDB bucket holding raw values
//   - [MemoryStorage] : A map guarded by a mutex, for tests and throwaway sessions
//
// [Open] selects an implementation from [shared.StorageConfig].
package repositories
