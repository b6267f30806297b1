// Package store persists the session text between runs.
//
// A Record is serialized as a small JSON object:
//
//	{"text": "..."}
//
// Two Store implementations are provided: FileStore writes the record to a
// file with an atomic rename, RedisStore keeps it under a single redis key.
// An Autosaver subscribes to engine changes and saves the latest text once
// edits have been quiet for a debounce window.
package store
