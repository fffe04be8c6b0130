// Package session serializes access to sessions within one process.
//
// Locker is the in-process counterpart of the Redis locker: it keeps two
// agents in the same process from driving one session at the same time.
package session
