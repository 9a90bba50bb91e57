// Package comments implements the optimistic write path for new comments.
//
// Submit validates a Draft, reserves a comment id right away, and schedules
// the append after a fixed delay that stands in for network latency. When
// the delay elapses the comment is stamped with the current time and
// appended to the comment collection.
//
// The caller receives a Pending handle carrying a ULID request token. It
// can wait on Done or Wait, poll Result, or Cancel. Cancellation (through
// the handle, the token, or the submit context) before the commit leaves
// the collection untouched; the reserved id is not reused.
package comments
