// Package logtail reads the end of trailhead's glog files for the logs view.
//
// Read scans the file once and keeps the last maxLines matches in a ring
// buffer, so memory stays O(maxLines) however large the log grows. glog's
// four header lines are skipped. Lines without a glog prefix (wrapped
// multi-line messages) inherit the severity of the line above them, which
// keeps them with their parent when filtering by severity.
//
// Missing files read as empty: glog only creates the file on first write.
package logtail
