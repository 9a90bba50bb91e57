package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Severity mirrors glog's levels.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "WARN"
	case Error:
		return "ERROR"
	case Fatal:
		return "FATAL"
	default:
		return "INFO"
	}
}

// Line is one parsed log line.
type Line struct {
	Severity Severity
	Time     string // "mmdd hh:mm:ss.uuuuuu"; empty for continuation lines
	Source   string // file:line
	Message  string
}

// I1019 14:32:15.123456   12345 core.go:42] message
var glogLine = regexp.MustCompile(`^([IWEF])(\d{4} \d{2}:\d{2}:\d{2}\.\d+)\s+\d+\s+([^\]]+)\] ?(.*)$`)

var headerPrefixes = []string{
	"Log file created at:",
	"Running on machine:",
	"Binary:",
	"Log line format:",
}

// Parse splits a glog line into its parts. Lines that do not carry a glog
// prefix are continuations and inherit prev's severity.
func Parse(raw string, prev Severity) Line {
	m := glogLine.FindStringSubmatch(raw)
	if m == nil {
		return Line{Severity: prev, Message: raw}
	}
	return Line{
		Severity: severityFromLetter(m[1]),
		Time:     m[2],
		Source:   m[3],
		Message:  m[4],
	}
}

func severityFromLetter(s string) Severity {
	switch s {
	case "W":
		return Warning
	case "E":
		return Error
	case "F":
		return Fatal
	default:
		return Info
	}
}

// Read returns at most maxLines of the file's last lines at or above min,
// oldest first. maxLines <= 0 means no limit. A missing file yields no lines.
func Read(path string, maxLines int, min Severity) ([]Line, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	var ring []Line
	if maxLines > 0 {
		ring = make([]Line, 0, maxLines)
	}
	idx := 0
	prev := Info

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		raw := scanner.Text()
		if isHeader(raw) {
			continue
		}
		line := Parse(raw, prev)
		prev = line.Severity
		if line.Severity < min {
			continue
		}
		switch {
		case maxLines <= 0 || len(ring) < maxLines:
			ring = append(ring, line)
		default:
			ring[idx] = line
			idx = (idx + 1) % maxLines
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	if idx == 0 {
		return ring, nil
	}
	out := make([]Line, 0, len(ring))
	out = append(out, ring[idx:]...)
	return append(out, ring[:idx]...), nil
}

func isHeader(raw string) bool {
	for _, p := range headerPrefixes {
		if strings.HasPrefix(raw, p) {
			return true
		}
	}
	return false
}
