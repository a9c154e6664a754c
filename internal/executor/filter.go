package executor

import "strings"

// interestingMarkers are the substrings worth surfacing on the console while
// a build streams. The subprocess exit code stays authoritative for
// success/failure; marker matching is display enrichment only and must never
// be the sole success signal (substring collisions would cause false
// positives).
var interestingMarkers = []string{
	"BUILD SUCCESS",
	"BUILD FAILURE",
	"[ERROR]",
	"Tests run:",
	"Compiling",
	"ERR_PNPM",
	"ELIFECYCLE",
	"error TS",
	"Test Suites:",
	"failed to",
}

func interestingLine(line string) bool {
	for _, marker := range interestingMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}

// lastErrorLine picks the most recent marker-bearing line from captured
// output, used to enrich a failed result's detail.
func lastErrorLine(output string) string {
	lines := strings.Split(output, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if strings.Contains(line, "[ERROR]") || strings.Contains(line, "BUILD FAILURE") ||
			strings.Contains(line, "ERR_PNPM") || strings.Contains(line, "ELIFECYCLE") {
			return line
		}
	}
	return ""
}
