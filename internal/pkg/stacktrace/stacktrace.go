// Package stacktrace condenses raw stack traces for structured logs.
package stacktrace

import "strings"

// InternalPaths extracts the frames belonging to this repository from a raw
// stack trace, returning short "internal/..." paths.
func InternalPaths(stack []byte) []string {
	lines := strings.Split(string(stack), "\n")
	paths := make([]string, 0, 8)

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, "/internal/") || !strings.Contains(line, ".go:") {
			continue
		}

		end := strings.Index(line, ".go:")
		rest := line[end:]
		if sp := strings.IndexByte(rest, ' '); sp != -1 {
			line = line[:end+sp]
		}

		if idx := strings.Index(line, "/internal/"); idx != -1 {
			paths = append(paths, line[idx+1:])
		}
	}

	return paths
}
