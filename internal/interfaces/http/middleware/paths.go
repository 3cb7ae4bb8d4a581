package middleware

import "strings"

// PathFilter matches request paths exactly or by prefix
type PathFilter struct {
	Exact    []string
	Prefixes []string
}

// ProbePaths matches the health probe, ping and the documentation UI.
// Tracing and profiling leave these requests alone.
func ProbePaths() PathFilter {
	return PathFilter{
		Exact:    []string{"/health", "/api/v1/system/ping"},
		Prefixes: []string{"/swagger/"},
	}
}

// Match reports whether path is covered by the filter
func (f PathFilter) Match(path string) bool {
	for _, p := range f.Exact {
		if path == p {
			return true
		}
	}
	for _, p := range f.Prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
