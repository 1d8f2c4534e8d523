package deployment

import (
	"regexp"
	"strings"
)

// =============================================================================
// Backend Error Message Inspection
// =============================================================================

// conflictNameRegex extracts the conflicting deployment name from the
// backend's "already exists" error text. The quoted name may carry trailing
// backslash escapes depending on how the backend serialized it.
var conflictNameRegex = regexp.MustCompile(`"([^"]+?)(?:\\+)?" already exists`)

// IsConflictMessage reports whether backend error text describes a
// name-conflict on create.
func IsConflictMessage(message string) bool {
	return strings.Contains(message, "already exists")
}

// IsAuthMessage reports whether backend error text describes an
// authorization failure, for backends that signal it in text rather than in
// the status code.
func IsAuthMessage(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "unauthorized") ||
		strings.Contains(lower, "authentication required")
}

// ExtractConflictName pulls the existing deployment's name out of a conflict
// message. The match is best-effort: the message format is not a backend
// contract, so extraction failure falls back to the name this invocation
// requested.
func ExtractConflictName(message, requestedName string) string {
	match := conflictNameRegex.FindStringSubmatch(message)
	if match == nil {
		return requestedName
	}
	return strings.TrimRight(match[1], `\`)
}
