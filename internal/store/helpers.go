// ABOUTME: SQL helper functions for query construction.
// ABOUTME: Escapes user input placed inside LIKE patterns.

package store

import "strings"

// escapeSQLLike escapes %, _ and \ for use with LIKE ... ESCAPE '\'.
// The backslash is escaped first so the later escapes are not doubled.
func escapeSQLLike(pattern string) string {
	pattern = strings.ReplaceAll(pattern, "\\", "\\\\")
	pattern = strings.ReplaceAll(pattern, "%", "\\%")
	pattern = strings.ReplaceAll(pattern, "_", "\\_")
	return pattern
}
