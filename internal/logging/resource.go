// ABOUTME: Resource detection for request logging.
// ABOUTME: Maps a backend API path to the resource name stored with its log entry.

package logging

import "strings"

// ResourceFromPath returns the API resource a path belongs to.
func ResourceFromPath(path string) string {
	rest, ok := strings.CutPrefix(path, "/api/")
	if !ok {
		return "unknown"
	}
	first, _, _ := strings.Cut(rest, "/")
	switch first {
	case "login":
		return "auth"
	case "proveedores", "restaurantes":
		return first
	}
	return "unknown"
}
