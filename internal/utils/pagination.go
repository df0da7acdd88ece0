// Package utils provides small, generic helpers shared across layers.
// Nothing here knows about channels, tenants, or messages.
package utils

import "strconv"

// AtoiDefault parses s as an int, returning def when s is empty or not a
// plain integer. It backs the page/page_size query parameters of the
// conversation-history endpoints, where a garbled value should fall back to
// the default rather than fail the read.
//
// No trimming is performed: " 42" is not an integer and yields def.
//
// Example:
//
//	page := utils.AtoiDefault(c.Query("page"), 1)
//	size := utils.AtoiDefault(c.Query("page_size"), 20)
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
