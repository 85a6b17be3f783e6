package utils

import (
	"strings"
)

// SplitAddress splits an email address into local part and domain. Returns
// empty strings if the address is not well formed.
func SplitAddress(address string) (local, domain string) {
	address = strings.TrimSpace(address)

	// Handle potential angle brackets (e.g., "Name <email@domain.com>")
	if strings.Contains(address, "<") && strings.Contains(address, ">") {
		startIdx := strings.LastIndex(address, "<") + 1
		endIdx := strings.LastIndex(address, ">")
		if startIdx > 0 && endIdx > startIdx {
			address = address[startIdx:endIdx]
		}
	}

	parts := strings.Split(address, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", ""
	}
	return parts[0], strings.ToLower(strings.TrimSpace(parts[1]))
}

// ComposeAddress joins a local part and domain into an address.
func ComposeAddress(local, domain string) string {
	return local + "@" + strings.ToLower(strings.TrimSpace(domain))
}

// FirstNonEmpty returns the first non-empty string from the arguments.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Truncate shortens s to at most max runes, used for message intros.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
