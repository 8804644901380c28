package main

import "strings"

// matchPort returns the index of the first name containing pattern,
// ignoring case, or -1.
func matchPort(names []string, pattern string) int {
	want := strings.ToLower(pattern)
	for i, name := range names {
		if strings.Contains(strings.ToLower(name), want) {
			return i
		}
	}
	return -1
}
