package main

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// This file contains helper functions for string manipulation.

// cityID derives the stable storage key for a city from its display name:
// the Unicode case-folded form of the trimmed name. Folding rather than a
// plain ToLower keeps the mapping consistent for names outside ASCII, so
// "Paris", "paris" and "PARIS" all collapse to the same record.
// A Caser is stateful, so a fresh one is used per call.
func cityID(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("city name is empty")
	}
	if !utf8.ValidString(trimmed) {
		return "", fmt.Errorf("city name is not valid UTF-8")
	}
	return cases.Fold().String(trimmed), nil
}
