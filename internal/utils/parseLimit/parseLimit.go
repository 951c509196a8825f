package utils

import "strconv"

// ParseLimit reads a positive count. Anything else yields 0, which the
// services replace with their default.
func ParseLimit(s string) int {
	limit, err := strconv.Atoi(s)
	if err != nil || limit <= 0 {
		return 0
	}

	return limit
}

func ParseOffset(s string) int {
	offset, err := strconv.Atoi(s)
	if err != nil || offset < 0 {
		return 0
	}

	return offset
}

// ParsePage reads a 1-based page number.
func ParsePage(s string) int {
	page, err := strconv.Atoi(s)
	if err != nil || page < 1 {
		return 1
	}

	return page
}

func ParseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}
