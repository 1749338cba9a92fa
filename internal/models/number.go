package models

import (
	"strconv"
	"strings"
)

// ParseDecimal reads a base-10 integer from request input. Leading zeros are
// plain digits, so "09" is 9 and "011" is 11.
func ParseDecimal(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}
