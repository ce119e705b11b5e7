package util

import "strings"

// NormalizeTicker uppercases and trims a user-supplied ticker symbol. EDGAR's
// directory keys tickers uppercase ("BRK-B", "BF-B").
func NormalizeTicker(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
