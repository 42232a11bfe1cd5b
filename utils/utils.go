package utils

import (
	"fmt"
	"strings"
)

func UrlQuery(s string) string { return strings.ReplaceAll(s, " ", "+") }

// FileTag sanitizes a city name for use in screenshot filenames.
func FileTag(s string) string { return strings.ReplaceAll(strings.TrimSpace(s), " ", "_") }

func Str(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
