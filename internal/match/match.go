package match

import (
	"regexp"
	"strings"
)

// Outcome classifies an analysis result.
type Outcome string

const (
	OutcomeMatch       Outcome = "match"
	OutcomeNoMatch     Outcome = "no_match"
	OutcomeUnparseable Outcome = "unparseable"
)

// Verdict is the terminal value of one analysis call.
type Verdict struct {
	Outcome  Outcome `json:"outcome"`
	Actual   string  `json:"actual,omitempty"`
	Expected string  `json:"expected,omitempty"`
}

// Anchors of the CheckWeather report format. AnalyzeMatch depends on the
// literal ": " and ". Expected: " separators staying exactly as emitted.
var (
	actualPattern   = regexp.MustCompile(`Current weather in .+?: (.+?)\.`)
	expectedPattern = regexp.MustCompile(`Expected: (.+?)(?:\.|$)`)
)

// Analyze extracts the actual and expected conditions from a weather report
// and tests substring containment in either direction. Weather phrases vary
// in specificity ("Cloudy" vs "Partly cloudy with a chance of showers"), so
// containment either way counts as a match. A report missing either anchor is
// unparseable, never an error.
func Analyze(report string) Verdict {
	actualMatch := actualPattern.FindStringSubmatch(report)
	expectedMatch := expectedPattern.FindStringSubmatch(report)
	if actualMatch == nil || expectedMatch == nil {
		return Verdict{Outcome: OutcomeUnparseable}
	}

	actual := strings.ToLower(strings.TrimSpace(actualMatch[1]))
	expected := strings.ToLower(strings.TrimSpace(expectedMatch[1]))

	if strings.Contains(actual, expected) || strings.Contains(expected, actual) {
		return Verdict{Outcome: OutcomeMatch, Actual: actual, Expected: expected}
	}
	return Verdict{Outcome: OutcomeNoMatch, Actual: actual, Expected: expected}
}
