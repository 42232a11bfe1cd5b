package match

import "testing"

func TestAnalyzeMatchBidirectionalContainment(t *testing.T) {
	cases := []struct {
		report  string
		outcome Outcome
	}{
		{"Current weather in Pune: Sunny. Expected: Sunny", OutcomeMatch},
		{"Current weather in Pune: Partly cloudy. Expected: cloudy", OutcomeMatch},
		{"Current weather in Pune: Cloudy. Expected: Partly cloudy with showers", OutcomeMatch},
		{"Current weather in London: Sunny. Expected: Rain", OutcomeNoMatch},
		{"Current weather in London: Cloudy with occasional showers. Expected: Clear", OutcomeNoMatch},
	}
	for _, c := range cases {
		if got := Analyze(c.report); got.Outcome != c.outcome {
			t.Fatalf("Analyze(%q) = %s, want %s", c.report, got.Outcome, c.outcome)
		}
	}
}

func TestAnalyzeLowercasesBothSides(t *testing.T) {
	v := Analyze("Current weather in Pune: SUNNY. Expected: sunny")
	if v.Outcome != OutcomeMatch {
		t.Fatalf("expected match, got %s", v.Outcome)
	}
	if v.Actual != "sunny" || v.Expected != "sunny" {
		t.Fatalf("expected lowercased phrases, got %q / %q", v.Actual, v.Expected)
	}
}

func TestAnalyzeMissingAnchorsIsUnparseable(t *testing.T) {
	cases := []string{
		"",
		"Error occurred while checking weather: navigation failed",
		"Couldn't extract weather condition for Pune. Expected: Sunny",
		"Current weather in Pune: Sunny", // no period, no Expected anchor
		"Expected: Sunny",
	}
	for _, report := range cases {
		if got := Analyze(report); got.Outcome != OutcomeUnparseable {
			t.Fatalf("Analyze(%q) = %s, want unparseable", report, got.Outcome)
		}
	}
}

// The known weakness of containment matching: a negated phrase still
// contains the expected term. Preserved behaviour, not a bug to fix here.
func TestAnalyzeContainmentFalsePositive(t *testing.T) {
	v := Analyze("Current weather in Pune: No rain expected. Expected: Rain")
	if v.Outcome != OutcomeMatch {
		t.Fatalf("expected (documented) match, got %s", v.Outcome)
	}
}
