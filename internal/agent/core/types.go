package core

import "context"

// Capability names exposed to the reasoning loop. These are the only two
// operations a policy may invoke.
const (
	CapabilityCheckWeather = "CheckWeather"
	CapabilityAnalyzeMatch = "AnalyzeMatch"
)

// Action is one decision from a reasoning policy: either invoke a capability
// with an input string, or finish the run with a final answer.
type Action struct {
	Thought    string `json:"thought"`
	Capability string `json:"capability,omitempty"`
	Input      string `json:"input,omitempty"`
	Final      bool   `json:"final"`
	Answer     string `json:"answer,omitempty"`
}

// Step is one completed loop iteration. The ordered sequence of steps forms
// the transcript; it is append-only and owned by the loop for one run.
type Step struct {
	Thought     string `json:"thought"`
	Capability  string `json:"capability,omitempty"`
	Input       string `json:"input,omitempty"`
	Observation string `json:"observation,omitempty"`
	Failed      bool   `json:"failed,omitempty"`
}

// Policy chooses the next action given the goal and the transcript so far.
// Implementations may be scripted or backed by an external reasoning model;
// the loop and its step ceiling do not assume which.
type Policy interface {
	ChooseNext(ctx context.Context, goal string, transcript []Step) (Action, error)
}

// Goal renders the natural-language goal for one (city, expected) pair.
func Goal(city, expected string) string {
	return "Check if the weather in " + city + " matches the expected condition '" + expected + "'."
}
