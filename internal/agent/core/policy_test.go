package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/skhosravi/weathercheck/internal/agent/telemetry"
)

func TestScriptedPolicySequence(t *testing.T) {
	p := NewScriptedPolicy("Pune", "Sunny")
	ctx := context.Background()

	first, err := p.ChooseNext(ctx, Goal("Pune", "Sunny"), nil)
	if err != nil {
		t.Fatalf("ChooseNext: %v", err)
	}
	if first.Capability != CapabilityCheckWeather || first.Input != "Pune|Sunny" {
		t.Fatalf("unexpected first action %+v", first)
	}

	report := "Current weather in Pune: Sunny. Expected: Sunny"
	transcript := []Step{{Capability: CapabilityCheckWeather, Input: first.Input, Observation: report}}
	second, err := p.ChooseNext(ctx, Goal("Pune", "Sunny"), transcript)
	if err != nil {
		t.Fatalf("ChooseNext: %v", err)
	}
	if second.Capability != CapabilityAnalyzeMatch || second.Input != report {
		t.Fatalf("unexpected second action %+v", second)
	}

	verdict := "SUCCESS: The weather matches your expectation! Actual: 'sunny', Expected: 'sunny'"
	transcript = append(transcript, Step{Capability: CapabilityAnalyzeMatch, Input: report, Observation: verdict})
	final, err := p.ChooseNext(ctx, Goal("Pune", "Sunny"), transcript)
	if err != nil {
		t.Fatalf("ChooseNext: %v", err)
	}
	if !final.Final || final.Answer != verdict {
		t.Fatalf("unexpected final action %+v", final)
	}
}

func TestParseActionCapability(t *testing.T) {
	action, err := parseAction("Thought: need the report\nAction: CheckWeather\nAction Input: Pune|Sunny")
	if err != nil {
		t.Fatalf("parseAction: %v", err)
	}
	if action.Capability != CapabilityCheckWeather || action.Input != "Pune|Sunny" {
		t.Fatalf("unexpected action %+v", action)
	}
	if action.Thought != "need the report" {
		t.Fatalf("unexpected thought %q", action.Thought)
	}
}

func TestParseActionFinalAnswer(t *testing.T) {
	action, err := parseAction("I now know the final answer\nFinal Answer: SUCCESS: it matches")
	if err != nil {
		t.Fatalf("parseAction: %v", err)
	}
	if !action.Final || action.Answer != "SUCCESS: it matches" {
		t.Fatalf("unexpected action %+v", action)
	}
}

func TestParseActionMalformed(t *testing.T) {
	if _, err := parseAction("the model rambles with no protocol markers"); err == nil {
		t.Fatalf("expected parse error")
	}
}

type fakeProvider struct {
	response string
	err      error
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string) (string, error) {
	return f.response, f.err
}
func (f *fakeProvider) Model() string { return "fake" }

func TestLLMPolicyParsesModelResponse(t *testing.T) {
	p := NewLLMPolicy(
		&fakeProvider{response: "Thought: check first\nAction: CheckWeather\nAction Input: London|Clear"},
		echoRegistry(t),
		telemetry.New(false, quietLogger()),
		quietLogger(),
	)
	action, err := p.ChooseNext(context.Background(), Goal("London", "Clear"), nil)
	if err != nil {
		t.Fatalf("ChooseNext: %v", err)
	}
	if action.Capability != CapabilityCheckWeather || action.Input != "London|Clear" {
		t.Fatalf("unexpected action %+v", action)
	}
}

func TestLLMPolicyPropagatesBackendErrors(t *testing.T) {
	p := NewLLMPolicy(&fakeProvider{err: errors.New("backend down")}, echoRegistry(t), telemetry.New(false, quietLogger()), quietLogger())
	if _, err := p.ChooseNext(context.Background(), "goal", nil); err == nil {
		t.Fatalf("expected error from backend")
	}
}

func TestLLMPolicyPromptEmbedsTranscript(t *testing.T) {
	p := NewLLMPolicy(&fakeProvider{}, echoRegistry(t), telemetry.New(false, quietLogger()), quietLogger())
	prompt := p.buildPrompt(Goal("Pune", "Sunny"), []Step{{
		Thought:     "check first",
		Capability:  CapabilityCheckWeather,
		Input:       "Pune|Sunny",
		Observation: "Current weather in Pune: Sunny. Expected: Sunny",
	}})
	for _, want := range []string{
		"Question: Check if the weather in Pune matches the expected condition 'Sunny'.",
		"Action: CheckWeather",
		"Observation: Current weather in Pune: Sunny. Expected: Sunny",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}
