package core

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/skhosravi/weathercheck/internal/agent/telemetry"
	"github.com/skhosravi/weathercheck/internal/capability"
	"github.com/skhosravi/weathercheck/provider"
)

// ScriptedPolicy is a deterministic next-action chooser. With only two
// capabilities and a fixed two-step happy path it needs no model: fetch the
// report, analyze it, return the analysis as the final answer.
type ScriptedPolicy struct {
	City     string
	Expected string
}

func NewScriptedPolicy(city, expected string) *ScriptedPolicy {
	return &ScriptedPolicy{City: city, Expected: expected}
}

func (p *ScriptedPolicy) ChooseNext(ctx context.Context, goal string, transcript []Step) (Action, error) {
	if len(transcript) == 0 {
		return Action{
			Thought:    "I need to check the current weather for the city first.",
			Capability: CapabilityCheckWeather,
			Input:      p.City + "|" + p.Expected,
		}, nil
	}
	last := transcript[len(transcript)-1]
	if last.Capability == CapabilityCheckWeather && !last.Failed {
		return Action{
			Thought:    "I have the weather report; now determine whether it matches the expectation.",
			Capability: CapabilityAnalyzeMatch,
			Input:      last.Observation,
		}, nil
	}
	return Action{
		Thought: "I now know the final answer.",
		Final:   true,
		Answer:  last.Observation,
	}, nil
}

// LLMPolicy drives the loop with an external reasoning model using a
// Thought/Action/Action Input/Final Answer protocol.
type LLMPolicy struct {
	provider  provider.Provider
	registry  *capability.Registry
	telemetry *telemetry.Telemetry
	logger    *log.Logger
}

func NewLLMPolicy(p provider.Provider, registry *capability.Registry, tel *telemetry.Telemetry, logger *log.Logger) *LLMPolicy {
	if logger == nil {
		logger = log.New(log.Writer(), "[POLICY] ", log.LstdFlags)
	}
	return &LLMPolicy{provider: p, registry: registry, telemetry: tel, logger: logger}
}

func (p *LLMPolicy) ChooseNext(ctx context.Context, goal string, transcript []Step) (Action, error) {
	prompt := p.buildPrompt(goal, transcript)

	t0 := time.Now()
	response, err := p.provider.Generate(ctx, prompt)
	p.telemetry.RecordLLM(time.Since(t0), err)
	if err != nil {
		return Action{}, fmt.Errorf("reasoning backend: %w", err)
	}
	return parseAction(response)
}

func (p *LLMPolicy) buildPrompt(goal string, transcript []Step) string {
	var b strings.Builder
	b.WriteString("You are a weather checking agent designed to verify weather conditions.\n\n")
	b.WriteString("Given a city name and an expected weather condition, check the actual weather\n")
	b.WriteString("and determine if it matches the expectation.\n\n")
	b.WriteString("You can use these capabilities:\n")
	b.WriteString(p.registry.Describe())
	b.WriteString("\n\nUse the following format:\n")
	b.WriteString("Question: the input question you must answer\n")
	b.WriteString("Thought: you should always think about what to do\n")
	fmt.Fprintf(&b, "Action: the capability to use, one of [%s, %s]\n", CapabilityCheckWeather, CapabilityAnalyzeMatch)
	b.WriteString("Action Input: the input to the capability\n")
	b.WriteString("Observation: the result of the capability\n")
	b.WriteString("... (Thought/Action/Action Input/Observation can repeat)\n")
	b.WriteString("Thought: I now know the final answer\n")
	b.WriteString("Final Answer: the final answer to the original question\n\n")
	fmt.Fprintf(&b, "Question: %s\n", goal)
	for _, step := range transcript {
		if step.Thought != "" {
			fmt.Fprintf(&b, "Thought: %s\n", step.Thought)
		}
		if step.Capability != "" {
			fmt.Fprintf(&b, "Action: %s\n", step.Capability)
			fmt.Fprintf(&b, "Action Input: %s\n", step.Input)
		}
		fmt.Fprintf(&b, "Observation: %s\n", step.Observation)
	}
	b.WriteString("Thought:")
	return b.String()
}

// parseAction extracts the next action from a model response. A response with
// neither a Final Answer nor an Action/Action Input pair is malformed.
func parseAction(response string) (Action, error) {
	var action Action
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Final Answer:"):
			action.Final = true
			action.Answer = strings.TrimSpace(strings.TrimPrefix(line, "Final Answer:"))
			return action, nil
		case strings.HasPrefix(line, "Thought:"):
			if action.Thought == "" {
				action.Thought = strings.TrimSpace(strings.TrimPrefix(line, "Thought:"))
			}
		case strings.HasPrefix(line, "Action:"):
			action.Capability = strings.TrimSpace(strings.TrimPrefix(line, "Action:"))
		case strings.HasPrefix(line, "Action Input:"):
			action.Input = strings.TrimSpace(strings.TrimPrefix(line, "Action Input:"))
		default:
			// First line of the completion is the thought continuation.
			if action.Thought == "" && line != "" {
				action.Thought = line
			}
		}
	}
	if action.Capability == "" {
		return Action{Thought: action.Thought}, fmt.Errorf("no action or final answer in response")
	}
	return action, nil
}
