package core

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/skhosravi/weathercheck/internal/agent/telemetry"
	"github.com/skhosravi/weathercheck/internal/capability"
)

// BoundExceededAnswer is the fixed terminal output when the loop hits its
// capability invocation ceiling before the policy produces a final answer.
const BoundExceededAnswer = "could not determine an answer within bounds"

// Loop is the bounded decide/act/observe cycle. It executes strictly
// sequentially: no step begins before the prior observation is recorded.
type Loop struct {
	registry  *capability.Registry
	policy    Policy
	maxSteps  int // capability invocation ceiling per run
	logger    *log.Logger
	telemetry *telemetry.Telemetry
}

func NewLoop(registry *capability.Registry, policy Policy, maxSteps int, logger *log.Logger, tel *telemetry.Telemetry) *Loop {
	if maxSteps <= 0 {
		maxSteps = 3
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[AGENT] ", log.LstdFlags)
	}
	return &Loop{
		registry:  registry,
		policy:    policy,
		maxSteps:  maxSteps,
		logger:    logger,
		telemetry: tel,
	}
}

// Run drives the loop for one goal and returns the final answer with the
// transcript. Malformed policy output and unknown capability choices are
// recorded as failed steps and never abort the run; only the invocation
// ceiling (or a policy that keeps failing) forces termination.
func (l *Loop) Run(ctx context.Context, goal string) (string, []Step) {
	runID := uuid.NewString()
	l.logger.Printf("run %s started: %s", runID, goal)

	var transcript []Step
	invocations := 0
	// A policy that never produces a valid action must still terminate;
	// allow one failed step per invocation slot plus the final decision.
	maxIterations := l.maxSteps*2 + 1

	for iteration := 0; iteration < maxIterations; iteration++ {
		action, err := l.policy.ChooseNext(ctx, goal, transcript)
		if err != nil {
			l.logger.Printf("run %s: unparseable reasoning output: %v", runID, err)
			transcript = append(transcript, Step{
				Thought:     action.Thought,
				Observation: fmt.Sprintf("invalid reasoning output: %v", err),
				Failed:      true,
			})
			l.telemetry.RecordFailedStep()
			continue
		}

		if action.Final {
			l.logger.Printf("run %s finished after %d capability call(s)", runID, invocations)
			return action.Answer, transcript
		}

		if _, ok := l.registry.Tool(action.Capability); !ok {
			l.logger.Printf("run %s: unknown capability %q", runID, action.Capability)
			transcript = append(transcript, Step{
				Thought:     action.Thought,
				Capability:  action.Capability,
				Input:       action.Input,
				Observation: fmt.Sprintf("unknown capability: %s", action.Capability),
				Failed:      true,
			})
			l.telemetry.RecordFailedStep()
			continue
		}

		if invocations >= l.maxSteps {
			l.logger.Printf("run %s hit the invocation ceiling (%d)", runID, l.maxSteps)
			return BoundExceededAnswer, transcript
		}
		invocations++

		t0 := time.Now()
		observation, err := l.registry.Invoke(ctx, action.Capability, action.Input)
		l.telemetry.RecordCapability(action.Capability, time.Since(t0))
		if err != nil {
			// Registry errors are rendered as observations; the run goes on.
			observation = err.Error()
		}
		l.logger.Printf("run %s step %d: %s(%q)", runID, invocations, action.Capability, action.Input)
		transcript = append(transcript, Step{
			Thought:     action.Thought,
			Capability:  action.Capability,
			Input:       action.Input,
			Observation: observation,
			Failed:      err != nil,
		})
	}

	l.logger.Printf("run %s exhausted its iteration budget", runID)
	return BoundExceededAnswer, transcript
}
