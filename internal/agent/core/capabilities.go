package core

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/skhosravi/weathercheck/internal/agent/telemetry"
	"github.com/skhosravi/weathercheck/internal/capability"
	"github.com/skhosravi/weathercheck/internal/extract"
	"github.com/skhosravi/weathercheck/internal/match"
	"github.com/skhosravi/weathercheck/tools/web_fetch"
	"github.com/skhosravi/weathercheck/tools/web_fetch/models"
	"github.com/skhosravi/weathercheck/utils"
)

// Fixed report strings. AnalyzeMatch parses CheckWeather output with anchored
// patterns, so the "|", ": " and ". Expected: " separators must stay literal.
const (
	invalidInputReport = "Invalid input format. Please use: city_name|expected_condition"
	reportFormat       = "Current weather in %s: %s. Expected: %s"
	noEvidenceFormat   = "Couldn't extract weather condition for %s. Expected: %s"
	fetchErrorFormat   = "Error occurred while checking weather: %v"

	successFormat     = "SUCCESS: The weather matches your expectation! Actual: '%s', Expected: '%s'"
	failureFormat     = "FAILURE: The weather doesn't match your expectation. Actual: '%s', Expected: '%s'"
	unparseableReport = "Could not parse weather information correctly."
)

// CheckWeatherCard builds the capability that fetches one rendered search
// page and runs the extraction cascade over it. Exactly one document is
// fetched per invocation; strategy failures never trigger a refetch.
func CheckWeatherCard(fetcher web_fetch.WebFetcher, extractor *extract.Extractor, tel *telemetry.Telemetry, logger *log.Logger) capability.Card {
	if logger == nil {
		logger = log.New(log.Writer(), "[CHECK] ", log.LstdFlags)
	}
	return capability.Card{
		ToolCard: capability.ToolCard{
			Name:        CapabilityCheckWeather,
			Version:     "v1",
			Description: "Checks the current weather for a city and compares it with expected conditions. Input: city_name|expected_condition",
		},
		Handler: func(ctx context.Context, input string) string {
			parts := strings.Split(input, "|")
			if len(parts) != 2 {
				return invalidInputReport
			}
			city := strings.TrimSpace(parts[0])
			expected := strings.TrimSpace(parts[1])
			logger.Printf("checking weather for %s, expecting: %s", city, expected)

			t0 := time.Now()
			doc, err := fetcher.Exec(ctx, models.Request{
				Query:         "weather " + city,
				ScreenshotTag: utils.FileTag(city),
			})
			tel.RecordFetch(time.Since(t0), err == nil)
			if err != nil {
				logger.Printf("fetch failed: %v", err)
				return fmt.Sprintf(fetchErrorFormat, err)
			}

			candidate, ok := extractor.Extract(ctx, doc)
			if !ok {
				return fmt.Sprintf(noEvidenceFormat, city, expected)
			}
			return fmt.Sprintf(reportFormat, city, candidate.Phrase, expected)
		},
	}
}

// AnalyzeMatchCard builds the capability that parses a weather report and
// renders the verdict as one of three fixed templates.
func AnalyzeMatchCard(logger *log.Logger) capability.Card {
	if logger == nil {
		logger = log.New(log.Writer(), "[ANALYZE] ", log.LstdFlags)
	}
	return capability.Card{
		ToolCard: capability.ToolCard{
			Name:        CapabilityAnalyzeMatch,
			Version:     "v1",
			Description: "Analyzes if the actual weather condition matches the expected condition. Input: the CheckWeather report",
		},
		Handler: func(ctx context.Context, input string) string {
			logger.Printf("analyzing weather match: %s", input)
			verdict := match.Analyze(input)
			switch verdict.Outcome {
			case match.OutcomeMatch:
				return fmt.Sprintf(successFormat, verdict.Actual, verdict.Expected)
			case match.OutcomeNoMatch:
				return fmt.Sprintf(failureFormat, verdict.Actual, verdict.Expected)
			default:
				return unparseableReport
			}
		},
	}
}

// NewRegistry assembles the two weather capabilities into a validated
// registry, checksumming and (when a secret is set) signing each card.
func NewRegistry(fetcher web_fetch.WebFetcher, extractor *extract.Extractor, tel *telemetry.Telemetry, logger *log.Logger, signingSecret string, required []string) (*capability.Registry, error) {
	cards := []capability.Card{
		CheckWeatherCard(fetcher, extractor, tel, logger),
		AnalyzeMatchCard(logger),
	}
	for i := range cards {
		checksum, err := capability.ComputeChecksum(cards[i].ToolCard)
		if err != nil {
			return nil, fmt.Errorf("checksum %s: %w", cards[i].Name, err)
		}
		cards[i].Checksum = checksum
		if signingSecret != "" {
			sig, err := capability.SignToolCard(cards[i].ToolCard, signingSecret)
			if err != nil {
				return nil, fmt.Errorf("sign %s: %w", cards[i].Name, err)
			}
			cards[i].Signature = sig
		}
	}
	if len(required) == 0 {
		required = []string{CapabilityCheckWeather, CapabilityAnalyzeMatch}
	}
	return capability.NewRegistry(cards, signingSecret, required)
}
