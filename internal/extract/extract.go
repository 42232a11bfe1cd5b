package extract

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/skhosravi/weathercheck/tools/web_fetch/models"
)

// Strategy tags which step of the cascade produced a candidate.
type Strategy string

const (
	StrategyStructuredSelector Strategy = "structured_selector"
	StrategyKeywordScan        Strategy = "keyword_scan"
	StrategyTitleParse         Strategy = "title_parse"
	StrategyMarkupRegex        Strategy = "markup_regex"
)

// Candidate is one extracted weather-phrase guess. Rank is the position of
// the producing strategy in the cascade; lower means tried earlier.
type Candidate struct {
	Phrase   string   `json:"phrase"`
	Strategy Strategy `json:"strategy"`
	Rank     int      `json:"rank"`
}

// Known locations of the search engine's weather widget, most specific first.
var weatherSelectors = []string{
	"#wob_dc",
	"span#wob_dc",
	"#wob_dcp > div",
	"div.UQt4rd",
	"div.VQF4g",
	"span.BBwThe",
}

// Closed vocabulary of condition words for the text scan.
var conditionTerms = []string{
	"Sunny", "Clear", "Partly cloudy", "Cloudy", "Rain", "Showers",
	"Thunderstorm", "Snow", "Mist", "Fog", "Haze", "Smoke", "Dust",
	"Drizzle", "Overcast",
}

// Patterns seen in the weather widget HTML. Applied against lower-cased markup.
var markupPatterns = []*regexp.Regexp{
	regexp.MustCompile(`id="wob_dc">([^<]+)<`),
	regexp.MustCompile(`class="bbwthe">([^<]+)<`),
	regexp.MustCompile(`class="vqf4g">([^<]+)<`),
	regexp.MustCompile(`data-local-attribute="weather-condition">([^<]+)<`),
}

type strategyFunc func(doc models.Document) (string, error)

type chainStep struct {
	name Strategy
	fn   strategyFunc
}

// Extractor runs the cascading strategy chain over one fetched document.
// The chain is first-match-wins: the first strategy yielding a non-empty
// phrase short-circuits the rest. A strategy failure never aborts the chain.
type Extractor struct {
	wait   time.Duration // bounded wait applied to each strategy independently
	logger *log.Logger
	chain  []chainStep
}

func New(strategyWait time.Duration, logger *log.Logger) *Extractor {
	if strategyWait <= 0 {
		strategyWait = 3 * time.Second
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[EXTRACT] ", log.LstdFlags)
	}
	e := &Extractor{wait: strategyWait, logger: logger}
	e.chain = []chainStep{
		{StrategyStructuredSelector, structuredSelector},
		{StrategyKeywordScan, keywordScan},
		{StrategyTitleParse, titleParse},
		{StrategyMarkupRegex, markupRegex},
	}
	return e
}

// Extract returns the first candidate the cascade produces, or ok=false when
// every strategy comes up empty. All-empty is a normal outcome, not an error.
func (e *Extractor) Extract(ctx context.Context, doc models.Document) (Candidate, bool) {
	for rank, step := range e.chain {
		phrase, err := e.runBounded(ctx, step.fn, doc)
		if err != nil {
			e.logger.Printf("strategy %s failed: %v", step.name, err)
			continue
		}
		if phrase == "" {
			continue
		}
		e.logger.Printf("strategy %s found condition: %q", step.name, phrase)
		return Candidate{Phrase: phrase, Strategy: step.name, Rank: rank}, true
	}
	return Candidate{}, false
}

// runBounded applies the per-strategy wait and converts panics into errors so
// one misbehaving strategy cannot take down the chain.
func (e *Extractor) runBounded(ctx context.Context, fn strategyFunc, doc models.Document) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.wait)
	defer cancel()

	type result struct {
		phrase string
		err    error
	}
	ch := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{"", fmt.Errorf("strategy panic: %v", r)}
			}
		}()
		phrase, err := fn(doc)
		ch <- result{phrase, err}
	}()

	select {
	case r := <-ch:
		return r.phrase, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func structuredSelector(doc models.Document) (string, error) {
	root, err := goquery.NewDocumentFromReader(strings.NewReader(doc.HTML))
	if err != nil {
		return "", fmt.Errorf("parse markup: %w", err)
	}
	for _, sel := range weatherSelectors {
		if text := strings.TrimSpace(root.Find(sel).First().Text()); text != "" {
			return text, nil
		}
	}
	return "", nil
}

func keywordScan(doc models.Document) (string, error) {
	for _, node := range doc.TextNodes {
		text := strings.TrimSpace(node)
		if len(text) <= 2 {
			continue
		}
		lower := strings.ToLower(text)
		for _, term := range conditionTerms {
			if strings.Contains(lower, strings.ToLower(term)) {
				return text, nil
			}
		}
	}
	return "", nil
}

func titleParse(doc models.Document) (string, error) {
	if !strings.Contains(strings.ToLower(doc.Title), "weather") {
		return "", nil
	}
	// Weather result titles look like "Condition - Weather for City".
	parts := strings.Split(doc.Title, " - ")
	if len(parts) == 0 {
		return "", nil
	}
	return strings.TrimSpace(parts[0]), nil
}

func markupRegex(doc models.Document) (string, error) {
	source := strings.ToLower(doc.HTML)
	for _, pattern := range markupPatterns {
		if m := pattern.FindStringSubmatch(source); m != nil {
			if capture := strings.TrimSpace(m[1]); capture != "" {
				return capture, nil
			}
		}
	}
	return "", nil
}
