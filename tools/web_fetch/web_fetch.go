package web_fetch

import (
	"context"

	"github.com/skhosravi/weathercheck/config"
	"github.com/skhosravi/weathercheck/tools/web_fetch/chromedp"
	"github.com/skhosravi/weathercheck/tools/web_fetch/models"
)

type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

// WebFetcher renders one search result page per call. Implementations own the
// full browser lifecycle for that call; nothing is reused across requests.
type WebFetcher interface {
	Exec(ctx context.Context, req models.Request) (models.Document, error)
}

type FetcherType string

const (
	ChromedpFetcherType FetcherType = "chromedp"
)

func NewWebFetcher(fetcherType FetcherType, cfg config.FetchConfig) (WebFetcher, error) {
	switch fetcherType {
	case ChromedpFetcherType:
		return &chromedp.Fetch{
			TimeoutMS:     cfg.TimeoutMS,
			SettleMS:      cfg.SettleMS,
			MaxTextNodes:  cfg.MaxTextNodes,
			ScreenshotDir: cfg.ScreenshotDir,
			UserAgent:     cfg.UserAgent,
			Headless:      cfg.Headless,
		}, nil
	default:
		return nil, &Error{"unsupported fetcher type"}
	}
}
