package chromedp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/go-shiori/go-readability"

	"github.com/skhosravi/weathercheck/tools/web_fetch/models"
	"github.com/skhosravi/weathercheck/utils"
)

const searchEndpoint = "https://www.google.com/search?q="

type Fetch struct {
	TimeoutMS     int    // overall budget for navigate + render + harvest
	SettleMS      int    // fixed wait after load; the weather widget is injected client-side
	MaxTextNodes  int    // cap on harvested text nodes
	ScreenshotDir string // where diagnostic screenshots land
	UserAgent     string
	Headless      bool

	Logger *log.Logger
}

func (f *Fetch) logger() *log.Logger {
	if f.Logger == nil {
		f.Logger = log.New(log.Writer(), "[FETCH] ", log.LstdFlags)
	}
	return f.Logger
}

// Exec renders one search result page and harvests title, markup and visible
// text nodes. The browser process is provisioned and torn down within this
// call on every path.
func (f *Fetch) Exec(ctx context.Context, req models.Request) (models.Document, error) {
	if strings.TrimSpace(req.Query) == "" {
		return models.Document{}, errors.New("invalid query")
	}

	timeout := time.Duration(f.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	t0 := time.Now()

	target := searchEndpoint + utils.UrlQuery(req.Query)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", f.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(f.UserAgent),
	)
	actx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	bctx, cancelBrowser := chromedp.NewContext(actx)
	defer cancelBrowser()

	f.logger().Printf("navigating to %s", target)

	settle := time.Duration(f.SettleMS) * time.Millisecond
	var initialShot []byte
	err := chromedp.Run(bctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			// Hide the webdriver flag before any page script runs.
			_, err := page.AddScriptToEvaluateOnNewDocument(
				"Object.defineProperty(navigator, 'webdriver', {get: () => undefined});",
			).Do(ctx)
			return err
		}),
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(settle),
		chromedp.CaptureScreenshot(&initialShot),
	)
	if err != nil {
		f.saveShot(bctx, req.ScreenshotTag, "_error.png", nil)
		return models.Document{URL: target, Status: 599, RenderMS: int(time.Since(t0) / time.Millisecond)},
			fmt.Errorf("navigation failed: %w", err)
	}
	f.writeShot(req.ScreenshotTag, "_initial.png", initialShot)

	maxNodes := f.MaxTextNodes
	if maxNodes <= 0 {
		maxNodes = 400
	}
	var (
		title     string
		html      string
		textNodes []string
		finalShot []byte
	)
	err = chromedp.Run(bctx,
		chromedp.Title(&title),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Evaluate(harvestScript(maxNodes), &textNodes),
		chromedp.CaptureScreenshot(&finalShot),
	)
	if err != nil {
		f.saveShot(bctx, req.ScreenshotTag, "_error.png", nil)
		return models.Document{URL: target, Status: 599, RenderMS: int(time.Since(t0) / time.Millisecond)},
			fmt.Errorf("page harvest failed: %w", err)
	}
	f.writeShot(req.ScreenshotTag, "_weather.png", finalShot)

	if len(textNodes) == 0 {
		textNodes = readabilityNodes(html, target)
	}

	return models.Document{
		URL:       target,
		Title:     strings.TrimSpace(title),
		HTML:      html,
		TextNodes: textNodes,
		Status:    200,
		RenderMS:  int(time.Since(t0) / time.Millisecond),
	}, nil
}

// harvestScript collects visible div text longer than two characters.
func harvestScript(max int) string {
	return fmt.Sprintf(`(() => {
	const out = [];
	for (const el of document.querySelectorAll('div')) {
		const t = (el.innerText || '').trim();
		if (t.length > 2) out.push(t);
		if (out.length >= %d) break;
	}
	return out;
})()`, max)
}

// readabilityNodes extracts article text when the DOM harvest came back empty.
func readabilityNodes(html, rawURL string) []string {
	article, err := readability.FromReader(strings.NewReader(html), mustParseURL(rawURL))
	if err != nil {
		return nil
	}
	var nodes []string
	for _, line := range strings.Split(article.TextContent, "\n") {
		if t := strings.TrimSpace(line); len(t) > 2 {
			nodes = append(nodes, t)
		}
	}
	return nodes
}

// saveShot captures and writes a screenshot from a possibly broken session.
func (f *Fetch) saveShot(bctx context.Context, tag, suffix string, buf []byte) {
	if tag == "" {
		return
	}
	if buf == nil {
		capCtx, cancel := context.WithTimeout(bctx, 3*time.Second)
		defer cancel()
		if err := chromedp.Run(capCtx, chromedp.CaptureScreenshot(&buf)); err != nil {
			f.logger().Printf("screenshot capture failed: %v", err)
			return
		}
	}
	f.writeShot(tag, suffix, buf)
}

func (f *Fetch) writeShot(tag, suffix string, buf []byte) {
	if tag == "" || len(buf) == 0 {
		return
	}
	dir := f.ScreenshotDir
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, tag+suffix)
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		f.logger().Printf("screenshot write failed: %v", err)
		return
	}
	f.logger().Printf("screenshot saved as %s", path)
}

func mustParseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		return &url.URL{}
	}
	return u
}
