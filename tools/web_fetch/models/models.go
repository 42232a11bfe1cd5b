package models

// Request describes one page fetch.
type Request struct {
	Query         string `json:"query"`          // search terms, e.g. "weather Pune"
	ScreenshotTag string `json:"screenshot_tag"` // filename prefix for diagnostic screenshots; empty disables them
}

// Document is a rendered search result page.
type Document struct {
	URL       string   `json:"url"`
	Title     string   `json:"title"`
	HTML      string   `json:"html"`
	TextNodes []string `json:"text_nodes"`
	Status    int      `json:"status"`
	RenderMS  int      `json:"render_ms"`
}
