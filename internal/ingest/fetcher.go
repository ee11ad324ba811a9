package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/ppiankov/krisis/internal/util"
)

// fetchAttempts bounds tries for a single URL, counting the first.
const fetchAttempts = 3

var errRedirectCap = errors.New("stopped after 3 redirects")

// fetchBackoff is overridable for tests.
var fetchBackoff = func(attempt int) { time.Sleep(time.Duration(attempt) * time.Second) }

// Page is a fetched web page reduced to the fields ingestion needs.
type Page struct {
	HTML     string
	Subject  string
	FinalURL string
}

// Fetcher retrieves web pages with a byte cap and bounded redirects.
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

// NewFetcher creates a Fetcher. Empty proxy overrides fall back to the
// environment.
func NewFetcher(timeout time.Duration, userAgent string, maxBytes int64, httpProxy, httpsProxy string) *Fetcher {
	client := util.NewHTTPClient(timeout, httpProxy, httpsProxy)
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 3 {
			return errRedirectCap
		}
		return nil
	}
	return &Fetcher{client: client, userAgent: userAgent, maxBytes: maxBytes}
}

// statusError reports a non-2xx response so retry decisions can branch on
// the code instead of matching message text.
type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string {
	return "unexpected status: " + e.status
}

// Fetch retrieves one page, reading at most maxBytes of the body.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{code: resp.StatusCode, status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	finalURL := resp.Request.URL.String()
	return &Page{HTML: string(body), Subject: subjectFrom(finalURL), FinalURL: finalURL}, nil
}

// FetchWithRetry fetches a page with a linear backoff on transient
// failures. Client errors other than 429 fail immediately.
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*Page, error) {
	var lastErr error
	for attempt := 0; attempt < fetchAttempts; attempt++ {
		if attempt > 0 {
			fetchBackoff(attempt)
		}

		page, err := f.Fetch(ctx, rawURL)
		if err == nil {
			return page, nil
		}
		if !transientFetch(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// transientFetch reports whether a fetch failure is worth another try.
// Rate limits and server errors are transient. Network failures are
// transient unless the context ended or the redirect cap was hit.
func transientFetch(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return !errors.Is(ue, context.Canceled) &&
			!errors.Is(ue, context.DeadlineExceeded) &&
			!errors.Is(ue, errRedirectCap)
	}
	return false
}

// subjectFrom derives a human-readable subject from a URL: the final path
// segment with slug separators turned into spaces and any extension
// dropped, or the host when the path is empty.
func subjectFrom(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	trimmed := strings.Trim(parsed.Path, "/")
	if trimmed == "" {
		return parsed.Host
	}

	segment := trimmed
	if i := strings.LastIndex(segment, "/"); i >= 0 {
		segment = segment[i+1:]
	}
	if i := strings.LastIndex(segment, "."); i > 0 {
		segment = segment[:i]
	}
	return strings.NewReplacer("_", " ", "-", " ").Replace(segment)
}

// visibleText reduces an HTML document to its visible text nodes, skipping
// script, style, noscript, and iframe subtrees.
func visibleText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				buf.WriteString(text)
				buf.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.TrimSpace(buf.String()), nil
}
