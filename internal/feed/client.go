package feed

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/listensync/internal/models"
	"github.com/desertthunder/listensync/internal/shared"
)

const defaultTimeout = 10 * time.Second

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Updated string      `xml:"updated"`
	Content atomContent `xml:"content"`
}

type atomContent struct {
	Type  string `xml:"type,attr"`
	Text  string `xml:",chardata"`
	Inner string `xml:",innerxml"`
}

// body returns the entry HTML. Escaped html content is decoded by the XML parser; inline xhtml is taken verbatim.
func (c atomContent) body() string {
	if strings.EqualFold(c.Type, "xhtml") {
		return strings.TrimSpace(c.Inner)
	}
	return strings.TrimSpace(c.Text)
}

// Client fetches Atom recommendation feeds over HTTP with a fixed-delay retry policy.
type Client struct {
	httpClient *http.Client
	policy     shared.RetryPolicy
	logger     *log.Logger
}

// NewClient creates a feed client. A nil httpClient gets a 10 second timeout.
func NewClient(httpClient *http.Client, policy shared.RetryPolicy, logger *log.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Client{
		httpClient: httpClient,
		policy:     policy,
		logger:     shared.WithLogger(logger, "component", "feed"),
	}
}

// Fetch downloads and parses the feed at url.
//
// Network failures and non-200 responses are retried; exhaustion returns [shared.ErrTransport].
// A document that is not an Atom feed or has no dated entry returns [shared.ErrFeedParse].
func (c *Client) Fetch(ctx context.Context, url string) (*models.FeedSnapshot, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("%w: feed URL is empty", shared.ErrInvalidConfig)
	}

	policy := c.policy
	policy.OnRetry = func(attempt int, err error) {
		c.logger.Warn("feed request failed", "attempt", attempt, "max", policy.MaxAttempts, "url", url, "err", err)
	}

	data, err := shared.Retry(ctx, policy, func(ctx context.Context) ([]byte, error) {
		return c.get(ctx, url)
	})
	if err != nil {
		return nil, err
	}

	snapshot, err := Parse(data)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("retrieved feed", "updated", snapshot.Updated, "entries", len(snapshot.Entries))
	return snapshot, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

// Parse decodes an Atom document into a [models.FeedSnapshot].
//
// The snapshot's Updated value is the first entry's <updated> timestamp. Entries without content are skipped.
func Parse(data []byte) (*models.FeedSnapshot, error) {
	var doc atomFeed
	if err := xml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrFeedParse, err)
	}

	if len(doc.Entries) == 0 {
		return nil, fmt.Errorf("%w: feed has no entries", shared.ErrFeedParse)
	}

	updated := strings.TrimSpace(doc.Entries[0].Updated)
	if updated == "" {
		return nil, fmt.Errorf("%w: <updated> date not found in the feed", shared.ErrFeedParse)
	}

	snapshot := &models.FeedSnapshot{Updated: updated, Entries: []string{}}
	for _, entry := range doc.Entries {
		if body := entry.Content.body(); body != "" {
			snapshot.Entries = append(snapshot.Entries, body)
		}
	}

	return snapshot, nil
}
