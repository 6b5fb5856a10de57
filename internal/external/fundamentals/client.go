package fundamentals

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wonny/scorecard/internal/contracts"
	"github.com/wonny/scorecard/pkg/httputil"
	"github.com/wonny/scorecard/pkg/logger"
)

var (
	// ErrNotFound means the source has no page for the ticker
	ErrNotFound = errors.New("fundamentals not found")
	// ErrNoSnapshot means the page had no snapshot table
	ErrNoSnapshot = errors.New("snapshot table not found")
)

// Client fetches quote pages from the fundamentals source
// ⭐ SSOT: 펀더멘털 원천 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	now        func() time.Time
}

// NewClient creates a new fundamentals client
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithComponent("fundamentals.client"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		now:        time.Now,
	}
}

// FetchSnapshot downloads and parses the snapshot for ticker
func (c *Client) FetchSnapshot(ctx context.Context, ticker string) (*contracts.FundamentalSnapshot, error) {
	params := url.Values{}
	params.Set("t", ticker)
	fullURL := fmt.Sprintf("%s/quote.ashx?%s", c.baseURL, params.Encode())

	body, err := c.httpClient.GetBody(ctx, fullURL)
	if err != nil {
		var statusErr *httputil.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetch snapshot for %s: %w", ticker, err)
	}

	snap, err := ParseSnapshot(ticker, string(body))
	if err != nil {
		return nil, fmt.Errorf("parse snapshot for %s: %w", ticker, err)
	}
	snap.FetchedAt = c.now().UTC()

	c.logger.WithField("ticker", ticker).Debug("Fundamentals snapshot fetched")
	return snap, nil
}
