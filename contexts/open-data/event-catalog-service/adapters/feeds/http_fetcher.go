package feeds

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"opendata/contexts/open-data/event-catalog-service/ports"
)

const maxFeedBytes = 16 << 20

// HTTPFetcher downloads feeds with a per-attempt timeout and exponential
// backoff between attempts. Server errors and transport failures are
// retried; client errors are returned as fetched.
type HTTPFetcher struct {
	Client         *http.Client
	Attempts       int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	UserAgent      string
	Logger         *slog.Logger
}

func NewHTTPFetcher(timeout time.Duration, attempts int, logger *slog.Logger) HTTPFetcher {
	return HTTPFetcher{
		Client:         NewHTTPClient(timeout),
		Attempts:       attempts,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		UserAgent:      "opendata-harvester/1.0",
		Logger:         logger,
	}
}

func NewHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}

func (f HTTPFetcher) Fetch(ctx context.Context, url string) (ports.FetchedFeed, error) {
	client := f.Client
	if client == nil {
		client = NewHTTPClient(10 * time.Second)
	}

	var feed ports.FetchedFeed
	attempt := 0
	err := Retry(ctx, f.Attempts, f.InitialBackoff, f.MaxBackoff, func() error {
		attempt++
		fetched, err := f.fetchOnce(ctx, client, url)
		if err != nil {
			if f.Logger != nil {
				f.Logger.Debug("feed fetch attempt failed",
					"event", "catalog_feed_fetch_attempt_failed",
					"module", "open-data/event-catalog-service",
					"layer", "adapter",
					"url", url,
					"attempt", attempt,
					"error", err.Error(),
				)
			}
			return err
		}
		feed = fetched
		return nil
	})
	if err != nil {
		return ports.FetchedFeed{}, err
	}
	return feed, nil
}

var errServerStatus = errors.New("feed server error")

func (f HTTPFetcher) fetchOnce(ctx context.Context, client *http.Client, url string) (ports.FetchedFeed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ports.FetchedFeed{}, err
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}
	req.Header.Set("Accept", "text/calendar, application/vnd.collection+json, application/json;q=0.9")

	resp, err := client.Do(req)
	if err != nil {
		return ports.FetchedFeed{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return ports.FetchedFeed{}, fmt.Errorf("%w: status %d", errServerStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return ports.FetchedFeed{}, err
	}
	return ports.FetchedFeed{
		URL:         url,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// Retry runs fn up to attempts times, doubling the wait between attempts
// up to max.
func Retry(ctx context.Context, attempts int, initial, max time.Duration, fn func() error) error {
	if attempts <= 1 {
		return fn()
	}
	d := initial
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := fn(); err != nil {
			if i == attempts-1 {
				return err
			}
			if d < max {
				d *= 2
				if d > max {
					d = max
				}
			}
			continue
		}
		return nil
	}
	return errors.New("retry: exhausted")
}
