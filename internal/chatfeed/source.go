package chatfeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/suPer8Hu/chat-dashboard/internal/metrics"
)

const maxFeedBytes = 32 << 20

var ErrUpstreamUnavailable = errors.New("chat feed unavailable")

// Cache stores raw webhook payloads. Get reports a miss with ok=false.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

// Result is what Fetch hands back together with where the records came from.
type Result struct {
	Records []Record `json:"records"`
	Origin  string   `json:"origin"`
}

type Source struct {
	Client   *http.Client
	Cache    Cache
	CacheTTL time.Duration
	Now      func() time.Time

	logger *slog.Logger
}

func NewSource(timeout time.Duration, cache Cache, ttl time.Duration) *Source {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Source{
		Client:   &http.Client{Timeout: timeout},
		Cache:    cache,
		CacheTTL: ttl,
		Now:      time.Now,
		logger:   slog.Default().With("component", "chatfeed"),
	}
}

// Fetch loads the records served by webhookURL. It never fails: when the
// URL is empty or the upstream cannot be read the sample records are
// returned instead.
func (s *Source) Fetch(ctx context.Context, webhookURL string) Result {
	webhookURL = strings.TrimSpace(webhookURL)
	if webhookURL == "" {
		s.log().Info("no webhook configured, serving sample data")
		metrics.FeedFetched(metrics.FeedSample)
		return Result{Records: Sample(s.now()), Origin: metrics.FeedSample}
	}

	key := "chatfeed:" + webhookURL
	if s.Cache != nil && s.CacheTTL > 0 {
		b, ok, err := s.Cache.Get(ctx, key)
		if err != nil {
			s.log().Warn("feed cache read failed", "error", err)
		} else if ok {
			var recs []Record
			if err := json.Unmarshal(b, &recs); err == nil {
				metrics.FeedFetched(metrics.FeedCached)
				return Result{Records: recs, Origin: metrics.FeedCached}
			}
		}
	}

	body, recs, err := s.fetchUpstream(ctx, webhookURL)
	if err != nil {
		s.log().Warn("webhook fetch failed, serving sample data", "error", err)
		metrics.FeedFetched(metrics.FeedSample)
		return Result{Records: Sample(s.now()), Origin: metrics.FeedSample}
	}

	if s.Cache != nil && s.CacheTTL > 0 {
		if err := s.Cache.Set(ctx, key, body, s.CacheTTL); err != nil {
			s.log().Warn("feed cache write failed", "error", err)
		}
	}
	metrics.FeedFetched(metrics.FeedLive)
	return Result{Records: recs, Origin: metrics.FeedLive}
}

func (s *Source) fetchUpstream(ctx context.Context, url string) ([]byte, []Record, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	metrics.ObserveUpstream(time.Since(start))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	var recs []Record
	if err := json.Unmarshal(body, &recs); err != nil {
		return nil, nil, fmt.Errorf("%w: decoding: %v", ErrUpstreamUnavailable, err)
	}
	if recs == nil {
		recs = []Record{}
	}
	return body, recs, nil
}

func (s *Source) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Source) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}
