package workers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "opendata/contexts/open-data/event-catalog-service/application"
	"opendata/contexts/open-data/event-catalog-service/domain/entities"
	domainerrors "opendata/contexts/open-data/event-catalog-service/domain/errors"
	"opendata/contexts/open-data/event-catalog-service/domain/schema"
	"opendata/contexts/open-data/event-catalog-service/ports"
)

// Outcome labels reported to HarvestMetrics.
const (
	OutcomeFetched      = "fetched"
	OutcomeFetchFailed  = "fetch_failed"
	OutcomeParseFailed  = "parse_failed"
	OutcomeUnrecognized = "unrecognized"
	OutcomeCreated      = "created"
	OutcomeUpdated      = "updated"
	OutcomeDiscarded    = "discarded"
)

type SweepReport struct {
	SourcesVisited  int `json:"sources_visited"`
	SourcesFailed   int `json:"sources_failed"`
	EventsCreated   int `json:"events_created"`
	EventsUpdated   int `json:"events_updated"`
	EventsDiscarded int `json:"events_discarded"`
}

// Harvester ingests events from every active source. One source failing to
// fetch or parse does not affect the others; a storage failure aborts the
// sweep.
type Harvester struct {
	Sources     ports.SourceLister
	Events      ports.EventUpserter
	Fetcher     ports.FeedFetcher
	Parser      ports.FeedParser
	Schema      schema.Schema
	IDGenerator ports.IDGenerator
	Clock       ports.Clock
	Metrics     ports.HarvestMetrics
	Logger      *slog.Logger
}

func (h Harvester) RunOnce(ctx context.Context) (SweepReport, error) {
	logger := application.ResolveLogger(h.Logger)
	metrics := h.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}
	startedAt := h.now()
	report := SweepReport{}

	sources, err := h.Sources.ListActiveSources(ctx)
	if err != nil {
		logger.Error("harvest source listing failed",
			"event", "catalog_harvest_sources_failed",
			"module", "open-data/event-catalog-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return report, err
	}

	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.SourcesVisited++

		feedURL := source.String("url")
		candidates, outcome, err := h.read(ctx, feedURL)
		metrics.SourceFetched(outcome)
		if err != nil {
			report.SourcesFailed++
			logger.Warn("harvest source skipped",
				"event", "catalog_harvest_source_skipped",
				"module", "open-data/event-catalog-service",
				"layer", "worker",
				"source_id", source.ID,
				"source_url", feedURL,
				"outcome", outcome,
				"error", err.Error(),
			)
			continue
		}

		for _, candidate := range candidates {
			outcome, err := h.ingest(ctx, feedURL, candidate)
			if err != nil {
				logger.Error("harvest upsert failed",
					"event", "catalog_harvest_upsert_failed",
					"module", "open-data/event-catalog-service",
					"layer", "worker",
					"source_id", source.ID,
					"external_id", candidate.ExternalID,
					"error", err.Error(),
				)
				return report, err
			}
			metrics.EventIngested(outcome)
			switch outcome {
			case OutcomeCreated:
				report.EventsCreated++
			case OutcomeUpdated:
				report.EventsUpdated++
			default:
				report.EventsDiscarded++
			}
		}
	}

	duration := h.now().Sub(startedAt)
	metrics.SweepCompleted(duration)
	logger.Info("harvest sweep completed",
		"event", "catalog_harvest_sweep_completed",
		"module", "open-data/event-catalog-service",
		"layer", "worker",
		"sources_visited", report.SourcesVisited,
		"sources_failed", report.SourcesFailed,
		"events_created", report.EventsCreated,
		"events_updated", report.EventsUpdated,
		"events_discarded", report.EventsDiscarded,
		"duration_ms", duration.Milliseconds(),
	)
	return report, nil
}

func (h Harvester) read(ctx context.Context, feedURL string) ([]ports.FeedCandidate, string, error) {
	if h.Fetcher == nil {
		return nil, OutcomeFetchFailed, fmt.Errorf("%w: no fetcher configured", domainerrors.ErrFeedFetchFailed)
	}
	feed, err := h.Fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return nil, OutcomeFetchFailed, fmt.Errorf("%w: %v", domainerrors.ErrFeedFetchFailed, err)
	}
	if feed.StatusCode < 200 || feed.StatusCode > 299 {
		return nil, OutcomeFetchFailed, fmt.Errorf("%w: status %d", domainerrors.ErrFeedFetchFailed, feed.StatusCode)
	}

	candidates, err := h.Parser.Parse(feed)
	if err != nil {
		if errors.Is(err, domainerrors.ErrFeedFormatUnrecognized) {
			return nil, OutcomeUnrecognized, err
		}
		return nil, OutcomeParseFailed, fmt.Errorf("%w: %v", domainerrors.ErrFeedParseFailed, err)
	}
	return candidates, OutcomeFetched, nil
}

func (h Harvester) ingest(ctx context.Context, feedURL string, candidate ports.FeedCandidate) (string, error) {
	// Feed entries are stored best-effort; only an unusable start time
	// rejects one.
	fields, _ := h.Schema.Coerce(candidate.Fields)
	startTime, ok := fields["start_time"].(time.Time)
	if !ok {
		return OutcomeDiscarded, nil
	}
	if source, _ := fields["source"].(string); source == "" {
		fields["source"] = feedURL
	}

	externalID := strings.TrimSpace(candidate.ExternalID)
	if externalID == "" {
		title, _ := fields["title"].(string)
		externalID = FallbackExternalID(title, startTime)
	}

	id, err := h.IDGenerator.NewID(ctx)
	if err != nil {
		return "", err
	}
	now := h.now()
	_, created, err := h.Events.UpsertEventByExternalID(ctx, entities.Record{
		ID:         id,
		Kind:       entities.KindEvent,
		ExternalID: externalID,
		Fields:     fields,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return "", err
	}
	if created {
		return OutcomeCreated, nil
	}
	return OutcomeUpdated, nil
}

// FallbackExternalID derives a stable identifier for feed entries that carry
// none of their own.
func FallbackExternalID(title string, startTime time.Time) string {
	sum := sha256.Sum256([]byte(title + "|" + schema.FormatTimestamp(startTime)))
	return hex.EncodeToString(sum[:])
}

func (h Harvester) now() time.Time {
	if h.Clock != nil {
		return h.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

type noopMetrics struct{}

func (noopMetrics) SourceFetched(string)         {}
func (noopMetrics) EventIngested(string)         {}
func (noopMetrics) SweepCompleted(time.Duration) {}
