package search

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/arodri-go/events/internal/obs"
	"github.com/arodri-go/events/internal/provider"
	"github.com/arodri-go/events/internal/search/types"
)

// scheduleLayout is the upstream timestamp format. The provider emits these
// without an offset; they are UTC by contract.
const scheduleLayout = "2006-01-02T15:04:05"

// Query is a validated search window. Both bounds carry an explicit offset.
type Query struct {
	StartsAt time.Time
	EndsAt   time.Time
}

// DataError reports an upstream record that cannot be turned into an Event.
// It fails the whole request; there is no partial-response mode.
type DataError struct {
	EventID string
	Reason  string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("event %s: %s", e.EventID, e.Reason)
}

// Service runs a search window against the upstream catalog.
type Service struct {
	catalog provider.Catalog
	metrics *obs.Metrics
	logger  *slog.Logger
}

// NewService creates a new Service.
func NewService(catalog provider.Catalog, metrics *obs.Metrics, logger *slog.Logger) *Service {
	return &Service{
		catalog: catalog,
		metrics: metrics,
		logger:  logger,
	}
}

// Search fetches the online catalog, keeps the events fully inside the query
// window, and maps them to API events. The result preserves catalog order.
func (s *Service) Search(ctx context.Context, q Query) ([]types.Event, error) {
	remote, err := s.catalog.OnlineEvents(ctx)
	if err != nil {
		s.metrics.IncUpstreamErrors()
		return nil, err
	}

	scheduled, err := parseSchedules(remote)
	if err != nil {
		return nil, err
	}

	kept := filterByRange(scheduled, q)
	s.logger.Debug("catalog filtered",
		"online_events", len(remote),
		"in_range", len(kept),
		"starts_at", q.StartsAt,
		"ends_at", q.EndsAt,
	)

	events := make([]types.Event, 0, len(kept))
	for _, ev := range kept {
		dto, err := toEvent(ev)
		if err != nil {
			return nil, err
		}
		events = append(events, dto)
	}

	return events, nil
}

// scheduledEvent pairs a remote event with its parsed schedule so timestamps
// are parsed once for both filtering and mapping.
type scheduledEvent struct {
	remote provider.Event
	start  time.Time
	end    time.Time
}

func parseSchedules(events []provider.Event) ([]scheduledEvent, error) {
	out := make([]scheduledEvent, 0, len(events))
	for _, ev := range events {
		start, err := time.ParseInLocation(scheduleLayout, ev.StartDate, time.UTC)
		if err != nil {
			return nil, &DataError{EventID: ev.ID, Reason: fmt.Sprintf("bad event_start_date %q", ev.StartDate)}
		}
		end, err := time.ParseInLocation(scheduleLayout, ev.EndDate, time.UTC)
		if err != nil {
			return nil, &DataError{EventID: ev.ID, Reason: fmt.Sprintf("bad event_end_date %q", ev.EndDate)}
		}
		out = append(out, scheduledEvent{remote: ev, start: start, end: end})
	}
	return out, nil
}

// filterByRange keeps events whose start and end both fall inside the window.
// Both bounds are inclusive; input order is preserved.
func filterByRange(events []scheduledEvent, q Query) []scheduledEvent {
	kept := make([]scheduledEvent, 0, len(events))
	for _, ev := range events {
		if ev.start.Before(q.StartsAt) || ev.end.After(q.EndsAt) {
			continue
		}
		kept = append(kept, ev)
	}
	return kept
}

func toEvent(ev scheduledEvent) (types.Event, error) {
	// An event without zones has no price to report. Failing loudly beats
	// emitting sentinel extremes.
	if len(ev.remote.Zones) == 0 {
		return types.Event{}, &DataError{EventID: ev.remote.ID, Reason: "no pricing zones"}
	}

	var minPrice, maxPrice float64
	for i, z := range ev.remote.Zones {
		price, err := strconv.ParseFloat(z.Price, 64)
		if err != nil {
			return types.Event{}, &DataError{EventID: ev.remote.ID, Reason: fmt.Sprintf("bad zone price %q", z.Price)}
		}
		if i == 0 || price < minPrice {
			minPrice = price
		}
		if i == 0 || price > maxPrice {
			maxPrice = price
		}
	}

	return types.Event{
		ID:        ev.remote.ID,
		Title:     ev.remote.Title,
		StartDate: ev.start.Format("2006-01-02"),
		StartTime: ev.start.Format("15:04:05"),
		EndDate:   ev.end.Format("2006-01-02"),
		EndTime:   ev.end.Format("15:04:05"),
		MinPrice:  minPrice,
		MaxPrice:  maxPrice,
	}, nil
}
