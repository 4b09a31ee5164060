package provider

import (
	"context"
	"errors"
)

// Event is one base event from the upstream catalog. Only online-sellable
// events leave this package, so the sell mode is not carried. Schedule
// timestamps and zone prices are kept as raw strings; interpreting them is
// the search layer's concern.
type Event struct {
	ID        string
	Title     string
	StartDate string
	EndDate   string
	Zones     []Zone
}

// Zone is a pricing tier attached to an event's schedule.
type Zone struct {
	Price string
}

// Catalog is the upstream event catalog.
type Catalog interface {
	// OnlineEvents fetches the full catalog and returns the events that are
	// sellable online, in catalog order.
	OnlineEvents(ctx context.Context) ([]Event, error)
}

// ErrUnavailable is returned when the upstream catalog cannot be reached or
// responds with a non-2xx status.
var ErrUnavailable = errors.New("catalog unavailable")

// ErrMalformed is returned when the upstream response body is not the
// expected XML document.
var ErrMalformed = errors.New("malformed catalog response")
