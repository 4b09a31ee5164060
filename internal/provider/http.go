package provider

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPCatalog fetches the event catalog from an HTTP endpoint.
type HTTPCatalog struct {
	url        string
	httpClient *http.Client
}

// NewHTTPCatalog creates a new HTTPCatalog. The timeout bounds the whole
// fetch, connect through body read.
func NewHTTPCatalog(url string, timeout time.Duration) *HTTPCatalog {
	return &HTTPCatalog{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

const sellModeOnline = "online"

// Upstream document shape: eventList > output > base_event*. Each base_event
// holds one event element with one or more zone children. encoding/xml
// decodes a single zone and a repeated zone into the same slice, so
// downstream code only ever sees a sequence. The pinned XMLName rejects
// well-formed XML with a different root instead of decoding it into an
// empty catalog.
type eventListDoc struct {
	XMLName xml.Name `xml:"eventList"`
	Output  struct {
		BaseEvents []baseEventDoc `xml:"base_event"`
	} `xml:"output"`
}

type baseEventDoc struct {
	ID       string `xml:"base_event_id,attr"`
	SellMode string `xml:"sell_mode,attr"`
	Title    string `xml:"title,attr"`
	Event    struct {
		StartDate string    `xml:"event_start_date,attr"`
		EndDate   string    `xml:"event_end_date,attr"`
		Zones     []zoneDoc `xml:"zone"`
	} `xml:"event"`
}

type zoneDoc struct {
	Price string `xml:"price,attr"`
}

// OnlineEvents performs one GET against the catalog endpoint and returns the
// events whose sell mode is "online", preserving catalog order.
func (c *HTTPCatalog) OnlineEvents(ctx context.Context) ([]Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close() // Explicitly ignore close error
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: upstream returned status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrUnavailable, err)
	}

	var doc eventListDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	events := make([]Event, 0, len(doc.Output.BaseEvents))
	for _, be := range doc.Output.BaseEvents {
		if be.SellMode != sellModeOnline {
			continue
		}
		zones := make([]Zone, 0, len(be.Event.Zones))
		for _, z := range be.Event.Zones {
			zones = append(zones, Zone{Price: z.Price})
		}
		events = append(events, Event{
			ID:        be.ID,
			Title:     be.Title,
			StartDate: be.Event.StartDate,
			EndDate:   be.Event.EndDate,
			Zones:     zones,
		})
	}

	return events, nil
}
