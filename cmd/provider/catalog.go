package main

import (
	"log/slog"
	"net/http"
)

// fixtureCatalog is the default catalog: a mix of online and offline events,
// with both single-zone and multi-zone pricing.
const fixtureCatalog = `<?xml version="1.0" encoding="UTF-8"?>
<eventList xmlns="http://schemas.fever.example/events" version="1.0">
  <output>
    <base_event base_event_id="291" sell_mode="online" title="Camela en concierto">
      <event event_start_date="2021-06-30T21:00:00" event_end_date="2021-06-30T22:00:00" event_id="291">
        <zone zone_id="40" capacity="243" price="20.00" name="Platea" numbered="true"/>
        <zone zone_id="38" capacity="100" price="15.00" name="Grada 2" numbered="false"/>
        <zone zone_id="30" capacity="90" price="30.00" name="A28" numbered="true"/>
      </event>
    </base_event>
    <base_event base_event_id="322" sell_mode="offline" organizer_company_id="2" title="Pantomima Full">
      <event event_start_date="2021-02-10T20:00:00" event_end_date="2021-02-10T21:30:00" event_id="1591">
        <zone zone_id="311" capacity="2" price="55.00" name="A42" numbered="true"/>
      </event>
    </base_event>
    <base_event base_event_id="1591" sell_mode="online" organizer_company_id="1" title="Los Morancos">
      <event event_start_date="2021-07-31T20:00:00" event_end_date="2021-07-31T21:00:00" event_id="1591">
        <zone zone_id="186" capacity="2" price="75.00" name="Amfiteatre" numbered="true"/>
        <zone zone_id="186" capacity="16" price="65.00" name="Amfiteatre" numbered="false"/>
      </event>
    </base_event>
  </output>
</eventList>`

// fixtureEmpty is a well-formed catalog with no events.
const fixtureEmpty = `<?xml version="1.0" encoding="UTF-8"?>
<eventList xmlns="http://schemas.fever.example/events" version="1.0">
  <output/>
</eventList>`

// fixtureMalformed is a truncated document, for exercising the parse-error
// path end to end.
const fixtureMalformed = `<?xml version="1.0" encoding="UTF-8"?>
<eventList><output><base_event base_event_id="291"`

// Catalog serves a fixed XML catalog document.
type Catalog struct {
	body   string
	logger *slog.Logger
}

// NewCatalog creates a Catalog for the named fixture. The second return value
// is false for an unknown fixture name.
func NewCatalog(fixture string, logger *slog.Logger) (*Catalog, bool) {
	var body string
	switch fixture {
	case "catalog":
		body = fixtureCatalog
	case "empty":
		body = fixtureEmpty
	case "malformed":
		body = fixtureMalformed
	default:
		return nil, false
	}
	return &Catalog{body: body, logger: logger}, true
}

// ServeHTTP handles HTTP requests for the fake provider.
func (c *Catalog) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(c.body)); err != nil {
		c.logger.Error("failed to write catalog response", "error", err)
	}
}
