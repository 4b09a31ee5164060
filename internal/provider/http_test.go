package provider_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arodri-go/events/internal/provider"
)

const catalogXML = `<?xml version="1.0" encoding="UTF-8"?>
<eventList version="1.0">
  <output>
    <base_event base_event_id="291" sell_mode="online" title="Camela en concierto">
      <event event_start_date="2021-06-30T21:00:00" event_end_date="2021-06-30T22:00:00" event_id="291">
        <zone zone_id="40" capacity="243" price="20.00" name="Platea" numbered="true"/>
        <zone zone_id="38" capacity="100" price="15.00" name="Grada 2" numbered="false"/>
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
      </event>
    </base_event>
  </output>
</eventList>`

func newCatalogServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPCatalog_OnlineEvents(t *testing.T) {
	srv := newCatalogServer(t, http.StatusOK, catalogXML)
	catalog := provider.NewHTTPCatalog(srv.URL, 2*time.Second)

	events, err := catalog.OnlineEvents(context.Background())
	require.NoError(t, err)

	// The offline event is dropped; catalog order is preserved.
	require.Len(t, events, 2)
	assert.Equal(t, "291", events[0].ID)
	assert.Equal(t, "1591", events[1].ID)

	first := events[0]
	assert.Equal(t, "Camela en concierto", first.Title)
	assert.Equal(t, "2021-06-30T21:00:00", first.StartDate)
	assert.Equal(t, "2021-06-30T22:00:00", first.EndDate)
	require.Len(t, first.Zones, 2)
	assert.Equal(t, "20.00", first.Zones[0].Price)
	assert.Equal(t, "15.00", first.Zones[1].Price)
}

func TestHTTPCatalog_OnlineEvents_SingleZoneIsASequence(t *testing.T) {
	// One base_event with one zone, neither wrapped in anything. The parsed
	// result must still expose a one-element zone slice.
	body := `<?xml version="1.0" encoding="UTF-8"?>
<eventList version="1.0">
  <output>
    <base_event base_event_id="7" sell_mode="online" title="Solo show">
      <event event_start_date="2021-07-15T20:00:00" event_end_date="2021-07-15T22:00:00" event_id="7">
        <zone zone_id="1" capacity="10" price="42.50" name="Main" numbered="false"/>
      </event>
    </base_event>
  </output>
</eventList>`
	srv := newCatalogServer(t, http.StatusOK, body)
	catalog := provider.NewHTTPCatalog(srv.URL, 2*time.Second)

	events, err := catalog.OnlineEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Len(t, events[0].Zones, 1)
	assert.Equal(t, "42.50", events[0].Zones[0].Price)
}

func TestHTTPCatalog_OnlineEvents_EmptyCatalog(t *testing.T) {
	body := `<?xml version="1.0" encoding="UTF-8"?>
<eventList version="1.0"><output/></eventList>`
	srv := newCatalogServer(t, http.StatusOK, body)
	catalog := provider.NewHTTPCatalog(srv.URL, 2*time.Second)

	events, err := catalog.OnlineEvents(context.Background())
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestHTTPCatalog_OnlineEvents_UpstreamStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{name: "server error", status: http.StatusInternalServerError},
		{name: "not found", status: http.StatusNotFound},
		{name: "too many requests", status: http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newCatalogServer(t, tt.status, "nope")
			catalog := provider.NewHTTPCatalog(srv.URL, 2*time.Second)

			_, err := catalog.OnlineEvents(context.Background())
			assert.ErrorIs(t, err, provider.ErrUnavailable)
		})
	}
}

func TestHTTPCatalog_OnlineEvents_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	catalog := provider.NewHTTPCatalog(url, 500*time.Millisecond)

	_, err := catalog.OnlineEvents(context.Background())
	assert.ErrorIs(t, err, provider.ErrUnavailable)
}

func TestHTTPCatalog_OnlineEvents_MalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not xml", body: `{"events": []}`},
		{name: "truncated document", body: `<?xml version="1.0"?><eventList><output><base_event`},
		{name: "wrong root element", body: `<?xml version="1.0"?><status>maintenance</status>`},
		{name: "event list nested under another root", body: `<?xml version="1.0"?><response><eventList><output/></eventList></response>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newCatalogServer(t, http.StatusOK, tt.body)
			catalog := provider.NewHTTPCatalog(srv.URL, 2*time.Second)

			_, err := catalog.OnlineEvents(context.Background())
			assert.ErrorIs(t, err, provider.ErrMalformed)
		})
	}
}

func TestHTTPCatalog_OnlineEvents_IgnoresUnknownFields(t *testing.T) {
	body := `<?xml version="1.0" encoding="UTF-8"?>
<eventList version="1.0">
  <output>
    <base_event base_event_id="9" sell_mode="online" title="Extras" organizer_company_id="4" popularity="high">
      <event event_start_date="2021-07-01T10:00:00" event_end_date="2021-07-01T11:00:00" event_id="9" sold_out="false">
        <extra_info note="ignored"/>
        <zone zone_id="1" capacity="10" price="10.00" name="Main" numbered="false"/>
      </event>
    </base_event>
  </output>
</eventList>`
	srv := newCatalogServer(t, http.StatusOK, body)
	catalog := provider.NewHTTPCatalog(srv.URL, 2*time.Second)

	events, err := catalog.OnlineEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "9", events[0].ID)
	require.Len(t, events[0].Zones, 1)
}
