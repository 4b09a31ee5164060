package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/arodri-go/events/internal/middleware"
	"github.com/arodri-go/events/internal/obs"
	"github.com/arodri-go/events/internal/provider"
	"github.com/arodri-go/events/internal/search"
	"github.com/arodri-go/events/internal/search/ratelimit"
	"github.com/arodri-go/events/internal/search/types"
)

// Error codes for API error responses.
const (
	CodeValidation          = "validation_error"
	CodeRateLimited         = "rate_limit_exceeded"
	CodeUpstreamUnavailable = "upstream_unavailable"
	CodeUpstreamInvalid     = "upstream_invalid"
	CodeInternalError       = "internal_error"
)

// Handler handles HTTP requests.
type Handler struct {
	service     *search.Service
	rateLimiter *ratelimit.Limiter
	metrics     *obs.Metrics
	logger      *slog.Logger
}

// New creates a new Handler.
func New(
	service *search.Service,
	rateLimiter *ratelimit.Limiter,
	metrics *obs.Metrics,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		service:     service,
		rateLimiter: rateLimiter,
		metrics:     metrics,
		logger:      logger,
	}
}

// SearchResponse is the success envelope for /search.
type SearchResponse struct {
	Data SearchData `json:"data"`
}

// SearchData holds the event list inside the envelope.
type SearchData struct {
	Events []types.Event `json:"events"`
}

// APIError is the error object in the error envelope.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the error envelope for all non-2xx responses.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// SearchHandler handles /search requests.
func (h *Handler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	h.metrics.IncRequests()
	requestID := middleware.RequestID(r.Context())

	// Check rate limit
	ip := ExtractIP(r)
	if !h.rateLimiter.Allow(ip) {
		h.metrics.IncRateLimited()
		h.logger.Warn("rate limit exceeded", "request_id", requestID, "ip", ip)
		writeError(w, http.StatusTooManyRequests, CodeRateLimited, "rate limit exceeded")
		return
	}

	// Validate query parameters before touching the upstream catalog
	q, err := ParseSearchQuery(r)
	if err != nil {
		h.logger.Debug("invalid request parameters", "request_id", requestID, "error", err, "ip", ip)
		writeError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	events, err := h.service.Search(r.Context(), q)
	if err != nil {
		h.writeSearchError(w, err, requestID)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(SearchResponse{Data: SearchData{Events: events}}); err != nil {
		// Can't change status after WriteHeader, just log
		h.logger.Error("failed to encode response", "request_id", requestID, "error", err)
	}
}

// writeSearchError maps pipeline errors onto client-facing responses. The
// raw error text stays in the logs.
func (h *Handler) writeSearchError(w http.ResponseWriter, err error, requestID string) {
	var dataErr *search.DataError

	switch {
	case errors.Is(err, provider.ErrUnavailable):
		h.logger.Error("upstream catalog unavailable",
			"request_id", requestID,
			"error", err,
		)
		writeError(w, http.StatusBadGateway, CodeUpstreamUnavailable, "event catalog is unavailable")
	case errors.Is(err, provider.ErrMalformed):
		h.logger.Error("upstream catalog returned malformed document",
			"request_id", requestID,
			"error", err,
		)
		writeError(w, http.StatusBadGateway, CodeUpstreamInvalid, "event catalog returned an invalid response")
	case errors.As(err, &dataErr):
		h.logger.Error("catalog event could not be mapped",
			"request_id", requestID,
			"event_id", dataErr.EventID,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, CodeInternalError, "event data could not be processed")
	default:
		h.logger.Error("search failed",
			"request_id", requestID,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, CodeInternalError, "search failed")
	}
}

// ValidationError reports a rejected query parameter.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Message
}

// queryTimeLayout is the accepted timestamp shape before the offset suffix.
const queryTimeLayout = "2006-01-02T15:04:05"

// ParseSearchQuery parses and validates the starts_at and ends_at query
// parameters. Both are required and must carry an explicit UTC offset.
func ParseSearchQuery(r *http.Request) (search.Query, error) {
	query := r.URL.Query()

	startsAt, err := parseQueryTime(query, "starts_at")
	if err != nil {
		return search.Query{}, err
	}

	endsAt, err := parseQueryTime(query, "ends_at")
	if err != nil {
		return search.Query{}, err
	}

	return search.Query{StartsAt: startsAt, EndsAt: endsAt}, nil
}

func parseQueryTime(query url.Values, field string) (time.Time, error) {
	raw := strings.TrimSpace(query.Get(field))
	if raw == "" {
		return time.Time{}, &ValidationError{Field: field, Message: "is required"}
	}

	// RFC 3339 is the offset-carrying variant of the accepted layout.
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}

	if _, err := time.Parse(queryTimeLayout, raw); err == nil {
		// Parsable, but carries no offset information.
		return time.Time{}, &ValidationError{Field: field, Message: "must be in UTC, e.g. 2021-06-29T14:32:28Z"}
	}

	return time.Time{}, &ValidationError{Field: field, Message: "must be a timestamp like 2021-06-29T14:32:28Z"}
}

// ExtractIP extracts the client IP from the request.
// Checks X-Forwarded-For, X-Real-IP, then falls back to RemoteAddr.
func ExtractIP(r *http.Request) string {
	// Check X-Forwarded-For (first IP in the list)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	// Check X-Real-IP
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fallback to RemoteAddr (strip port)
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// writeError writes a JSON error envelope.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: APIError{Code: code, Message: message}})
}
