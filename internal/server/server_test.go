package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papapumpkin/when/internal/convert"
	"github.com/papapumpkin/when/internal/gazetteer"
	"github.com/papapumpkin/when/internal/resolve"
	"github.com/papapumpkin/when/internal/telemetry"
	"github.com/papapumpkin/when/internal/tzdb"
)

var ref = time.Date(2024, 3, 9, 22, 30, 0, 0, time.UTC)

func newTestServer(t *testing.T, opts ...Option) (*Server, *tzdb.Service) {
	t.Helper()
	g, err := gazetteer.Default()
	require.NoError(t, err)
	a, err := gazetteer.DefaultAirports()
	require.NoError(t, err)
	zones := tzdb.New(tzdb.WithSearchDirs(), tzdb.WithFallbackNames(g.Zones()...))
	conv := convert.New(resolve.New(g, a, zones), convert.WithClock(func() time.Time { return ref }))
	return New(conv, zones, opts...), zones
}

func get(t *testing.T, h http.Handler, target string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestConvert_OK(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	rec := get(t, s.Handler(), "/api/convert?q="+strings.ReplaceAll("5pm in yyz -> sfo", " ", "+"))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Empty(t, body.Error)
	assert.False(t, body.IsRelative)
	require.Len(t, body.Locations, 2)
	assert.Equal(t, "2024-03-09T17:00:00-05:00", body.Locations[0].Datetime)
	assert.Equal(t, "America/Los_Angeles", body.Locations[1].Timezone.Name)
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))
}

func TestConvert_ZoneParameter(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	rec := get(t, s.Handler(), "/api/convert?q=now&zone=Asia/Tokyo")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.True(t, body.IsRelative)
	require.Len(t, body.Locations, 1)
	assert.Equal(t, "Asia/Tokyo", body.Locations[0].Timezone.Name)
	assert.Equal(t, "2024-03-10T07:30:00+09:00", body.Locations[0].Datetime)

	rec = get(t, s.Handler(), "/api/convert?q=now&zone=Mars/Olympus")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConvert_Errors(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	tests := []struct {
		name      string
		target    string
		wantCode  int
		wantStage string
	}{
		{"missing q", "/api/convert", http.StatusBadRequest, ""},
		{"parse", "/api/convert?q=5pm+ion+vienna", http.StatusBadRequest, "parse"},
		{"evaluate", "/api/convert?q=30.02.2021", http.StatusBadRequest, "evaluate"},
		{"resolve", "/api/convert?q=now+in+Atlantis", http.StatusUnprocessableEntity, "resolve"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := get(t, s.Handler(), tt.target)
			assert.Equal(t, tt.wantCode, rec.Code)
			body := decode(t, rec)
			assert.NotEmpty(t, body.Error)
			assert.Equal(t, tt.wantStage, body.Stage)
			assert.NotNil(t, body.Locations)
			assert.Empty(t, body.Locations)
		})
	}
}

func TestRequestID_Propagated(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	rec := get(t, s.Handler(), "/healthz", headerRequestID, "abc-123")
	assert.Equal(t, "abc-123", rec.Header().Get(headerRequestID))

	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Positive(t, health.Places)
}

func TestZones(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	rec := get(t, s.Handler(), "/api/zones")
	require.Equal(t, http.StatusOK, rec.Code)
	var body ZonesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Zones, "UTC")
	assert.Contains(t, body.Zones, "Europe/Vienna")
}

func TestRateLimit(t *testing.T) {
	t.Parallel()
	var events bytes.Buffer
	s, _ := newTestServer(t, WithRateLimit(0.001, 2), WithTelemetry(telemetry.NewWriterEmitter(&events)))

	for range 2 {
		assert.Equal(t, http.StatusOK, get(t, s.Handler(), "/api/zones").Code)
	}
	rec := get(t, s.Handler(), "/api/zones")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, events.String(), telemetry.KindRateLimited)

	// Health checks are not limited.
	assert.Equal(t, http.StatusOK, get(t, s.Handler(), "/healthz").Code)
}

func TestSwap(t *testing.T) {
	t.Parallel()
	s, zones := newTestServer(t)

	rec := get(t, s.Handler(), "/api/convert?q=now+in+Gotham")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	g := gazetteer.New([]gazetteer.Place{
		{Name: "Gotham", CountryCode: "US", TimezoneID: "America/New_York", Population: 1},
	}, nil)
	s.Swap(convert.New(resolve.New(g, nil, zones), convert.WithClock(func() time.Time { return ref })))

	rec = get(t, s.Handler(), "/api/convert?q=now+in+Gotham")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	require.Len(t, body.Locations, 1)
	assert.Equal(t, "America/New_York", body.Locations[0].Timezone.Name)
}

func TestConvert_EmitsTelemetry(t *testing.T) {
	t.Parallel()
	var events bytes.Buffer
	s, _ := newTestServer(t, WithTelemetry(telemetry.NewWriterEmitter(&events)))

	get(t, s.Handler(), "/api/convert?q=noon+in+tokyo")
	get(t, s.Handler(), "/api/convert?q=noon+in+Atlantis")

	lines := strings.Split(strings.TrimSpace(events.String()), "\n")
	require.Len(t, lines, 2)
	var first, second telemetry.Event
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, telemetry.KindConversion, first.Kind)
	assert.Equal(t, "noon in tokyo", first.Input)
	assert.NotEmpty(t, first.RequestID)
	assert.Equal(t, telemetry.KindConversionError, second.Kind)
}
