package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/papapumpkin/when/internal/convert"
	"github.com/papapumpkin/when/internal/telemetry"
)

// Response is the body of /api/convert. Error is set only on failure, in
// which case Locations is empty.
type Response struct {
	convert.Document
	Error string `json:"error,omitempty"`
	Stage string `json:"stage,omitempty"`
}

// ZonesResponse is the body of /api/zones.
type ZonesResponse struct {
	Zones []string `json:"zones"`
}

// HealthResponse is the body of /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	Places int    `json:"places"`
}

func errorResponse(msg string) Response {
	return Response{Document: convert.Document{Locations: []convert.LocationDoc{}}, Error: msg}
}

// handleConvert serves GET /api/convert?q=...&zone=...
func (s *Server) handleConvert(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return c.JSON(http.StatusBadRequest, errorResponse("missing query parameter q"))
	}

	local := s.local
	if id := c.QueryParam("zone"); id != "" {
		loc, err := s.zones.Load(id)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse("unknown zone "+id))
		}
		local = loc
	}

	res, err := s.conv.Load().Convert(q, local)
	if err != nil {
		stage := convert.StageOf(err)
		s.emit(telemetry.Event{
			Kind:      telemetry.KindConversionError,
			RequestID: requestIDOf(c),
			Input:     q,
			Data:      map[string]string{"stage": string(stage)},
		})
		body := errorResponse(err.Error())
		body.Stage = string(stage)
		return c.JSON(statusFor(stage), body)
	}

	s.emit(telemetry.Event{
		Kind:      telemetry.KindConversion,
		RequestID: requestIDOf(c),
		Input:     q,
		Data:      map[string]any{"locations": len(res.Entries), "relative": res.IsRelative},
	})
	return c.JSON(http.StatusOK, Response{Document: res.Document()})
}

func statusFor(stage convert.Stage) int {
	if stage == convert.StageResolve {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

// handleZones serves GET /api/zones.
func (s *Server) handleZones(c echo.Context) error {
	return c.JSON(http.StatusOK, ZonesResponse{Zones: s.zones.Names()})
}

// handleHealth serves GET /healthz.
func (s *Server) handleHealth(c echo.Context) error {
	places := 0
	if g := s.conv.Load().Resolver().Gazetteer(); g != nil {
		places = g.Len()
	}
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Places: places})
}
