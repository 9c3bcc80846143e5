package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/example/tablebook/internal/availability"
	"github.com/example/tablebook/internal/booking"
	"github.com/example/tablebook/internal/capacity"
	"github.com/example/tablebook/internal/domain/reservation"
	"github.com/example/tablebook/internal/tables"
	"github.com/example/tablebook/internal/timemath"
)

type actionRequest struct {
	booking.Action
	Phone string     `json:"phone"`
	Now   *time.Time `json:"now"`
}

var failureStatus = map[booking.Failure]int{
	booking.FailureValidation: http.StatusBadRequest,
	booking.FailureNotFound:   http.StatusNotFound,
	booking.FailurePolicy:     http.StatusConflict,
}

func (s *Server) handleAction(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	scope := booking.Scope{Tenant: c.Param("tenant"), Phone: req.Phone}
	if req.Now != nil {
		scope.Now = *req.Now
	}
	res, err := s.Bookings.Execute(c.Request.Context(), req.Action, scope)
	if err != nil {
		s.internal(c, err)
		return
	}
	status := http.StatusOK
	if !res.Success {
		status = failureStatus[res.Failure]
	}
	c.JSON(status, res)
}

func (s *Server) handleAvailability(c *gin.Context) {
	party, err := strconv.Atoi(c.Query("party_size"))
	if err != nil {
		fail(c, http.StatusBadRequest, "party_size must be an integer")
		return
	}
	res, err := s.Availability.Check(c.Request.Context(), c.Param("tenant"),
		c.Query("date"), c.Query("time"), party, c.Query("exclude_id"))
	if reservation.IsValidation(err) {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.internal(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleStats(c *gin.Context) {
	phone := c.Query("phone")
	if phone == "" {
		fail(c, http.StatusBadRequest, "phone is required")
		return
	}
	stats, err := s.Bookings.GetStats(c.Request.Context(), c.Param("tenant"), phone, time.Time{})
	if err != nil {
		s.internal(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleGetConfig(c *gin.Context) {
	cfg, err := s.Policy.Get(c.Request.Context(), c.Param("tenant"))
	if err != nil {
		s.internal(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (s *Server) handlePatchConfig(c *gin.Context) {
	var patch capacity.Overrides
	if err := c.ShouldBindJSON(&patch); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	cfg, err := s.Policy.Update(c.Request.Context(), c.Param("tenant"), patch)
	if err != nil {
		s.internal(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

type tablesResponse struct {
	Tables       []reservation.Table        `json:"tables"`
	Pick         *reservation.Table         `json:"pick,omitempty"`
	Alternatives []availability.Alternative `json:"alternatives"`
}

func (s *Server) handleTablesAvailable(c *gin.Context) {
	ctx := c.Request.Context()
	req := tables.Request{
		Tenant:    c.Param("tenant"),
		Date:      c.Query("date"),
		Time:      c.Query("time"),
		ExcludeID: c.Query("exclude_id"),
	}
	if _, ok := timemath.ParseDate(req.Date); !ok {
		fail(c, http.StatusBadRequest, reservation.ErrInvalidDate.Error())
		return
	}
	if _, ok := timemath.ParseTimeToMinutes(req.Time); !ok {
		fail(c, http.StatusBadRequest, reservation.ErrInvalidTime.Error())
		return
	}
	party, err := strconv.Atoi(c.Query("party_size"))
	if err != nil || party < 1 {
		fail(c, http.StatusBadRequest, reservation.ErrInvalidPartySize.Error())
		return
	}
	req.PartySize = party

	cfg, err := s.Policy.Get(ctx, req.Tenant)
	if err != nil {
		s.internal(c, err)
		return
	}
	list, err := s.Tables.ListTables(ctx, req.Tenant)
	if err != nil {
		s.internal(c, err)
		return
	}
	booked, err := s.Reservations.ListActiveByDate(ctx, req.Tenant, req.Date)
	if err != nil {
		s.internal(c, err)
		return
	}

	out := tablesResponse{
		Tables:       tables.ListAvailable(cfg, req, list, booked),
		Alternatives: []availability.Alternative{},
	}
	if pick, ok := tables.PickForReservation(cfg, req, list, booked); ok {
		out.Pick = &pick
	} else {
		out.Alternatives = tables.SuggestAlternativeTimesByTables(cfg, req, list, booked)
	}
	c.JSON(http.StatusOK, out)
}
