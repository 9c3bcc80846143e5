package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/tablebook/internal/availability"
	"github.com/example/tablebook/internal/booking"
	"github.com/example/tablebook/internal/capacity"
	"github.com/example/tablebook/internal/domain/reservation"
)

type Server struct {
	Bookings     *booking.Engine
	Availability *availability.Engine
	Policy       *capacity.Policy
	Tables       reservation.TableStore
	Reservations reservation.Lister
	Log          *zap.Logger
}

func (s *Server) Routes() http.Handler {
	if s.Log == nil {
		s.Log = zap.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.Log))

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok\n")
	})

	t := r.Group("/v1/tenants/:tenant")
	t.POST("/actions", s.handleAction)
	t.GET("/availability", s.handleAvailability)
	t.GET("/stats", s.handleStats)
	t.GET("/config", s.handleGetConfig)
	t.PATCH("/config", s.handlePatchConfig)
	t.GET("/tables/available", s.handleTablesAvailable)

	return r
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("tenant", c.Param("tenant")),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": msg})
}

// internal logs err and answers 500 without leaking details.
func (s *Server) internal(c *gin.Context, err error) {
	s.Log.Error("request failed",
		zap.String("path", c.FullPath()),
		zap.String("tenant", c.Param("tenant")),
		zap.Error(err),
	)
	fail(c, http.StatusInternalServerError, "internal error")
}

func Start(ctx context.Context, addr string, h http.Handler, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info("listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
