// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the price store over a read-only HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pdiddy/price-engine/internal/store"
	"github.com/pdiddy/price-engine/pkg/types"
)

// Server serves price queries. All endpoints are read-only; writes happen
// through the pipeline commands, never over HTTP.
type Server struct {
	store      *store.Store
	addr       string
	router     *gin.Engine
	httpServer *http.Server
}

// New builds the server and its routes.
func New(s *store.Store, cfg types.ServerConfig) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	srv := &Server{store: s, addr: cfg.Addr, router: router}
	srv.registerRoutes()
	return srv
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.router.Group("/api")
	{
		api.GET("/latest", s.handleLatest)
		api.GET("/prices", s.handlePrices)
		api.GET("/commodities", s.handleCommodities)
		api.GET("/history/:name", s.handleHistory)
		api.GET("/search", s.handleSearch)
		api.GET("/stats", s.handleStats)
	}
}

// ServeHTTP implements http.Handler for tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

// handleLatest returns all prices for the most recent bulletin date.
func (s *Server) handleLatest(c *gin.Context) {
	ctx := c.Request.Context()
	date, err := s.store.LatestDate(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if date == "" {
		c.JSON(http.StatusOK, gin.H{"date": nil, "prices": []store.PriceRow{}})
		return
	}

	rows, err := s.store.PricesByDate(ctx, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if rows == nil {
		rows = []store.PriceRow{}
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "count": len(rows), "prices": rows})
}

// handlePrices returns prices for an explicit ?date=YYYY-MM-DD.
func (s *Server) handlePrices(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
		return
	}

	rows, err := s.store.PricesByDate(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if rows == nil {
		rows = []store.PriceRow{}
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "count": len(rows), "prices": rows})
}

func (s *Server) handleCommodities(c *gin.Context) {
	summaries, err := s.store.Commodities(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if summaries == nil {
		summaries = []store.CommoditySummary{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(summaries), "commodities": summaries})
}

// handleHistory returns up to ?limit= recent observations for one
// commodity name, newest first.
func (s *Server) handleHistory(c *gin.Context) {
	name := c.Param("name")

	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	rows, err := s.store.History(c.Request.Context(), name, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no observations for " + name})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "count": len(rows), "history": rows})
}

// handleSearch matches commodity names against ?q=, on ?date= or the
// latest date when omitted.
func (s *Server) handleSearch(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q query parameter is required"})
		return
	}

	rows, err := s.store.Search(c.Request.Context(), q, c.Query("date"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if rows == nil {
		rows = []store.PriceRow{}
	}
	c.JSON(http.StatusOK, gin.H{"query": q, "count": len(rows), "results": rows})
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.store.ReadStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}
