// Package api is the HTTP surface of the trade advisor.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/cors"

	"sc-trade-advisor/internal/config"
	"sc-trade-advisor/internal/db"
	"sc-trade-advisor/internal/engine"
	"sc-trade-advisor/internal/logger"
	"sc-trade-advisor/internal/ratelimit"
)

// HealthChecker reports whether the upstream market API is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) bool
}

// Server wires the advisor engine, rate limiter, and history store into the
// HTTP API.
type Server struct {
	cfg     *config.Config
	advisor *engine.Advisor
	limiter ratelimit.Limiter
	db      *db.DB
	health  HealthChecker
}

// NewServer creates a Server. db may be nil (history endpoints return empty).
func NewServer(cfg *config.Config, advisor *engine.Advisor, limiter ratelimit.Limiter, database *db.DB, health HealthChecker) *Server {
	return &Server{
		cfg:     cfg,
		advisor: advisor,
		limiter: limiter,
		db:      database,
		health:  health,
	}
}

// Handler returns the HTTP handler with all API routes and CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("POST /api/trade/routes", s.handleTradeRoutes)
	mux.HandleFunc("GET /api/trade/history", s.handleTradeHistory)

	c := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(mux)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	uexOK := false
	if s.health != nil {
		uexOK = s.health.HealthCheck(r.Context())
	}
	writeJSON(w, map[string]interface{}{
		"uex_ok":    uexOK,
		"uex_url":   s.cfg.UEX.BaseURL,
		"db_open":   s.db != nil,
		"timestamp": time.Now().UnixMilli(),
	})
}

type tradeRoutesRequest struct {
	ShipSCU float64 `json:"shipScu"`
}

func (s *Server) handleTradeRoutes(w http.ResponseWriter, r *http.Request) {
	var req tradeRoutesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ShipSCU <= 0 {
		writeError(w, http.StatusBadRequest, "shipScu must be a positive number")
		return
	}

	if s.limiter != nil {
		decision, err := s.limiter.Allow(r.Context(), clientKey(r))
		if err == nil {
			setRateLimitHeaders(w, decision)
			if !decision.Allowed {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
		}
	}

	logger.Infof("API", "trade route scan starting: scu=%.0f", req.ShipSCU)
	started := time.Now()

	report, err := s.advisor.Recommend(r.Context(), req.ShipSCU)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Warnf("API", "trade route scan timed out after %dms", time.Since(started).Milliseconds())
			writeError(w, http.StatusGatewayTimeout, "trade route scan timed out")
			return
		}
		if errors.Is(err, engine.ErrInvalidCargo) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Errorf("API", "trade route scan failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if s.db != nil {
		topROI := 0.0
		if len(report.Legal) > 0 {
			topROI = report.Legal[0].ROI
		}
		if len(report.Illegal) > 0 && report.Illegal[0].ROI > topROI {
			topROI = report.Illegal[0].ROI
		}
		durationMs := time.Since(started).Milliseconds()
		go func() {
			if _, err := s.db.InsertScan(report.ShipSCU, len(report.Legal), len(report.Illegal), topROI, durationMs); err != nil {
				logger.Warnf("DB", "scan history insert failed: %v", err)
			}
		}()
	}

	writeJSON(w, report)
}

func (s *Server) handleTradeHistory(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeJSON(w, []db.ScanRecord{})
		return
	}
	records, err := s.db.RecentScans(20)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []db.ScanRecord{}
	}
	writeJSON(w, records)
}

func setRateLimitHeaders(w http.ResponseWriter, d ratelimit.Decision) {
	w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", d.Limit))
	w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", d.Remaining))
	w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", d.Reset.Unix()))
	if !d.Allowed {
		retry := int(time.Until(d.Reset).Seconds())
		if retry < 1 {
			retry = 1
		}
		w.Header().Set("Retry-After", fmt.Sprintf("%d", retry))
	}
}

// clientKey identifies the caller for rate limiting: the first
// X-Forwarded-For hop when present, else the remote address.
func clientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i > 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
