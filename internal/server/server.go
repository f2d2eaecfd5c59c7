// Package server exposes the payment calculator over an HTTP JSON API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/reverse-mortgage/internal/cache"
	"github.com/iwvelando/reverse-mortgage/internal/config"
	"github.com/iwvelando/reverse-mortgage/pkg/mortgage"
	"github.com/iwvelando/reverse-mortgage/pkg/output"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	requestIDHeader = "X-Request-ID"
	shutdownTimeout = 10 * time.Second
)

type requestIDKey struct{}

type handler struct {
	logger         *zap.Logger
	cache          cache.Cache
	limiter        *RateLimiter
	maxRequestSize int64
	version        string
}

// Server serves the payment API.
type Server struct {
	logger  *zap.Logger
	handler *handler
	mux     http.Handler
	address string
}

// New constructs the server. A nil cache disables caching.
func New(logger *zap.Logger, c cache.Cache, opts Options) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if c == nil {
		c = cache.Nop{}
	}

	h := &handler{
		logger:         logger,
		cache:          c,
		maxRequestSize: opts.MaxRequestSize,
		version:        opts.Version,
	}
	if h.version == "" {
		h.version = "dev"
	}
	if opts.RateLimitCapacity > 0 {
		h.limiter = NewRateLimiter(opts.RateLimitCapacity, opts.RateLimitRefill)
	}

	mux := http.NewServeMux()

	// Calculation API endpoints
	mux.Handle("/api/payment", h.rateLimit(http.HandlerFunc(h.handlePayment)))
	mux.Handle("/api/validate", h.rateLimit(http.HandlerFunc(h.handleValidate)))
	mux.Handle("/api/export", h.rateLimit(http.HandlerFunc(h.handleExport)))
	mux.HandleFunc("/api/life-expectancy", h.handleLifeExpectancy)

	// Metadata endpoints
	mux.HandleFunc("/api/version", h.handleVersion)
	mux.HandleFunc("/healthz", h.handleHealth)

	return &Server{
		logger:  logger,
		handler: h,
		mux:     h.withRequestID(mux),
		address: opts.Address,
	}
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening",
			zap.String("op", "server.Run"),
			zap.String("address", s.address),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down",
		zap.String("op", "server.Run"),
	)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	return err
}

// Close releases the rate limiter and the cache.
func (s *Server) Close() {
	if s.handler.limiter != nil {
		s.handler.limiter.Stop()
	}
	if err := s.handler.cache.Close(); err != nil {
		s.logger.Warn("failed to close cache",
			zap.String("op", "server.Close"),
			zap.Error(err),
		)
	}
}

type paymentResponse struct {
	MonthlyPayment float64            `json:"monthlyPayment"`
	Formatted      string             `json:"formatted"`
	Breakdown      mortgage.Breakdown `json:"breakdown"`
	Cached         bool               `json:"cached"`
	RequestID      string             `json:"requestId"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func (h *handler) handlePayment(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePayment"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	in, _, ok := h.decodeInputs(w, r, op)
	if !ok {
		return
	}

	key := cache.Key(in)
	breakdown, cached := h.lookup(r.Context(), key)
	if !cached {
		var err error
		breakdown, err = mortgage.CalculateBreakdown(in)
		if err != nil {
			h.respondValidationError(w, r, err, op)
			return
		}
		h.store(r.Context(), key, breakdown)
	}

	h.logger.Info("payment computed",
		zap.String("op", op),
		zap.String("requestId", requestID(r.Context())),
		zap.Float64("monthlyPayment", breakdown.MonthlyPayment),
		zap.Bool("capped", breakdown.Capped),
		zap.Bool("cached", cached),
		zap.Duration("duration", time.Since(start)),
	)

	h.writeJSON(w, http.StatusOK, paymentResponse{
		MonthlyPayment: breakdown.MonthlyPayment,
		Formatted:      output.Currency(breakdown.MonthlyPayment),
		Breakdown:      breakdown,
		Cached:         cached,
		RequestID:      requestID(r.Context()),
	})
}

func (h *handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	if _, _, ok := h.decodeInputs(w, r, "server.handleValidate"); !ok {
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"valid":     true,
		"requestId": requestID(r.Context()),
	})
}

func (h *handler) handleExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExport"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	in, payload, ok := h.decodeInputs(w, r, op)
	if !ok {
		return
	}

	name := "scenario"
	if raw, ok := payload["name"].(string); ok && strings.TrimSpace(raw) != "" {
		name = strings.TrimSpace(raw)
	}

	doc := struct {
		Scenarios []config.Scenario `yaml:"scenarios"`
	}{
		Scenarios: []config.Scenario{config.ScenarioFromInputs(name, in)},
	}

	yamlBytes, err := yaml.Marshal(doc)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to encode scenario: %v", err), "", op)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"scenarioYaml": string(yamlBytes),
	})
}

func (h *handler) handleLifeExpectancy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	rawAge := strings.TrimSpace(r.URL.Query().Get("age"))
	age, err := strconv.Atoi(rawAge)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest,
			fmt.Sprintf("age must be an integer, got %q", rawAge), "", "server.handleLifeExpectancy")
		return
	}

	years := mortgage.LifeExpectancyYears(age)
	h.writeJSON(w, http.StatusOK, map[string]int{
		"age":    age,
		"years":  years,
		"months": years * 12,
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// decodeInputs reads and validates the six inputs from a JSON body. When it
// returns false a response has already been written.
func (h *handler) decodeInputs(w http.ResponseWriter, r *http.Request, op string) (mortgage.Inputs, map[string]interface{}, bool) {
	if h.maxRequestSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestSize)
	}

	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()

	var payload map[string]interface{}
	if err := decoder.Decode(&payload); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxRequestSize), "", op)
			return mortgage.Inputs{}, nil, false
		}
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), "", op)
		return mortgage.Inputs{}, nil, false
	}

	in, err := mortgage.ValidateRaw(mortgage.RawFromMap(payload))
	if err != nil {
		h.respondValidationError(w, r, err, op)
		return mortgage.Inputs{}, nil, false
	}
	return in, payload, true
}

func (h *handler) lookup(ctx context.Context, key string) (mortgage.Breakdown, bool) {
	var breakdown mortgage.Breakdown

	value, ok, err := h.cache.Get(ctx, key)
	if err != nil {
		h.logger.Warn("cache lookup failed",
			zap.String("op", "server.lookup"),
			zap.Error(err),
		)
		return breakdown, false
	}
	if !ok {
		return breakdown, false
	}

	if err := json.Unmarshal([]byte(value), &breakdown); err != nil {
		h.logger.Warn("discarding unreadable cache entry",
			zap.String("op", "server.lookup"),
			zap.String("key", key),
			zap.Error(err),
		)
		return mortgage.Breakdown{}, false
	}
	return breakdown, true
}

func (h *handler) store(ctx context.Context, key string, breakdown mortgage.Breakdown) {
	encoded, err := json.Marshal(breakdown)
	if err != nil {
		return
	}
	if err := h.cache.Set(ctx, key, string(encoded)); err != nil {
		h.logger.Warn("cache store failed",
			zap.String("op", "server.store"),
			zap.Error(err),
		)
	}
}

func (h *handler) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (h *handler) respondValidationError(w http.ResponseWriter, r *http.Request, err error, op string) {
	status := http.StatusUnprocessableEntity
	if !mortgage.IsValidationError(err) {
		status = http.StatusInternalServerError
	}
	h.respondErrorWithOp(w, r, status, err.Error(), mortgage.KindName(err), op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, r *http.Request, status int, msg, kind, op string) {
	id := requestID(r.Context())
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.String("requestId", id),
		zap.Int("status", status),
		zap.String("kind", kind),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, errorResponse{Error: msg, Kind: kind, RequestID: id})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
