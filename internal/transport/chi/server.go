package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/marketsearch/internal/domain"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/request"
	"github.com/kailas-cloud/marketsearch/internal/domain/window"
	"github.com/kailas-cloud/marketsearch/internal/logger"
	"github.com/kailas-cloud/marketsearch/internal/telemetry"
	healthuc "github.com/kailas-cloud/marketsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/marketsearch/internal/usecase/search"
	windowsuc "github.com/kailas-cloud/marketsearch/internal/usecase/windows"
)

// Error codes returned in the JSON error body.
const (
	CodeInvalidParameter = "invalid_parameter"
	CodeTimeout          = "timeout"
	CodeInternalError    = "internal_error"
	CodeUnauthorized     = "unauthorized"
	CodeRateLimited      = "rate_limited"
	CodeCanceled         = "canceled"
)

// StatusClientClosedRequest is reported when the caller went away mid-request.
const StatusClientClosedRequest = 499

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Errors  []domain.FieldError `json:"errors,omitempty"`
}

// HealthResponse is the JSON body of GET /health.
type HealthResponse struct {
	Status  healthuc.Status                 `json:"status"`
	Checks  map[string]healthuc.CheckResult `json:"checks"`
	Version string                          `json:"version,omitempty"`
}

// WindowsResponse is the JSON body of GET /nearby-windows.
type WindowsResponse struct {
	Windows []window.Hit `json:"windows"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the marketplace search API.
type Server struct {
	search        *searchuc.Service
	windows       *windowsuc.Service
	health        *healthuc.Service
	defaults      request.Defaults
	version       string
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	windows *windowsuc.Service,
	health *healthuc.Service,
	defaults request.Defaults,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:   search,
		windows:  windows,
		health:   health,
		defaults: defaults,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		validationHandler,
		sentinelHandler(domain.ErrTimeout, http.StatusGatewayTimeout, CodeTimeout),
		sentinelHandler(context.DeadlineExceeded, http.StatusGatewayTimeout, CodeTimeout),
		sentinelHandler(context.Canceled, StatusClientClosedRequest, CodeCanceled),
	}
	return s
}

// WithVersion sets the build version reported by /health.
func (s *Server) WithVersion(v string) *Server {
	s.version = v
	return s
}

// Search handles GET /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	q, err := request.Parse(r.URL.Query(), s.defaults)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	res, err := s.search.Search(r.Context(), q, UserIDFromContext(r.Context()))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Facets handles GET /facets.
func (s *Server) Facets(w http.ResponseWriter, r *http.Request) {
	q, err := request.Parse(r.URL.Query(), s.defaults)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	facets, err := s.search.Facets(r.Context(), q, UserIDFromContext(r.Context()))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, facets)
}

// NearbyWindows handles GET /nearby-windows.
func (s *Server) NearbyWindows(w http.ResponseWriter, r *http.Request) {
	q, err := request.ParseNearby(r.URL.Query(), s.defaults)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	hits, err := s.windows.Nearby(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, WindowsResponse{Windows: hits})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  report.Status,
		Checks:  report.Checks,
		Version: s.version,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// validationHandler reports every offending parameter at once.
func validationHandler(w http.ResponseWriter, err error) bool {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		if errors.Is(err, domain.ErrInvalidParameter) {
			writeError(w, http.StatusBadRequest, CodeInvalidParameter, domain.ErrInvalidParameter.Error())
			return true
		}
		return false
	}
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Code:    CodeInvalidParameter,
		Message: domain.ErrInvalidParameter.Error(),
		Errors:  ve.Fields,
	})
	return true
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("request failed", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	telemetry.CaptureError(r.Context(), err)
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
