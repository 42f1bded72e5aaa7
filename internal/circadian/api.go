package circadian

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/saaga0h/jeeves-circadian/internal/solar"
	"github.com/saaga0h/jeeves-circadian/pkg/config"
	"github.com/saaga0h/jeeves-circadian/pkg/redis"
)

// ErrorResponse is the JSON body returned for failed requests
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// API serves circadian readings over HTTP
type API struct {
	calc    *Calculator
	redis   redis.Client
	cfg     *config.Config
	clock   Clock
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewAPI creates the HTTP API. redisClient may be nil, in which case the
// latest-reading endpoint reports it as unavailable.
func NewAPI(calc *Calculator, redisClient redis.Client, clock Clock, cfg *config.Config, logger *slog.Logger) *API {
	return &API{
		calc:    calc,
		redis:   redisClient,
		cfg:     cfg,
		clock:   clock,
		limiter: rate.NewLimiter(rate.Limit(cfg.APIRateLimit), cfg.APIRateBurst),
		logger:  logger,
	}
}

// Handler returns the API routes
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/circadian", a.handleReading)
	mux.HandleFunc("/circadian/table", a.handleTable)
	mux.HandleFunc("/circadian/latest", a.handleLatest)
	return a.rateLimit(mux)
}

func (a *API) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.limiter.Allow() {
			a.logger.Warn("API rate limit exceeded", "path", r.URL.Path, "remote", r.RemoteAddr)
			a.writeJSON(w, http.StatusTooManyRequests, ErrorResponse{
				Error:   "rate limited",
				Message: "too many requests, retry shortly",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleReading serves GET /circadian?latitude=&longitude=&timezone=&time=
func (a *API) handleReading(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed", Message: r.Method})
		return
	}

	q, err := a.parseQuery(r, "time")
	if err != nil {
		a.writeError(w, err)
		return
	}

	snap := a.calc.At(q.Coordinate, q.Location, q.Time)

	a.logger.Debug("Served circadian reading",
		"latitude", q.Coordinate.Latitude,
		"longitude", q.Coordinate.Longitude,
		"timezone", q.Location.String(),
		"kelvin", snap.Reading.Kelvin)

	a.writeJSON(w, http.StatusOK, NewReadingResponse(snap, a.calc.Settings()))
}

// handleTable serves GET /circadian/table?latitude=&longitude=&timezone=&start=&hours=
func (a *API) handleTable(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed", Message: r.Method})
		return
	}

	q, err := a.parseQuery(r, "start")
	if err != nil {
		a.writeError(w, err)
		return
	}

	hours, err := ParseHours(r.URL.Query().Get("hours"), a.cfg.ProjectionHours, a.cfg.MaxProjectionHours)
	if err != nil {
		a.writeError(w, err)
		return
	}

	start := time.Now()
	rows := a.calc.Project(q.Coordinate, q.Location, q.Time, hours)

	a.logger.Debug("Served circadian table",
		"timezone", q.Location.String(),
		"hours", hours,
		"duration_ms", time.Since(start).Milliseconds())

	a.writeJSON(w, http.StatusOK, NewTableResponse(q, hours, rows, a.calc.Settings()))
}

// handleLatest serves the agent's last published reading for the site
func (a *API) handleLatest(w http.ResponseWriter, r *http.Request) {
	if a.redis == nil {
		a.writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "unavailable", Message: "no reading store configured"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	site := r.URL.Query().Get("site")
	if site == "" {
		site = a.cfg.Site
	}

	payload, err := a.redis.Get(ctx, redis.LatestReadingKey(site))
	if errors.Is(err, redis.ErrNotFound) {
		a.writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not found", Message: "no reading published for site " + site})
		return
	}
	if err != nil {
		a.logger.Error("Failed to read latest reading", "site", site, "error", err)
		a.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error", Message: "failed to read latest reading"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(payload)); err != nil {
		a.logger.Error("Failed to write latest reading", "error", err)
	}
}

// parseQuery reads the coordinate and timezone, defaulting to the configured
// site, and the timestamp from timeParam.
func (a *API) parseQuery(r *http.Request, timeParam string) (Query, error) {
	values := r.URL.Query()

	timezone := values.Get("timezone")
	if timezone == "" {
		timezone = a.cfg.Timezone
	}

	def := solar.Coordinate{Latitude: a.cfg.Latitude, Longitude: a.cfg.Longitude}
	return ParseQuery(values.Get("latitude"), values.Get("longitude"), timezone, values.Get(timeParam), def, a.clock.Now())
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrInvalidRequest) {
		a.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: ErrInvalidRequest.Error(), Message: err.Error()})
		return
	}

	a.logger.Error("Request failed", "error", err)
	a.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error", Message: err.Error()})
}

func (a *API) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.logger.Error("Failed to encode response", "error", err)
	}
}
