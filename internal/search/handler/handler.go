// Package handler exposes the search endpoint over HTTP, delegating all
// reconciliation logic to the executor.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"immersion/internal/establishment/models"
	"immersion/internal/platform/middleware"
	"immersion/internal/search/executor"
	pkgstrings "immersion/pkg/platform/strings"
	"immersion/pkg/requestcontext"
)

// Handler wires the search endpoint to the executor.
type Handler struct {
	executor *executor.Executor
	logger   *slog.Logger
}

// New constructs a search handler with its dependencies.
func New(exec *executor.Executor, logger *slog.Logger) *Handler {
	return &Handler{executor: exec, logger: logger}
}

// Register mounts search endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/v2/search", h.HandleSearch)
}

// HandleSearch handles GET /v2/search requests.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	query, parseErrs := queryFromRequest(r)
	if len(parseErrs) > 0 {
		writeBadRequest(w, parseErrs)
		return
	}

	consumer := middleware.ConsumerFromContext(ctx)
	results, err := h.executor.Execute(ctx, query, consumer)
	if err != nil {
		var badRequest *executor.BadRequestError
		if errors.As(err, &badRequest) {
			writeBadRequest(w, badRequest.Violations)
			return
		}
		h.logger.ErrorContext(ctx, "search failed",
			"request_id", requestID,
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
		return
	}

	h.logger.InfoContext(ctx, "search executed",
		"request_id", requestID,
		"results", len(results),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	writeJSON(w, http.StatusOK, results)
}

// queryFromRequest maps URL parameters onto an executor query. Shape errors
// (unparseable numbers) are caught here; semantic validation happens in the
// executor.
func queryFromRequest(r *http.Request) (executor.Query, []string) {
	var (
		query     executor.Query
		parseErrs []string
	)
	params := r.URL.Query()

	parseFloat := func(name string, required bool) float64 {
		raw := params.Get(name)
		if raw == "" {
			if required {
				parseErrs = append(parseErrs, name+" is required")
			}
			return 0
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			parseErrs = append(parseErrs, name+" must be a number")
		}
		return value
	}

	query.Latitude = parseFloat("latitude", true)
	query.Longitude = parseFloat("longitude", true)
	query.DistanceKm = parseFloat("distanceKm", true)
	query.RomeCode = params.Get("rome")
	query.SortedBy = models.SortStrategy(params.Get("sortedBy"))
	query.SearchableBy = models.Audience(params.Get("establishmentSearchableBy"))

	var codes []string
	for _, raw := range params["appellationCodes"] {
		codes = append(codes, strings.Split(raw, ",")...)
	}
	query.AppellationCodes = pkgstrings.DedupeAndTrim(codes)

	if raw := params.Get("voluntaryToImmersion"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			parseErrs = append(parseErrs, "voluntaryToImmersion must be true or false")
		} else {
			query.VoluntaryToImmersion = models.TriStateOf(&value)
		}
	}

	return query, parseErrs
}

func writeBadRequest(w http.ResponseWriter, violations []string) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":      "bad_request",
		"violations": violations,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
