// Package httphandler is the HTTP driving adapter serving the dashboard API.
package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/mail"
	"time"

	"github.com/boscoh/breachwatch/internal/application"
	"github.com/boscoh/breachwatch/internal/domain/model"
	"github.com/boscoh/breachwatch/internal/domain/port/driven"
)

// recentScanLimit caps the scan history returned by the stats endpoint.
const recentScanLimit = 20

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	taskSvc       *application.TaskService
	source        driven.CredentialSource
	reportStore   driven.ReportStore
	scanStore     driven.ScanStore
	keyConfigured bool
	logger        *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. scanStore may
// be nil; the stats endpoint then reports zero history.
func NewHandler(
	taskSvc *application.TaskService,
	source driven.CredentialSource,
	reportStore driven.ReportStore,
	scanStore driven.ScanStore,
	keyConfigured bool,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		taskSvc:       taskSvc,
		source:        source,
		reportStore:   reportStore,
		scanStore:     scanStore,
		keyConfigured: keyConfigured,
		logger:        logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/status", h.Status)
	mux.HandleFunc("POST /api/v1/checks", h.StartCheck)
	mux.HandleFunc("GET /api/v1/checks/{id}", h.GetCheck)
	mux.HandleFunc("GET /api/v1/reports", h.ListReports)
	mux.HandleFunc("GET /api/v1/reports/{filename}", h.GetReport)
	mux.HandleFunc("GET /api/v1/stats", h.Stats)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Health returns a liveness response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// Status reports readiness: API key presence and credential source state.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Status:           "ok",
		APIKeyConfigured: h.keyConfigured,
		Vault:            "unlocked",
	}

	if err := h.source.Verify(r.Context()); err != nil {
		resp.Vault = "unavailable"
		resp.VaultError = err.Error()
	}

	if metas, err := h.reportStore.List(); err == nil && len(metas) > 0 {
		resp.LatestReport = &metas[0]
	}

	writeJSON(w, http.StatusOK, resp)
}

// StartCheck launches a background check task and returns its id with 202.
// The request body is optional; an empty body starts a password-only check.
func (h *Handler) StartCheck(w http.ResponseWriter, r *http.Request) {
	var req StartCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	for _, account := range req.Accounts {
		if _, err := mail.ParseAddress(account); err != nil {
			writeError(w, http.StatusBadRequest, "invalid account address")
			return
		}
	}

	// The task must outlive this request, so its context is detached from
	// the request's cancellation.
	id := h.taskSvc.Start(context.WithoutCancel(r.Context()), req.Accounts)
	writeJSON(w, http.StatusAccepted, StartCheckResponse{TaskID: id, Status: "pending"})
}

// GetCheck returns the current snapshot of one task.
func (h *Handler) GetCheck(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	task, ok := h.taskSvc.Status(id)
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// ListReports returns metadata for all stored reports, newest first, with
// totals aggregated across them.
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	metas, err := h.reportStore.List()
	if err != nil {
		h.logger.Error("failed to list reports", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := ReportListResponse{Reports: metas, Total: len(metas)}
	if resp.Reports == nil {
		resp.Reports = []model.ReportMeta{}
	}
	for _, meta := range metas {
		resp.TotalCompromised += meta.Summary.Compromised
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetReport returns one stored report by filename.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")

	report, err := h.reportStore.Get(filename)
	if errors.Is(err, driven.ErrBadFilename) {
		writeError(w, http.StatusBadRequest, "invalid report filename")
		return
	}
	if errors.Is(err, driven.ErrNotFound) {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to read report", "filename", filename, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Stats returns dashboard statistics from the scan-history index.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{RecentScans: []ScanResponse{}}

	if h.scanStore == nil {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	count, err := h.scanStore.Count(r.Context())
	if err != nil {
		h.logger.Error("failed to count scans", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	resp.TotalScans = count

	scans, err := h.scanStore.Recent(r.Context(), recentScanLimit)
	if err != nil {
		h.logger.Error("failed to list recent scans", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	for _, scan := range scans {
		resp.RecentScans = append(resp.RecentScans, toScanResponse(scan))
	}
	if len(scans) >= 2 {
		delta := scans[0].Compromised - scans[1].Compromised
		resp.CompromisedDelta = &delta
	}

	writeJSON(w, http.StatusOK, resp)
}
