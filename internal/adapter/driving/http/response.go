package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/boscoh/breachwatch/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// StatusResponse reports service readiness: whether the API key is
// configured, whether the credential source is reachable and unlocked, and
// the most recent report if any.
type StatusResponse struct {
	Status           string            `json:"status"`
	APIKeyConfigured bool              `json:"api_key_configured"`
	Vault            string            `json:"vault"`
	VaultError       string            `json:"vault_error,omitempty"`
	LatestReport     *model.ReportMeta `json:"latest_report,omitempty"`
}

// ReportListResponse is the report listing payload: per-report metadata plus
// totals aggregated across all stored reports.
type ReportListResponse struct {
	Reports          []model.ReportMeta `json:"reports"`
	Total            int                `json:"total"`
	TotalCompromised int                `json:"total_compromised"`
}

// StartCheckRequest is the JSON body for the start check endpoint. Accounts
// are optional email addresses to check alongside the vault passwords.
type StartCheckRequest struct {
	Accounts []string `json:"accounts"`
}

// StartCheckResponse acknowledges an accepted check task.
type StartCheckResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// ScanResponse is the JSON representation of one scan-history row.
type ScanResponse struct {
	Filename    string `json:"filename"`
	GeneratedAt string `json:"generated_at"`
	Total       int    `json:"total"`
	Safe        int    `json:"safe"`
	Compromised int    `json:"compromised"`
	Errors      int    `json:"errors"`
	Critical    int    `json:"critical_count"`
	High        int    `json:"high_count"`
	Severity    string `json:"severity"`
}

// StatsResponse is the dashboard statistics payload. CompromisedDelta is the
// change in compromised count between the two most recent scans; it is
// omitted when fewer than two scans exist.
type StatsResponse struct {
	TotalScans       int            `json:"total_scans"`
	RecentScans      []ScanResponse `json:"recent_scans"`
	CompromisedDelta *int           `json:"compromised_delta,omitempty"`
}

// toScanResponse converts a domain ScanRecord to its JSON representation.
func toScanResponse(scan model.ScanRecord) ScanResponse {
	return ScanResponse{
		Filename:    scan.Filename,
		GeneratedAt: scan.GeneratedAt.UTC().Format(time.RFC3339),
		Total:       scan.Total,
		Safe:        scan.Safe,
		Compromised: scan.Compromised,
		Errors:      scan.Errors,
		Critical:    scan.Critical,
		High:        scan.High,
		Severity:    string(scan.Severity),
	}
}
