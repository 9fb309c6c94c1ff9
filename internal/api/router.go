// Package api exposes exports over HTTP for non-interactive callers.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/alexanderramin/mediasheet/internal/domain"
	"github.com/alexanderramin/mediasheet/internal/export"
	"github.com/alexanderramin/mediasheet/internal/service"
	"github.com/alexanderramin/mediasheet/internal/tabsync"
)

const versionPath = "/clients/{clientId}/campaigns/{campaignId}/versions/{versionId}"

type Server struct {
	exports service.ExportService
	tabs    service.TabSyncService
	logger  *zap.Logger
}

func NewServer(exports service.ExportService, tabs service.TabSyncService, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{exports: exports, tabs: tabs, logger: logger}
}

// Handler returns the routes wrapped with panic recovery and access logs
// written to accessLog.
func (s *Server) Handler(accessLog io.Writer) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.HandleFunc(versionPath+"/exports", s.postExport).Methods(http.MethodPost)
	r.HandleFunc(versionPath+"/tab-sync", s.postTabSync).Methods(http.MethodPost)

	var h http.Handler = r
	if accessLog != nil {
		h = handlers.CombinedLoggingHandler(accessLog, h)
	}
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(zap.NewStdLog(s.logger)),
		handlers.PrintRecoveryStack(false),
	)(h)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type exportRequest struct {
	SpreadsheetID string `json:"spreadsheetId"`
	Actor         string `json:"actor"`
	Language      string `json:"language,omitempty"`
}

type exportResponse struct {
	RunID         string          `json:"runId"`
	DocumentID    string          `json:"documentId,omitempty"`
	Status        string          `json:"status"`
	Language      string          `json:"language,omitempty"`
	Rows          int             `json:"rows"`
	BreakdownRows int             `json:"breakdownRows"`
	TabSync       *tabSyncSummary `json:"tabSync,omitempty"`
	TabSyncError  string          `json:"tabSyncError,omitempty"`
	Failure       *failureBody    `json:"failure,omitempty"`
	StartedAt     time.Time       `json:"startedAt"`
	FinishedAt    time.Time       `json:"finishedAt"`
}

type tabSyncSummary struct {
	Mode    string `json:"mode"`
	Created int    `json:"created"`
	Renamed int    `json:"renamed"`
	Deleted int    `json:"deleted"`
	Tagged  int    `json:"tagged"`
}

type failureBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func refFrom(r *http.Request) domain.VersionRef {
	vars := mux.Vars(r)
	return domain.VersionRef{
		ClientID:   vars["clientId"],
		CampaignID: vars["campaignId"],
		VersionID:  vars["versionId"],
	}
}

func (s *Server) postExport(w http.ResponseWriter, r *http.Request) {
	var body exportRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.SpreadsheetID == "" {
		writeError(w, http.StatusBadRequest, "spreadsheetId is required")
		return
	}
	req := export.Request{Ref: refFrom(r), SpreadsheetID: body.SpreadsheetID, Actor: body.Actor}
	if body.Language != "" {
		lang, err := domain.ParseLanguage(body.Language)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		req.Language = lang
	}

	res, err := s.exports.Export(r.Context(), req)
	if res == nil {
		s.logger.Error("export returned no result", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	writeJSON(w, statusFor(res.Failure), toResponse(res))
}

func toResponse(res *export.Result) exportResponse {
	out := exportResponse{
		RunID:         res.RunID,
		DocumentID:    res.DocumentID,
		Status:        string(res.Status),
		Language:      string(res.Language),
		Rows:          res.Rows,
		BreakdownRows: res.BreakdownRows,
		StartedAt:     res.StartedAt,
		FinishedAt:    res.FinishedAt,
	}
	if res.TabSync != nil {
		out.TabSync = summarize(*res.TabSync)
	}
	if res.TabSyncErr != nil {
		out.TabSyncError = res.TabSyncErr.Error()
	}
	if res.Failure != nil {
		out.Failure = &failureBody{Kind: string(res.Failure.Kind), Message: res.Failure.Message}
	}
	return out
}

func summarize(r tabsync.Result) *tabSyncSummary {
	return &tabSyncSummary{
		Mode:    string(r.Mode),
		Created: r.Created,
		Renamed: r.Renamed,
		Deleted: r.Deleted,
		Tagged:  r.Tagged,
	}
}

// statusFor maps a failure kind to the HTTP status of the response.
func statusFor(f *export.Failure) int {
	if f == nil {
		return http.StatusOK
	}
	switch f.Kind {
	case export.FailureAuthorization:
		return http.StatusUnauthorized
	case export.FailurePermission:
		return http.StatusForbidden
	case export.FailureNotFound:
		return http.StatusNotFound
	case export.FailureIntegrity:
		return http.StatusUnprocessableEntity
	case export.FailureAPI, export.FailurePartialWrite:
		return http.StatusBadGateway
	case export.FailureCanceled:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

type tabSyncRequest struct {
	SpreadsheetID string `json:"spreadsheetId"`
	Mode          string `json:"mode,omitempty"`
}

func (s *Server) postTabSync(w http.ResponseWriter, r *http.Request) {
	var body tabSyncRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	mode, err := tabsync.ParseMode(body.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.SpreadsheetID == "" {
		writeError(w, http.StatusBadRequest, "spreadsheetId is required")
		return
	}

	res, err := s.tabs.SyncTabs(r.Context(), service.TabSyncRequest{
		Ref: refFrom(r), SpreadsheetID: body.SpreadsheetID, Mode: mode,
	})
	if err != nil {
		f := export.Classify(err)
		if errors.Is(err, tabsync.ErrNoTemplate) || errors.Is(err, tabsync.ErrNoSource) {
			f = &export.Failure{Kind: export.FailureNotFound, Message: err.Error(), Err: err}
		}
		writeJSON(w, statusFor(f), map[string]any{
			"tabSync": summarize(res),
			"failure": failureBody{Kind: string(f.Kind), Message: f.Message},
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tabSync": summarize(res)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
