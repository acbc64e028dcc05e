package cli

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mchmarny/moodctl/pkg/data"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type predictRequest struct {
	Text  string `json:"text"`
	Model string `json:"model,omitempty"`
}

func predictAPIHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req predictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Text == "" {
			writeError(w, http.StatusBadRequest, "text is required")
			return
		}

		res, err := classify(db, req.Model, req.Text)
		if err != nil {
			slog.Error("failed to classify text", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to classify text")
			return
		}

		writeJSON(w, http.StatusOK, res)
	}
}

func labelsAPIHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		labels, err := data.GetLabelCounts(db)
		if err != nil {
			slog.Error("failed to get label counts", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to get labels")
			return
		}
		writeJSON(w, http.StatusOK, labels)
	}
}

type corpusSummary struct {
	Documents int64              `json:"documents"`
	Labels    []*data.LabelCount `json:"labels"`
}

func corpusAPIHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		count, err := data.CountDocuments(db)
		if err != nil {
			slog.Error("failed to count documents", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to get corpus summary")
			return
		}
		labels, err := data.GetLabelCounts(db)
		if err != nil {
			slog.Error("failed to get label counts", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to get corpus summary")
			return
		}
		writeJSON(w, http.StatusOK, &corpusSummary{Documents: count, Labels: labels})
	}
}

func runsAPIHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 10
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				limit = n
			}
		}

		runs, err := data.GetRuns(db, limit)
		if err != nil {
			slog.Error("failed to get runs", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to get runs")
			return
		}
		writeJSON(w, http.StatusOK, runs)
	}
}

func latestRunAPIHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		run, err := data.GetRun(db, nil)
		if errors.Is(err, data.ErrNoRuns) {
			writeError(w, http.StatusNotFound, "no runs found")
			return
		}
		if err != nil {
			slog.Error("failed to get latest run", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to get latest run")
			return
		}

		scores, err := data.GetRunScores(db, run.ID)
		if err != nil {
			slog.Error("failed to get run scores", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to get run scores")
			return
		}

		metrics, err := data.GetRunMetrics(db, run.ID)
		if err != nil {
			slog.Error("failed to get run metrics", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to get run metrics")
			return
		}

		writeJSON(w, http.StatusOK, &EvalResult{Run: run, Scores: scores, Metrics: metrics})
	}
}
