package http

import (
	"bytes"
	"fmt"
	"net/http"

	"obra/internal/export"
)

func (s *Server) handleProjectReport(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "projectID")
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	built, err := s.reports.Build(r.Context(), projectID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, built)
}

// handleReportCSV streams the report as a CSV download. The export runs
// into a buffer first so errors still produce a clean error response.
func (s *Server) handleReportCSV(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "projectID")
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	var buf bytes.Buffer
	if err := s.reports.ExportCSV(r.Context(), projectID, &buf); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="presupuesto_%d.csv"`, projectID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleReportExcel(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "projectID")
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	var buf bytes.Buffer
	if err := s.reports.ExportExcel(r.Context(), projectID, &buf); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="presupuesto_%d.xlsx"`, projectID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleReportPrint(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "projectID")
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	var buf bytes.Buffer
	if err := s.reports.RenderPrint(r.Context(), projectID, &buf); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

type columnResponse struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Numeric bool   `json:"numeric"`
	Percent bool   `json:"percent"`
}

func (s *Server) handleGetColumns(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "projectID")
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	cols, err := s.reports.Columns(r.Context(), projectID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	out := make([]columnResponse, 0, len(cols))
	for _, c := range cols {
		out = append(out, columnResponse{
			Key:     c.Key,
			Label:   c.Label,
			Numeric: c.Numeric,
			Percent: c.Percent,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

type columnsRequest struct {
	Columns []string `json:"columns" validate:"required,min=1,dive,required"`
}

func (s *Server) handlePutColumns(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "projectID")
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	var req columnsRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	for _, key := range req.Columns {
		if !export.ValidColumnKey(key) {
			respondJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: fmt.Sprintf("unknown column key %q", key)})
			return
		}
	}

	if err := s.reports.SaveColumns(r.Context(), projectID, req.Columns); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
