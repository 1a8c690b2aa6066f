package web

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rsharma-dev/leadbook/internal/core"
	"github.com/rsharma-dev/leadbook/internal/logging"
)

// actorHeader carries the requesting identity. Upstream auth terminates the
// session and forwards the user id; mutations without it are rejected.
const actorHeader = "X-Actor-ID"

var errActorRequired = errors.New("missing or invalid " + actorHeader + " header")

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// actorID extracts the requesting identity from the request headers.
func actorID(r *http.Request) (uuid.UUID, error) {
	raw := r.Header.Get(actorHeader)
	if raw == "" {
		return uuid.Nil, errActorRequired
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errActorRequired
	}
	return id, nil
}

// leadID extracts and parses the {leadID} URL parameter.
func leadID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "leadID"))
}

func (s *Server) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		respondErrorJSON(w, http.StatusBadRequest, "ACTOR_REQUIRED", err.Error())
		return
	}

	var candidate core.Candidate
	if err := decodeJSON(r, &candidate); err != nil {
		respondErrorJSON(w, http.StatusBadRequest, "BAD_JSON", err.Error())
		return
	}

	lead, err := s.service.CreateLead(r.Context(), actor, candidate)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("lead created", "lead_id", lead.ID, "actor_id", actor)
	writeJSON(w, http.StatusCreated, lead)
}

func (s *Server) handleGetLead(w http.ResponseWriter, r *http.Request) {
	id, err := leadID(r)
	if err != nil {
		respondErrorJSON(w, http.StatusBadRequest, "BAD_ID", "invalid lead id")
		return
	}

	lead, err := s.service.GetLead(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

// listResponse is the envelope for paginated lead listings.
type listResponse struct {
	Leads    []core.Lead `json:"leads"`
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
}

func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	filter, page, sort := listParams(r)

	leads, total, err := s.service.ListLeads(r.Context(), filter, page, sort)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{
		Leads:    leads,
		Total:    total,
		Page:     page.Page,
		PageSize: page.PageSize,
	})
}

// updateResponse pairs the stored lead with the field-level diff so clients
// can surface exactly what changed.
type updateResponse struct {
	Lead core.Lead `json:"lead"`
	Diff core.Diff `json:"diff"`
}

func (s *Server) handleUpdateLead(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		respondErrorJSON(w, http.StatusBadRequest, "ACTOR_REQUIRED", err.Error())
		return
	}
	id, err := leadID(r)
	if err != nil {
		respondErrorJSON(w, http.StatusBadRequest, "BAD_ID", "invalid lead id")
		return
	}

	var candidate core.Candidate
	if err := decodeJSON(r, &candidate); err != nil {
		respondErrorJSON(w, http.StatusBadRequest, "BAD_JSON", err.Error())
		return
	}

	lead, diff, err := s.service.UpdateLead(r.Context(), actor, id, candidate)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("lead updated",
		"lead_id", id, "actor_id", actor, "changed_fields", len(diff))
	writeJSON(w, http.StatusOK, updateResponse{Lead: lead, Diff: diff})
}

func (s *Server) handleDeleteLead(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		respondErrorJSON(w, http.StatusBadRequest, "ACTOR_REQUIRED", err.Error())
		return
	}
	id, err := leadID(r)
	if err != nil {
		respondErrorJSON(w, http.StatusBadRequest, "BAD_ID", "invalid lead id")
		return
	}

	if err := s.service.DeleteLead(r.Context(), actor, id); err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("lead deleted", "lead_id", id, "actor_id", actor)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, err := leadID(r)
	if err != nil {
		respondErrorJSON(w, http.StatusBadRequest, "BAD_ID", "invalid lead id")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	recs, err := s.service.History(r.Context(), id, limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]core.ChangeRecord{"history": recs})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		respondErrorJSON(w, http.StatusBadRequest, "ACTOR_REQUIRED", err.Error())
		return
	}

	raw, filename, err := s.readImportFile(r)
	if err != nil {
		respondErrorJSON(w, http.StatusBadRequest, "BAD_UPLOAD", err.Error())
		return
	}

	result, err := s.service.ImportLeads(r.Context(), actor, raw)
	if err != nil && result == nil {
		s.respondError(w, r, err)
		return
	}

	logger := logging.WithFields(r.Context(), "actor_id", actor, "filename", filename)
	if err != nil {
		// Partial success: report what landed plus the failure.
		logger.Error("import partially failed",
			"inserted", len(result.Inserted), "error", err)
		writeJSON(w, http.StatusInternalServerError, result)
		return
	}

	logger.Info("import completed",
		"total_rows", result.Report.Summary.TotalRows,
		"valid", result.Report.Summary.ValidCount,
		"invalid", result.Report.Summary.InvalidCount)
	writeJSON(w, http.StatusOK, result)
}

// readImportFile pulls the CSV payload out of a multipart form ("file"
// field) or, for text/csv requests, the raw body.
func (s *Server) readImportFile(r *http.Request) ([]byte, string, error) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(nil, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		// Not multipart: accept a raw CSV body.
		raw, readErr := io.ReadAll(r.Body)
		if readErr != nil {
			return nil, "", readErr
		}
		if len(raw) == 0 {
			return nil, "", errors.New("request body is empty")
		}
		return raw, "", nil
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", errors.New(`multipart form must carry a "file" field`)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	return raw, header.Filename, nil
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	filter, _, _ := listParams(r)

	data, err := s.service.ExportLeads(r.Context(), filter)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="leads.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logging.FromContext(r.Context()).Error("export write failed", "error", err)
	}
}

// listParams reads the shared filter/pagination/sort query parameters.
func listParams(r *http.Request) (core.Filter, core.Page, core.Sort) {
	q := r.URL.Query()

	filter := core.Filter{
		City:         q.Get("city"),
		PropertyType: q.Get("propertyType"),
		Status:       q.Get("status"),
		Timeline:     q.Get("timeline"),
		Search:       q.Get("search"),
	}

	page := core.Page{Page: 1, PageSize: core.DefaultPageSize}
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 0 {
		page.Page = n
	}
	if n, err := strconv.Atoi(q.Get("pageSize")); err == nil && n > 0 && n <= 100 {
		page.PageSize = n
	}

	sort := core.Sort{
		Column: q.Get("sort"),
		Desc:   q.Get("order") != "asc",
	}
	return filter, page, sort
}
