package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/bertomartin/ashoka-survey-web/internal/domain"
	"github.com/bertomartin/ashoka-survey-web/internal/model"
	"github.com/bertomartin/ashoka-survey-web/internal/repository"
	"github.com/bertomartin/ashoka-survey-web/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// AuditLogHandler serves the admin audit trail
type AuditLogHandler struct {
	auditLogService *service.AuditLogService
}

// NewAuditLogHandler creates a new audit log handler
func NewAuditLogHandler(auditLogService *service.AuditLogService) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogService: auditLogService,
	}
}

type AuditLogList struct {
	Logs  []model.AuditLog `json:"logs"`
	Total int64            `json:"total"`
}

// GetAuditLogs handles requests to retrieve audit logs with filtering
func (h *AuditLogHandler) GetAuditLogs(w http.ResponseWriter, r *http.Request) {
	params := repository.QueryParams{}
	q := r.URL.Query()

	params.Action = q.Get("action")
	params.EntityType = q.Get("entity_type")
	params.EntityID = q.Get("entity_id")
	params.SubjectID = q.Get("subject_id")

	if orgStr := q.Get("org_id"); orgStr != "" {
		if orgID, err := strconv.ParseInt(orgStr, 10, 64); err == nil {
			params.OrgID = &orgID
		}
	}

	if resultStr := q.Get("result"); resultStr != "" {
		if result, err := strconv.ParseBool(resultStr); err == nil {
			params.Result = &result
		}
	}

	if startTimeStr := q.Get("start_time"); startTimeStr != "" {
		if startTime, err := time.Parse(time.RFC3339, startTimeStr); err == nil {
			params.StartTime = startTime
		}
	}

	if endTimeStr := q.Get("end_time"); endTimeStr != "" {
		if endTime, err := time.Parse(time.RFC3339, endTimeStr); err == nil {
			params.EndTime = endTime
		}
	}

	// Pagination
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		params.Limit = limit
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil && offset >= 0 {
		params.Offset = offset
	}

	logs, total, err := h.auditLogService.GetAuditLogs(r.Context(), params)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve audit logs")
		return
	}

	respondWithJSON(w, http.StatusOK, AuditLogList{Logs: logs, Total: total})
}

// GetAuditLogByID handles requests to retrieve a specific audit log by ID
func (h *AuditLogHandler) GetAuditLogByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid audit log ID format")
		return
	}

	log, err := h.auditLogService.GetAuditLogByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Audit log not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve audit log")
		return
	}

	respondWithJSON(w, http.StatusOK, log)
}
