package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Javier-Villarroel93/Practicas-Backend/internal/audit"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/httperr"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/httpresp"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/timezone"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	logs *audit.Logger
	loc  *time.Location
}

func NewAuditLogsHandler(logs *audit.Logger, tz string) *AuditLogsHandler {
	return &AuditLogsHandler{
		logs: logs,
		loc:  timezone.Location(tz),
	}
}

func (h *AuditLogsHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	q := audit.ListQuery{
		Action: c.Query("action"),
		Entity: c.Query("entity"),
		Page:   page,
		Limit:  limit,
	}

	// --------------------------------------------------
	// Date range, whole clinic days
	// --------------------------------------------------

	if from := c.Query("from"); from != "" {
		d, err := time.ParseInLocation(timezone.DateLayout, from, h.loc)
		if err != nil {
			httperr.BadRequest(c, "invalid_from", "Fecha inicial inválida.")
			return
		}
		q.From = &d
	}

	if to := c.Query("to"); to != "" {
		d, err := time.ParseInLocation(timezone.DateLayout, to, h.loc)
		if err != nil {
			httperr.BadRequest(c, "invalid_to", "Fecha final inválida.")
			return
		}
		end := d.AddDate(0, 0, 1)
		q.To = &end
	}

	logs, total, err := h.logs.List(c.Request.Context(), q)
	if err != nil {
		httperr.InternalCause(c, "audit_list_failed", "Error al listar los registros de auditoría", err)
		return
	}

	httpresp.Page(c, page, limit, total, logs)
}
