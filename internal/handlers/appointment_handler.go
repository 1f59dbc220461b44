package handlers

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/Javier-Villarroel93/Practicas-Backend/internal/domain/appointment"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/dto"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/httperr"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/httpresp"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/middleware"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/timezone"
	ucAppointment "github.com/Javier-Villarroel93/Practicas-Backend/internal/usecase/appointment"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/validators"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentUseCases struct {
	Create       *ucAppointment.CreateAppointment
	Update       *ucAppointment.UpdateAppointment
	Cancel       *ucAppointment.CancelAppointment
	ChangeStatus *ucAppointment.ChangeStatus
	Attendance   *ucAppointment.MarkAttendance
	Reschedule   *ucAppointment.RescheduleAppointment
	List         *ucAppointment.ListAppointments
	Agenda       *ucAppointment.ListAgenda
	Availability *ucAppointment.CheckAvailability
}

type AppointmentHandler struct {
	uc     AppointmentUseCases
	loc    *time.Location
	logger *slog.Logger
}

func NewAppointmentHandler(
	uc AppointmentUseCases,
	tz string,
	logger *slog.Logger,
) *AppointmentHandler {
	return &AppointmentHandler{
		uc:     uc,
		loc:    timezone.Location(tz),
		logger: logger,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type AppointmentRequest struct {
	ClientID  uint  `json:"idCliente" binding:"required,gt=0"`
	PetID     uint  `json:"idMascota" binding:"required,gt=0"`
	ServiceID uint  `json:"idServicio" binding:"required,gt=0"`
	StaffID   *uint `json:"usuarioIdUser" binding:"omitempty,gt=0"`

	Date string `json:"fecha" binding:"required,isodate,notpast"`
	Time string `json:"hora" binding:"required,hhmm"`

	Reason          string   `json:"motivo" binding:"max=255"`
	Symptoms        string   `json:"sintomas" binding:"max=500"`
	PriorDiagnosis  string   `json:"diagnosticoPrevio" binding:"max=300"`
	PriorTreatments []string `json:"tratamientosAnteriores"`
	Notes           string   `json:"notasAdicionales" binding:"max=500"`
}

func (r AppointmentRequest) input() ucAppointment.AppointmentInput {
	return ucAppointment.AppointmentInput{
		ClientID:  r.ClientID,
		PetID:     r.PetID,
		ServiceID: r.ServiceID,
		StaffID:   r.StaffID,
		Date:      r.Date,
		Time:      r.Time,
		Clinical: domain.Clinical{
			Reason:          r.Reason,
			Symptoms:        r.Symptoms,
			PriorDiagnosis:  r.PriorDiagnosis,
			PriorTreatments: r.PriorTreatments,
			Notes:           r.Notes,
		},
	}
}

type ChangeStatusRequest struct {
	Status       string  `json:"estado" binding:"required,apptstatus"`
	Observations *string `json:"observaciones" binding:"omitempty,max=500"`
}

type MarkAttendanceRequest struct {
	Attended   *bool  `json:"asistio" binding:"required"`
	ActualDate string `json:"fechaReal" binding:"omitempty,isodate"`
}

type RescheduleRequest struct {
	Date    string `json:"fecha" binding:"required,isodate,notpast"`
	Time    string `json:"hora" binding:"required,hhmm"`
	StaffID *uint  `json:"usuarioIdUser" binding:"omitempty,gt=0"`
}

type AvailabilityRequest struct {
	Date      string `json:"fecha" binding:"required,isodate"`
	Time      string `json:"hora" binding:"required,hhmm"`
	StaffID   *uint  `json:"usuarioIdUser" binding:"omitempty,gt=0"`
	ExcludeID uint   `json:"idCita" binding:"omitempty,gt=0"`
}

// ======================================================
// HELPERS
// ======================================================

func actorFrom(c *gin.Context) ucAppointment.Actor {
	return ucAppointment.Actor{
		StaffID:   middleware.StaffIDFrom(c),
		RequestID: middleware.RequestIDFrom(c),
	}
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httperr.Validation(c, validators.Translate(err))
		return false
	}
	return true
}

// pathID reads a positive integer path parameter.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		httperr.Validation(c, []httperr.FieldError{{
			Field:   name,
			Message: validators.Message(name, "gt"),
		}})
		return 0, false
	}
	return uint(id), true
}

// fail maps use case errors to responses. Anything that is not a known
// business error is a 500 carrying the error text.
func (h *AppointmentHandler) fail(c *gin.Context, err error, code, message string) {
	switch {
	case httperr.IsBusiness(err, httperr.CodeAppointmentNotFound):
		httperr.NotFound(c, httperr.CodeAppointmentNotFound, "Cita no encontrada.")
	case httperr.IsBusiness(err, httperr.CodeInvalidReference):
		httperr.BadRequest(c, httperr.CodeInvalidReference, "El cliente, la mascota, el servicio o el veterinario no existe.")
	case httperr.IsBusiness(err, httperr.CodeInvalidDateTime):
		httperr.BadRequest(c, httperr.CodeInvalidDateTime, "Fecha u hora inválida.")
	case httperr.IsBusiness(err, httperr.CodeInvalidStatus):
		httperr.BadRequest(c, httperr.CodeInvalidStatus, validators.Message("estado", "apptstatus"))
	default:
		h.logger.Error(message,
			"request_id", middleware.RequestIDFrom(c),
			"err", err,
		)
		httperr.InternalCause(c, code, message, err)
	}
}

// ======================================================
// LIST
// ======================================================

func (h *AppointmentHandler) List(c *gin.Context) {
	h.listWith(c, domain.ListFilter{})
}

func (h *AppointmentHandler) listWith(c *gin.Context, f domain.ListFilter) {
	out, err := h.uc.List.Execute(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err, "list_failed", "Error al obtener las citas")
		return
	}
	httpresp.Array(c, out)
}

func (h *AppointmentHandler) ListByDate(c *gin.Context) {
	date, ok := validators.NormalizeDate(c.Param("fecha"), h.loc)
	if !ok {
		httperr.Validation(c, []httperr.FieldError{{
			Field:   "fecha",
			Message: validators.Message("fecha", "isodate"),
		}})
		return
	}
	h.listWith(c, domain.ListFilter{Date: date})
}

func (h *AppointmentHandler) ListByClient(c *gin.Context) {
	id, ok := pathID(c, "idCliente")
	if !ok {
		return
	}
	h.listWith(c, domain.ListFilter{ClientID: id})
}

func (h *AppointmentHandler) ListByPet(c *gin.Context) {
	id, ok := pathID(c, "idMascota")
	if !ok {
		return
	}
	h.listWith(c, domain.ListFilter{PetID: id})
}

func (h *AppointmentHandler) ListByVeterinarian(c *gin.Context) {
	id, ok := pathID(c, "idVeterinario")
	if !ok {
		return
	}
	h.listWith(c, domain.ListFilter{StaffID: id})
}

func (h *AppointmentHandler) ListByStatus(c *gin.Context) {
	status := c.Param("estado")
	if !domain.IsValidStatus(status) {
		httperr.Validation(c, []httperr.FieldError{{
			Field:   "estado",
			Message: validators.Message("estado", "apptstatus"),
		}})
		return
	}
	h.listWith(c, domain.ListFilter{Status: status})
}

func (h *AppointmentHandler) AgendaToday(c *gin.Context) {
	out, err := h.uc.Agenda.Today(c.Request.Context())
	if err != nil {
		h.fail(c, err, "list_failed", "Error al obtener la agenda del día")
		return
	}
	httpresp.Array(c, out)
}

func (h *AppointmentHandler) AgendaWeek(c *gin.Context) {
	out, err := h.uc.Agenda.Week(c.Request.Context())
	if err != nil {
		h.fail(c, err, "list_failed", "Error al obtener la agenda de la semana")
		return
	}
	httpresp.Array(c, out)
}

// ======================================================
// CREATE / UPDATE / CANCEL
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req AppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	ap, err := h.uc.Create.Execute(c.Request.Context(), req.input(), actorFrom(c))
	if err != nil {
		h.fail(c, err, "create_failed", "Error al crear la cita")
		return
	}

	httpresp.Created(c, dto.CreatedAppointmentDTO{
		Message: "Cita creada exitosamente",
		ID:      ap.ID,
	})
}

func (h *AppointmentHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "idCita")
	if !ok {
		return
	}

	var req AppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	if _, err := h.uc.Update.Execute(c.Request.Context(), id, req.input(), actorFrom(c)); err != nil {
		h.fail(c, err, "update_failed", "Error al actualizar la cita")
		return
	}

	httpresp.Message(c, "Cita actualizada exitosamente")
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c, "idCita")
	if !ok {
		return
	}

	if _, err := h.uc.Cancel.Execute(c.Request.Context(), id, actorFrom(c)); err != nil {
		h.fail(c, err, "cancel_failed", "Error al cancelar la cita")
		return
	}

	httpresp.Message(c, "Cita cancelada exitosamente")
}

// ======================================================
// STATUS / ATTENDANCE / RESCHEDULE
// ======================================================

func (h *AppointmentHandler) ChangeStatus(c *gin.Context) {
	id, ok := pathID(c, "idCita")
	if !ok {
		return
	}

	var req ChangeStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	_, err := h.uc.ChangeStatus.Execute(c.Request.Context(), id, ucAppointment.ChangeStatusInput{
		Status:       req.Status,
		Observations: req.Observations,
	}, actorFrom(c))
	if err != nil {
		h.fail(c, err, "change_status_failed", "Error al cambiar el estado de la cita")
		return
	}

	httpresp.Message(c, "Estado de la cita actualizado exitosamente")
}

func (h *AppointmentHandler) MarkAttendance(c *gin.Context) {
	id, ok := pathID(c, "idCita")
	if !ok {
		return
	}

	var req MarkAttendanceRequest
	if !bindJSON(c, &req) {
		return
	}

	in := ucAppointment.MarkAttendanceInput{Attended: *req.Attended}
	if req.ActualDate != "" {
		at, ok := validators.ParseTimestamp(req.ActualDate, h.loc)
		if !ok {
			httperr.Validation(c, []httperr.FieldError{{
				Field:   "fechaReal",
				Message: validators.Message("fechaReal", "isodate"),
			}})
			return
		}
		in.ActualDate = &at
	}

	if _, err := h.uc.Attendance.Execute(c.Request.Context(), id, in, actorFrom(c)); err != nil {
		h.fail(c, err, "attendance_failed", "Error al marcar la asistencia")
		return
	}

	httpresp.Message(c, "Asistencia registrada exitosamente")
}

func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	id, ok := pathID(c, "idCita")
	if !ok {
		return
	}

	var req RescheduleRequest
	if !bindJSON(c, &req) {
		return
	}

	_, err := h.uc.Reschedule.Execute(c.Request.Context(), id, ucAppointment.RescheduleInput{
		Date:    req.Date,
		Time:    req.Time,
		StaffID: req.StaffID,
	}, actorFrom(c))
	if err != nil {
		h.fail(c, err, "reschedule_failed", "Error al reprogramar la cita")
		return
	}

	httpresp.Message(c, "Cita reprogramada exitosamente")
}

// ======================================================
// AVAILABILITY
// ======================================================

func (h *AppointmentHandler) CheckAvailability(c *gin.Context) {
	var req AvailabilityRequest
	if !bindJSON(c, &req) {
		return
	}

	out, err := h.uc.Availability.Execute(c.Request.Context(), ucAppointment.AvailabilityInput{
		Date:      req.Date,
		Time:      req.Time,
		StaffID:   req.StaffID,
		ExcludeID: req.ExcludeID,
	})
	if err != nil {
		h.fail(c, err, "availability_failed", "Error al verificar la disponibilidad")
		return
	}

	httpresp.OK(c, out)
}
