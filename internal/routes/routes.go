package routes

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/Javier-Villarroel93/Practicas-Backend/internal/audit"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/config"
	domain "github.com/Javier-Villarroel93/Practicas-Backend/internal/domain/appointment"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/fieldcrypt"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/handlers"
	infraRepo "github.com/Javier-Villarroel93/Practicas-Backend/internal/infra/repository"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/middleware"
	ucAppointment "github.com/Javier-Villarroel93/Practicas-Backend/internal/usecase/appointment"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/validators"
)

// Dependencies are the process-wide singletons the router wires together.
type Dependencies struct {
	DB      *gorm.DB
	Details domain.DetailRepository
	Cipher  fieldcrypt.Decrypter
	Audit   *audit.Dispatcher
	Logger  *slog.Logger

	// Redis enables rate limiting when set.
	Redis *redis.Client

	Ready []handlers.ReadyCheck
}

func RegisterRoutes(r *gin.Engine, d Dependencies, cfg *config.Config) error {

	// ======================================================
	// VALIDATION RULES
	// ======================================================
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := validators.Register(v, cfg.Timezone); err != nil {
			return err
		}
	}

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	r.Use(
		middleware.RequestID(),
		middleware.AccessLog(d.Logger),
		middleware.CORSMiddleware(cfg.AllowedOrigins),
	)
	if d.Redis != nil {
		limiter := middleware.NewRateLimiter(d.Redis, cfg.RateLimitPerMinute, time.Minute, d.Logger)
		r.Use(limiter.Middleware())
	}

	// ======================================================
	// INFRA
	// ======================================================
	appointmentRepo := infraRepo.NewAppointmentGormRepository(d.DB)

	deps := ucAppointment.Deps{
		Repo:    appointmentRepo,
		Details: d.Details,
		Audit:   d.Audit,
		Logger:  d.Logger,
	}

	// ======================================================
	// USE CASES
	// ======================================================
	list := ucAppointment.NewListAppointments(appointmentRepo, d.Details, d.Cipher, d.Logger)

	appointmentHandler := handlers.NewAppointmentHandler(handlers.AppointmentUseCases{
		Create:       ucAppointment.NewCreateAppointment(deps, cfg.Timezone),
		Update:       ucAppointment.NewUpdateAppointment(deps, cfg.Timezone),
		Cancel:       ucAppointment.NewCancelAppointment(deps),
		ChangeStatus: ucAppointment.NewChangeStatus(deps),
		Attendance:   ucAppointment.NewMarkAttendance(deps),
		Reschedule:   ucAppointment.NewRescheduleAppointment(deps, cfg.Timezone),
		List:         list,
		Agenda:       ucAppointment.NewListAgenda(list, cfg.Timezone),
		Availability: ucAppointment.NewCheckAvailability(appointmentRepo, cfg.Timezone),
	}, cfg.Timezone, d.Logger)

	auditLogsHandler := handlers.NewAuditLogsHandler(audit.New(d.DB), cfg.Timezone)
	healthHandler := handlers.NewHealthHandler(d.Ready...)

	// ======================================================
	// HEALTH
	// ======================================================
	r.GET("/health", healthHandler.Live)
	r.GET("/ready", healthHandler.Ready)

	auth := middleware.AuthMiddleware(cfg)

	// ======================================================
	// APPOINTMENTS
	// ======================================================
	cita := r.Group("/cita")
	cita.Use(auth)
	{
		cita.GET("/lista", appointmentHandler.List)
		cita.POST("/crear", appointmentHandler.Create)
		cita.PUT("/actualizar/:idCita", appointmentHandler.Update)
		cita.DELETE("/eliminar/:idCita", appointmentHandler.Cancel)

		cita.GET("/fecha/:fecha", appointmentHandler.ListByDate)
		cita.GET("/cliente/:idCliente", appointmentHandler.ListByClient)
		cita.GET("/mascota/:idMascota", appointmentHandler.ListByPet)
		cita.GET("/veterinario/:idVeterinario", appointmentHandler.ListByVeterinarian)
		cita.GET("/estado/:estado", appointmentHandler.ListByStatus)
		cita.GET("/agenda-hoy", appointmentHandler.AgendaToday)
		cita.GET("/agenda-semana", appointmentHandler.AgendaWeek)

		cita.POST("/verificar-disponibilidad", appointmentHandler.CheckAvailability)
		cita.PUT("/cambiar-estado/:idCita", appointmentHandler.ChangeStatus)
		cita.PUT("/marcar-asistencia/:idCita", appointmentHandler.MarkAttendance)
		cita.PUT("/reprogramar/:idCita", appointmentHandler.Reschedule)
	}

	// ======================================================
	// AUDIT
	// ======================================================
	r.GET("/auditoria", auth, auditLogsHandler.List)

	return nil
}
