package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/Javier-Villarroel93/Practicas-Backend/internal/domain/appointment"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/httperr"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

// --------------------------------------------------
// Appointment (write)
// --------------------------------------------------

func (r *AppointmentGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	if err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Create(ap).Error; err != nil {
		return classify(err)
	}
	return nil
}

func (r *AppointmentGormRepository) GetAppointment(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).First(&ap, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrBusiness(httperr.CodeAppointmentNotFound)
		}
		return nil, err
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	if err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Save(ap).Error; err != nil {
		return classify(err)
	}
	return nil
}

func (r *AppointmentGormRepository) RestoreAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).
		Model(&models.Appointment{ID: ap.ID}).
		UpdateColumns(map[string]any{
			"client_id":        ap.ClientID,
			"pet_id":           ap.PetID,
			"service_id":       ap.ServiceID,
			"staff_id":         ap.StaffID,
			"appointment_date": ap.Date,
			"appointment_time": ap.Time,
			"status":           ap.Status,
			"updated_at":       ap.UpdatedAt,
		}).Error
}

func (r *AppointmentGormRepository) DeleteAppointment(
	ctx context.Context,
	id uint,
) error {
	return r.db.WithContext(ctx).Delete(&models.Appointment{}, id).Error
}

// --------------------------------------------------
// Appointment (read)
// --------------------------------------------------

const listColumns = `
	a.id, a.client_id, a.pet_id, a.service_id, a.staff_id,
	a.appointment_date, a.appointment_time, a.status, a.created_at, a.updated_at,
	c.name AS client_name, c.id_number AS client_id_number,
	p.name AS pet_name, p.species AS pet_species,
	s.name AS service_name, s.price AS service_price,
	st.name AS staff_name`

func (r *AppointmentGormRepository) ListAppointments(
	ctx context.Context,
	f domain.ListFilter,
) ([]models.AppointmentRow, error) {

	q := r.db.WithContext(ctx).
		Table("appointments AS a").
		Select(listColumns).
		Joins("JOIN clients c ON c.id = a.client_id").
		Joins("JOIN pets p ON p.id = a.pet_id").
		Joins("JOIN services s ON s.id = a.service_id").
		Joins("LEFT JOIN staff st ON st.id = a.staff_id")

	if f.Date != "" {
		q = q.Where("a.appointment_date = ?", f.Date)
	}
	if f.DateFrom != "" {
		q = q.Where("a.appointment_date >= ?", f.DateFrom)
	}
	if f.DateTo != "" {
		q = q.Where("a.appointment_date <= ?", f.DateTo)
	}
	if f.ClientID != 0 {
		q = q.Where("a.client_id = ?", f.ClientID)
	}
	if f.PetID != 0 {
		q = q.Where("a.pet_id = ?", f.PetID)
	}
	if f.StaffID != 0 {
		q = q.Where("a.staff_id = ?", f.StaffID)
	}
	if f.Status != "" {
		q = q.Where("a.status = ?", f.Status)
	}

	var rows []models.AppointmentRow
	if err := q.
		Order("a.appointment_date DESC, a.appointment_time DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *AppointmentGormRepository) HasSlotConflict(
	ctx context.Context,
	date string,
	hhmm string,
	staffID *uint,
	excludeID uint,
) (bool, error) {

	q := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where(
			"appointment_date = ? AND appointment_time = ? AND status <> ?",
			date, hhmm, string(domain.StatusCancelled),
		)

	if staffID != nil {
		q = q.Where("staff_id = ?", *staffID)
	} else {
		q = q.Where("staff_id IS NULL")
	}
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *AppointmentGormRepository) ListAppointmentsAfter(
	ctx context.Context,
	afterID uint,
	createdBefore time.Time,
	limit int,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Where("id > ? AND created_at < ?", afterID, createdBefore).
		Order("id ASC").
		Limit(limit).
		Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
