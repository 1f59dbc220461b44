package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Javier-Villarroel93/Practicas-Backend/internal/models"
)

// Logger stores audit events in the audit_logs table.
type Logger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

func (l *Logger) Write(ctx context.Context, ev Event) error {
	var meta datatypes.JSON
	if ev.Metadata != nil {
		b, err := json.Marshal(ev.Metadata)
		if err != nil {
			return fmt.Errorf("audit metadata: %w", err)
		}
		meta = datatypes.JSON(b)
	}

	row := models.AuditLog{
		Action:    ev.Action,
		Entity:    ev.Entity,
		EntityID:  ev.EntityID,
		StaffID:   ev.StaffID,
		RequestID: ev.RequestID,
		Metadata:  meta,
		CreatedAt: ev.OccurredAt,
	}

	return l.db.WithContext(ctx).Create(&row).Error
}

// ListQuery filters the audit listing. Zero values mean "no filter".
type ListQuery struct {
	Action string
	Entity string
	From   *time.Time
	To     *time.Time
	Page   int
	Limit  int
}

func (l *Logger) List(ctx context.Context, q ListQuery) ([]models.AuditLog, int64, error) {
	tx := l.db.WithContext(ctx).Model(&models.AuditLog{})

	if q.Action != "" {
		tx = tx.Where("action = ?", q.Action)
	}
	if q.Entity != "" {
		tx = tx.Where("entity = ?", q.Entity)
	}
	if q.From != nil {
		tx = tx.Where("created_at >= ?", *q.From)
	}
	if q.To != nil {
		tx = tx.Where("created_at < ?", *q.To)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []models.AuditLog
	if err := tx.
		Order("created_at DESC").
		Limit(q.Limit).
		Offset((q.Page - 1) * q.Limit).
		Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
