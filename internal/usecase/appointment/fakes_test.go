package appointment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Javier-Villarroel93/Practicas-Backend/internal/audit"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/config"
	dbpkg "github.com/Javier-Villarroel93/Practicas-Backend/internal/db"
	domain "github.com/Javier-Villarroel93/Practicas-Backend/internal/domain/appointment"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/fieldcrypt"
	infraRepo "github.com/Javier-Villarroel93/Practicas-Backend/internal/infra/repository"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/models"
	"gorm.io/gorm"
)

var errDocumentDown = errors.New("document store unavailable")

// ======================================================
// IN-MEMORY DOCUMENT STORE
// ======================================================

type memDetails struct {
	mu   sync.Mutex
	docs map[string]*models.AppointmentDetail

	failWrites error
	failReads  error
}

func newMemDetails() *memDetails {
	return &memDetails{docs: map[string]*models.AppointmentDetail{}}
}

func (m *memDetails) CreateDetail(_ context.Context, d *models.AppointmentDetail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites != nil {
		return m.failWrites
	}
	cp := *d
	m.docs[d.AppointmentID] = &cp
	return nil
}

func (m *memDetails) InsertDetailIfMissing(_ context.Context, d *models.AppointmentDetail) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites != nil {
		return false, m.failWrites
	}
	if _, ok := m.docs[d.AppointmentID]; ok {
		return false, nil
	}
	cp := *d
	m.docs[d.AppointmentID] = &cp
	return true, nil
}

func (m *memDetails) GetDetail(_ context.Context, id string) (*models.AppointmentDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReads != nil {
		return nil, m.failReads
	}
	d, ok := m.docs[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (m *memDetails) upsert(ap *models.Appointment, apply func(d *models.AppointmentDetail)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites != nil {
		return m.failWrites
	}
	key := domain.DocumentKey(ap.ID)
	d, ok := m.docs[key]
	if !ok {
		d = domain.NewDetail(ap, domain.Clinical{})
		m.docs[key] = d
	}
	apply(d)
	return nil
}

func (m *memDetails) ReplaceClinical(_ context.Context, ap *models.Appointment, c domain.Clinical) error {
	c = c.Normalized()
	return m.upsert(ap, func(d *models.AppointmentDetail) {
		d.Reason = c.Reason
		d.Symptoms = c.Symptoms
		d.PriorDiagnosis = c.PriorDiagnosis
		d.PriorTreatments = c.PriorTreatments
		d.Notes = c.Notes
		d.Attended = false
		d.ActualDate = nil
		d.Status = string(domain.DetailStatusFor(domain.Status(ap.Status)))
	})
}

func (m *memDetails) ResetAttendance(_ context.Context, ap *models.Appointment) error {
	return m.upsert(ap, func(d *models.AppointmentDetail) {
		d.Attended = false
		d.ActualDate = nil
		d.Status = string(domain.DetailStatusFor(domain.Status(ap.Status)))
	})
}

func (m *memDetails) SetDetailStatus(_ context.Context, ap *models.Appointment, s domain.DetailStatus, obs *string) error {
	return m.upsert(ap, func(d *models.AppointmentDetail) {
		d.Status = string(s)
		if obs != nil {
			d.Observations = *obs
		}
	})
}

func (m *memDetails) MarkAttendance(_ context.Context, ap *models.Appointment, attended bool, at time.Time) error {
	return m.upsert(ap, func(d *models.AppointmentDetail) {
		d.Attended = attended
		d.ActualDate = &at
		d.Status = string(domain.DetailStatusFor(domain.Status(ap.Status)))
	})
}

func (m *memDetails) ExistingDetails(_ context.Context, ids []string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReads != nil {
		return nil, m.failReads
	}
	out := map[string]bool{}
	for _, id := range ids {
		if _, ok := m.docs[id]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (m *memDetails) get(id uint) *models.AppointmentDetail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.docs[domain.DocumentKey(id)]
}

var _ domain.DetailRepository = (*memDetails)(nil)

// ======================================================
// AUDIT
// ======================================================

type recordingSink struct {
	mu      sync.Mutex
	actions []string
}

func (s *recordingSink) Write(_ context.Context, ev audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, ev.Action)
	return nil
}

// ======================================================
// FIXTURE
// ======================================================

type env struct {
	db      *gorm.DB
	repo    *infraRepo.AppointmentGormRepository
	details *memDetails
	sink    *recordingSink
	audit   *audit.Dispatcher
	cipher  *fieldcrypt.Cipher
	deps    Deps

	clientID  uint
	petID     uint
	serviceID uint
	vetID     uint
}

func newEnv(t *testing.T) *env {
	t.Helper()

	gdb, err := dbpkg.Open(&config.Config{DBDriver: "sqlite", DBUrl: ":memory:"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := dbpkg.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cipher, err := fieldcrypt.New("test-secret")
	if err != nil {
		t.Fatalf("cipher: %v", err)
	}
	enc := func(s string) string {
		out, err := cipher.Encrypt(s)
		if err != nil {
			t.Fatalf("encrypt: %v", err)
		}
		return out
	}

	client := models.Client{Name: enc("Ana Pérez"), IDNumber: enc("0912345678")}
	service := models.Service{Name: enc("Consulta general"), Price: 20}
	vet := models.Staff{Name: enc("Dr. Mora")}
	for _, v := range []any{&client, &service, &vet} {
		if err := gdb.Create(v).Error; err != nil {
			t.Fatalf("seed %T: %v", v, err)
		}
	}
	pet := models.Pet{ClientID: client.ID, Name: enc("Firulais"), Species: enc("Perro")}
	if err := gdb.Create(&pet).Error; err != nil {
		t.Fatalf("seed pet: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sink := &recordingSink{}
	dispatcher := audit.NewDispatcher(logger, sink)

	e := &env{
		db:        gdb,
		repo:      infraRepo.NewAppointmentGormRepository(gdb),
		details:   newMemDetails(),
		sink:      sink,
		audit:     dispatcher,
		cipher:    cipher,
		clientID:  client.ID,
		petID:     pet.ID,
		serviceID: service.ID,
		vetID:     vet.ID,
	}
	e.deps = Deps{Repo: e.repo, Details: e.details, Audit: dispatcher, Logger: logger}
	return e
}

func (e *env) input(date, hhmm string) AppointmentInput {
	return AppointmentInput{
		ClientID:  e.clientID,
		PetID:     e.petID,
		ServiceID: e.serviceID,
		Date:      date,
		Time:      hhmm,
	}
}

func (e *env) create(t *testing.T, in AppointmentInput) *models.Appointment {
	t.Helper()
	ap, err := NewCreateAppointment(e.deps, "UTC").Execute(context.Background(), in, Actor{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return ap
}

// auditActions flushes the dispatcher and returns the recorded actions.
func (e *env) auditActions(t *testing.T) []string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := e.audit.Close(ctx); err != nil {
		t.Fatalf("audit close: %v", err)
	}
	e.sink.mu.Lock()
	defer e.sink.mu.Unlock()
	return append([]string(nil), e.sink.actions...)
}
