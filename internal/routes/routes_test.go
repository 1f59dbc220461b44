package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Javier-Villarroel93/Practicas-Backend/internal/audit"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/config"
	dbpkg "github.com/Javier-Villarroel93/Practicas-Backend/internal/db"
	domain "github.com/Javier-Villarroel93/Practicas-Backend/internal/domain/appointment"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/dto"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/fieldcrypt"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/handlers"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/httperr"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/models"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/timezone"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ======================================================
// DOCUMENT STORE FAKE
// ======================================================

type docs struct {
	mu    sync.Mutex
	byKey map[string]*models.AppointmentDetail
	fail  error
}

func (d *docs) write(ap *models.Appointment, apply func(*models.AppointmentDetail)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail != nil {
		return d.fail
	}
	key := domain.DocumentKey(ap.ID)
	doc, ok := d.byKey[key]
	if !ok {
		doc = domain.NewDetail(ap, domain.Clinical{})
		d.byKey[key] = doc
	}
	apply(doc)
	return nil
}

func (d *docs) CreateDetail(_ context.Context, doc *models.AppointmentDetail) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail != nil {
		return d.fail
	}
	d.byKey[doc.AppointmentID] = doc
	return nil
}

func (d *docs) InsertDetailIfMissing(_ context.Context, doc *models.AppointmentDetail) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail != nil {
		return false, d.fail
	}
	if _, ok := d.byKey[doc.AppointmentID]; ok {
		return false, nil
	}
	d.byKey[doc.AppointmentID] = doc
	return true, nil
}

func (d *docs) GetDetail(_ context.Context, id string) (*models.AppointmentDetail, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	doc, ok := d.byKey[id]
	if !ok {
		return nil, nil
	}
	cp := *doc
	return &cp, nil
}

func (d *docs) ReplaceClinical(_ context.Context, ap *models.Appointment, c domain.Clinical) error {
	return d.write(ap, func(doc *models.AppointmentDetail) {
		c = c.Normalized()
		doc.Reason, doc.Symptoms, doc.Notes = c.Reason, c.Symptoms, c.Notes
		doc.PriorDiagnosis, doc.PriorTreatments = c.PriorDiagnosis, c.PriorTreatments
		doc.Attended = false
		doc.Status = string(domain.DetailStatusFor(domain.Status(ap.Status)))
	})
}

func (d *docs) ResetAttendance(_ context.Context, ap *models.Appointment) error {
	return d.write(ap, func(doc *models.AppointmentDetail) {
		doc.Attended = false
		doc.ActualDate = nil
		doc.Status = string(domain.DetailStatusFor(domain.Status(ap.Status)))
	})
}

func (d *docs) SetDetailStatus(_ context.Context, ap *models.Appointment, s domain.DetailStatus, obs *string) error {
	return d.write(ap, func(doc *models.AppointmentDetail) {
		doc.Status = string(s)
		if obs != nil {
			doc.Observations = *obs
		}
	})
}

func (d *docs) MarkAttendance(_ context.Context, ap *models.Appointment, attended bool, at time.Time) error {
	return d.write(ap, func(doc *models.AppointmentDetail) {
		doc.Attended = attended
		doc.ActualDate = &at
		doc.Status = string(domain.DetailStatusFor(domain.Status(ap.Status)))
	})
}

func (d *docs) ExistingDetails(_ context.Context, ids []string) (map[string]bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := map[string]bool{}
	for _, id := range ids {
		_, out[id] = d.byKey[id]
	}
	return out, nil
}

// ======================================================
// SERVER
// ======================================================

type server struct {
	engine *gin.Engine
	db     *gorm.DB
	docs   *docs

	clientID, petID, serviceID, vetID uint
}

func newServer(t *testing.T, cfg *config.Config) *server {
	t.Helper()

	gdb, err := dbpkg.Open(&config.Config{DBDriver: "sqlite", DBUrl: ":memory:"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := dbpkg.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cipher, err := fieldcrypt.New("routes-test")
	if err != nil {
		t.Fatalf("cipher: %v", err)
	}
	enc := func(s string) string {
		out, _ := cipher.Encrypt(s)
		return out
	}

	client := models.Client{Name: enc("Luis Vera"), IDNumber: enc("1700000001")}
	service := models.Service{Name: enc("Vacunación"), Price: 15.5}
	vet := models.Staff{Name: enc("Dra. Salazar")}
	for _, v := range []any{&client, &service, &vet} {
		if err := gdb.Create(v).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	pet := models.Pet{ClientID: client.ID, Name: enc("Michi"), Species: enc("Gato")}
	if err := gdb.Create(&pet).Error; err != nil {
		t.Fatalf("seed pet: %v", err)
	}

	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dispatcher := audit.NewDispatcher(logger, audit.New(gdb))
	t.Cleanup(func() { _ = dispatcher.Close(context.Background()) })

	store := &docs{byKey: map[string]*models.AppointmentDetail{}}

	r := gin.New()
	err = RegisterRoutes(r, Dependencies{
		DB:      gdb,
		Details: store,
		Cipher:  cipher,
		Audit:   dispatcher,
		Logger:  logger,
		Ready: []handlers.ReadyCheck{
			{Name: "db", Check: dbpkg.ReadyCheck(gdb)},
		},
	}, cfg)
	if err != nil {
		t.Fatalf("register routes: %v", err)
	}

	return &server{
		engine:    r,
		db:        gdb,
		docs:      store,
		clientID:  client.ID,
		petID:     pet.ID,
		serviceID: service.ID,
		vetID:     vet.ID,
	}
}

func (s *server) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		buf = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		buf = bytes.NewBuffer(raw)
	}

	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func tomorrow(t *testing.T) string {
	t.Helper()
	d, err := timezone.AddDays(timezone.Today("UTC"), 1)
	if err != nil {
		t.Fatalf("date: %v", err)
	}
	return d
}

func (s *server) createBody(t *testing.T) map[string]any {
	return map[string]any{
		"idCliente":              s.clientID,
		"idMascota":              s.petID,
		"idServicio":             s.serviceID,
		"usuarioIdUser":          s.vetID,
		"fecha":                  tomorrow(t),
		"hora":                   "9:30",
		"motivo":                 "Vacuna antirrábica",
		"tratamientosAnteriores": []string{"desparasitación"},
	}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return out
}

func fields(e httperr.HTTPError) map[string]string {
	out := map[string]string{}
	for _, d := range e.Details {
		out[d.Field] = d.Message
	}
	return out
}

// ======================================================
// TESTS
// ======================================================

func TestCreateThenList(t *testing.T) {
	s := newServer(t, &config.Config{})

	w := s.do(t, http.MethodPost, "/cita/crear", s.createBody(t))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	created := decode[dto.CreatedAppointmentDTO](t, w)
	if created.ID == 0 || created.Message != "Cita creada exitosamente" {
		t.Fatalf("unexpected body %+v", created)
	}

	w = s.do(t, http.MethodGet, "/cita/lista", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	list := decode[[]dto.AppointmentDTO](t, w)
	if len(list) != 1 {
		t.Fatalf("expected 1 appointment, got %d", len(list))
	}

	got := list[0]
	if got.ID != created.ID || got.Time != "09:30" || got.Status != "scheduled" {
		t.Fatalf("unexpected appointment %+v", got)
	}
	if got.Client.Name != "Luis Vera" || got.Pet.Species != "Gato" || got.Service.Name != "Vacunación" {
		t.Fatalf("display fields not decrypted: %+v", got)
	}
	if got.Veterinarian != "Dra. Salazar" {
		t.Fatalf("unexpected veterinarian %q", got.Veterinarian)
	}
	if got.Details == nil || got.Details.Reason != "Vacuna antirrábica" || got.Details.Status != "pending" {
		t.Fatalf("unexpected details %+v", got.Details)
	}
	if len(got.Details.PriorTreatments) != 1 {
		t.Fatalf("unexpected treatments %v", got.Details.PriorTreatments)
	}
}

func TestList_EmptyIsArray(t *testing.T) {
	s := newServer(t, &config.Config{})

	w := s.do(t, http.MethodGet, "/cita/lista", nil)
	if w.Code != http.StatusOK || w.Body.String() != "[]" {
		t.Fatalf("expected empty array, got %d %s", w.Code, w.Body.String())
	}
}

func TestList_MissingDocumentRendersNull(t *testing.T) {
	s := newServer(t, &config.Config{})
	s.do(t, http.MethodPost, "/cita/crear", s.createBody(t))

	s.docs.mu.Lock()
	s.docs.byKey = map[string]*models.AppointmentDetail{}
	s.docs.mu.Unlock()

	w := s.do(t, http.MethodGet, "/cita/lista", nil)
	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(raw) != 1 || string(raw[0]["detalles"]) != "null" {
		t.Fatalf("expected detalles null, got %s", w.Body.String())
	}
}

func TestCreate_Validation(t *testing.T) {
	s := newServer(t, &config.Config{})

	w := s.do(t, http.MethodPost, "/cita/crear", map[string]any{"motivo": "x"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	e := decode[httperr.HTTPError](t, w)
	if e.Code != "validation_failed" {
		t.Fatalf("unexpected code %s", e.Code)
	}
	got := fields(e)
	for _, f := range []string{"idCliente", "idMascota", "idServicio", "fecha", "hora"} {
		if _, ok := got[f]; !ok {
			t.Fatalf("expected error for %s, got %v", f, got)
		}
	}

	past := s.createBody(t)
	past["fecha"] = "2000-01-01"
	past["hora"] = "25:00"
	e = decode[httperr.HTTPError](t, s.do(t, http.MethodPost, "/cita/crear", past))
	got = fields(e)
	if got["fecha"] != "La fecha no puede ser anterior a hoy" {
		t.Fatalf("unexpected fecha message %q", got["fecha"])
	}
	if got["hora"] != "La hora debe tener formato HH:MM válido" {
		t.Fatalf("unexpected hora message %q", got["hora"])
	}

	notArray := s.createBody(t)
	notArray["tratamientosAnteriores"] = "vacuna"
	w = s.do(t, http.MethodPost, "/cita/crear", notArray)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-array treatments, got %d", w.Code)
	}
	if _, ok := fields(decode[httperr.HTTPError](t, w))["tratamientosAnteriores"]; !ok {
		t.Fatalf("expected tratamientosAnteriores error, got %s", w.Body.String())
	}

	negative := s.createBody(t)
	negative["idCliente"] = -3
	w = s.do(t, http.MethodPost, "/cita/crear", negative)
	if _, ok := fields(decode[httperr.HTTPError](t, w))["idCliente"]; w.Code != http.StatusBadRequest || !ok {
		t.Fatalf("expected idCliente error, got %d %s", w.Code, w.Body.String())
	}

	long := s.createBody(t)
	long["motivo"] = string(bytes.Repeat([]byte("a"), 256))
	w = s.do(t, http.MethodPost, "/cita/crear", long)
	if _, ok := fields(decode[httperr.HTTPError](t, w))["motivo"]; !ok {
		t.Fatalf("expected motivo error, got %s", w.Body.String())
	}

	var count int64
	s.db.Model(&models.Appointment{}).Count(&count)
	if count != 0 {
		t.Fatalf("invalid requests must not write, found %d rows", count)
	}
}

func TestCreate_DocumentFailure(t *testing.T) {
	s := newServer(t, &config.Config{})
	s.docs.fail = errors.New("mongo down")

	w := s.do(t, http.MethodPost, "/cita/crear", s.createBody(t))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	e := decode[httperr.HTTPError](t, w)
	if e.Message != "Error al crear la cita" || e.Error == "" {
		t.Fatalf("unexpected body %+v", e)
	}

	var count int64
	s.db.Model(&models.Appointment{}).Count(&count)
	if count != 0 {
		t.Fatalf("relational row should have been compensated, found %d", count)
	}
}

func TestUpdateAndCancel(t *testing.T) {
	s := newServer(t, &config.Config{})
	created := decode[dto.CreatedAppointmentDTO](t, s.do(t, http.MethodPost, "/cita/crear", s.createBody(t)))
	id := jsonID(created.ID)

	body := s.createBody(t)
	body["hora"] = "15:45"
	body["motivo"] = "Control"
	w := s.do(t, http.MethodPut, "/cita/actualizar/"+id, body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if decode[map[string]string](t, w)["message"] != "Cita actualizada exitosamente" {
		t.Fatalf("unexpected body %s", w.Body.String())
	}

	w = s.do(t, http.MethodDelete, "/cita/eliminar/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	list := decode[[]dto.AppointmentDTO](t, s.do(t, http.MethodGet, "/cita/lista", nil))
	if len(list) != 1 {
		t.Fatalf("cancelled appointment should still be listed")
	}
	if list[0].Time != "15:45" || list[0].Status != "cancelled" || list[0].Details.Status != "cancelled" {
		t.Fatalf("unexpected appointment %+v", list[0])
	}
	if list[0].Details.Reason != "Control" {
		t.Fatalf("clinical fields not updated: %+v", list[0].Details)
	}
}

func TestUpdate_Errors(t *testing.T) {
	s := newServer(t, &config.Config{})

	w := s.do(t, http.MethodPut, "/cita/actualizar/999", s.createBody(t))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", w.Code)
	}

	w = s.do(t, http.MethodPut, "/cita/actualizar/abc", s.createBody(t))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", w.Code)
	}
	if _, ok := fields(decode[httperr.HTTPError](t, w))["idCita"]; !ok {
		t.Fatalf("expected idCita error, got %s", w.Body.String())
	}

	w = s.do(t, http.MethodDelete, "/cita/eliminar/0", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero id, got %d", w.Code)
	}
}

func TestStatusAttendanceReschedule(t *testing.T) {
	s := newServer(t, &config.Config{})
	created := decode[dto.CreatedAppointmentDTO](t, s.do(t, http.MethodPost, "/cita/crear", s.createBody(t)))
	id := jsonID(created.ID)

	w := s.do(t, http.MethodPut, "/cita/cambiar-estado/"+id, map[string]any{"estado": "archivada"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", w.Code)
	}

	w = s.do(t, http.MethodPut, "/cita/cambiar-estado/"+id, map[string]any{"estado": "confirmed", "observaciones": "ok"})
	if w.Code != http.StatusOK {
		t.Fatalf("change status: %d %s", w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodPut, "/cita/marcar-asistencia/"+id, map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("asistio is required, got %d", w.Code)
	}

	w = s.do(t, http.MethodPut, "/cita/marcar-asistencia/"+id, map[string]any{"asistio": true, "fechaReal": "ayer"})
	if _, ok := fields(decode[httperr.HTTPError](t, w))["fechaReal"]; w.Code != http.StatusBadRequest || !ok {
		t.Fatalf("expected fechaReal error, got %d %s", w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodPut, "/cita/marcar-asistencia/"+id, map[string]any{"asistio": true, "fechaReal": "2030-01-01T10:00:00Z"})
	if w.Code != http.StatusOK {
		t.Fatalf("attendance: %d %s", w.Code, w.Body.String())
	}

	list := decode[[]dto.AppointmentDTO](t, s.do(t, http.MethodGet, "/cita/estado/completed", nil))
	if len(list) != 1 || !list[0].Details.Attended || list[0].Details.ActualDate == nil {
		t.Fatalf("expected completed attended appointment, got %+v", list)
	}

	w = s.do(t, http.MethodPut, "/cita/reprogramar/"+id, map[string]any{"fecha": tomorrow(t), "hora": "18:00"})
	if w.Code != http.StatusOK {
		t.Fatalf("reschedule: %d %s", w.Code, w.Body.String())
	}

	list = decode[[]dto.AppointmentDTO](t, s.do(t, http.MethodGet, "/cita/estado/scheduled", nil))
	if len(list) != 1 || list[0].Time != "18:00" || list[0].Details.Attended || list[0].Details.Status != "pending" {
		t.Fatalf("unexpected rescheduled appointment %+v", list)
	}
}

func TestFilteredRoutes(t *testing.T) {
	s := newServer(t, &config.Config{})
	s.do(t, http.MethodPost, "/cita/crear", s.createBody(t))

	ok := []string{
		"/cita/fecha/" + tomorrow(t),
		"/cita/cliente/" + jsonID(s.clientID),
		"/cita/mascota/" + jsonID(s.petID),
		"/cita/veterinario/" + jsonID(s.vetID),
		"/cita/estado/scheduled",
		"/cita/agenda-semana",
	}
	for _, path := range ok {
		w := s.do(t, http.MethodGet, path, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, w.Code)
		}
		if n := len(decode[[]dto.AppointmentDTO](t, w)); n != 1 {
			t.Fatalf("%s: expected 1 appointment, got %d", path, n)
		}
	}

	w := s.do(t, http.MethodGet, "/cita/agenda-hoy", nil)
	if w.Code != http.StatusOK || len(decode[[]dto.AppointmentDTO](t, w)) != 0 {
		t.Fatalf("tomorrow's appointment should not be on today's agenda: %s", w.Body.String())
	}

	bad := []string{
		"/cita/fecha/31-12-2030",
		"/cita/cliente/0",
		"/cita/mascota/x",
		"/cita/veterinario/-1",
		"/cita/estado/perdida",
	}
	for _, path := range bad {
		if w := s.do(t, http.MethodGet, path, nil); w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, w.Code)
		}
	}
}

func TestCheckAvailability(t *testing.T) {
	s := newServer(t, &config.Config{})
	s.do(t, http.MethodPost, "/cita/crear", s.createBody(t))

	w := s.do(t, http.MethodPost, "/cita/verificar-disponibilidad", map[string]any{
		"fecha": tomorrow(t), "hora": "09:30", "usuarioIdUser": s.vetID,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := decode[dto.AvailabilityDTO](t, w); got.Available {
		t.Fatalf("slot should be taken: %+v", got)
	}

	w = s.do(t, http.MethodPost, "/cita/verificar-disponibilidad", map[string]any{
		"fecha": tomorrow(t), "hora": "10:00", "usuarioIdUser": s.vetID,
	})
	if got := decode[dto.AvailabilityDTO](t, w); !got.Available {
		t.Fatalf("slot should be free: %+v", got)
	}
}

func TestAuditTrail(t *testing.T) {
	s := newServer(t, &config.Config{})
	s.do(t, http.MethodPost, "/cita/crear", s.createBody(t))

	deadline := time.Now().Add(2 * time.Second)
	for {
		w := s.do(t, http.MethodGet, "/auditoria?action=appointment_created", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		page := decode[struct {
			Total int64             `json:"total"`
			Data  []models.AuditLog `json:"data"`
		}](t, w)
		if page.Total == 1 {
			if page.Data[0].RequestID == "" {
				t.Fatal("audit entry should carry the request id")
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("audit entry never appeared: %s", w.Body.String())
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestHealthAndAuth(t *testing.T) {
	s := newServer(t, &config.Config{AuthRequired: true, JWTSecret: "k"})

	if w := s.do(t, http.MethodGet, "/health", nil); w.Code != http.StatusOK {
		t.Fatalf("health: %d", w.Code)
	}
	if w := s.do(t, http.MethodGet, "/ready", nil); w.Code != http.StatusOK {
		t.Fatalf("ready: %d %s", w.Code, w.Body.String())
	}
	if w := s.do(t, http.MethodGet, "/cita/lista", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
}

func jsonID(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}
