package validators

import (
	"encoding/json"
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	domain "github.com/Javier-Villarroel93/Practicas-Backend/internal/domain/appointment"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/httperr"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/timezone"
)

var hhmmPattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):([0-5][0-9])$`)

var dateLayouts = []string{
	timezone.DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseTimestamp parses an ISO 8601 date or timestamp. Values without an
// offset are read in loc.
func ParseTimestamp(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeDate parses an ISO 8601 date or timestamp and returns the calendar
// day in loc as YYYY-MM-DD.
func NormalizeDate(value string, loc *time.Location) (string, bool) {
	t, ok := ParseTimestamp(value, loc)
	if !ok {
		return "", false
	}
	return t.In(loc).Format(timezone.DateLayout), true
}

// NormalizeTime accepts H:MM or HH:MM on a 24-hour clock and returns HH:MM.
func NormalizeTime(value string) (string, bool) {
	m := hhmmPattern.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return "", false
	}
	hour := m[1]
	if len(hour) == 1 {
		hour = "0" + hour
	}
	return hour + ":" + m[2], true
}

// IsNotPast compares two YYYY-MM-DD dates.
func IsNotPast(date, today string) bool {
	return date >= today
}

// Register installs the appointment rules on v. "today" is evaluated in tz at
// validation time.
//
//	isodate  - ISO 8601 date or timestamp
//	notpast  - not earlier than today
//	hhmm     - 24-hour HH:MM
//	apptstatus - one of the appointment statuses
func Register(v *validator.Validate, tz string) error {
	loc := timezone.Location(tz)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	rules := map[string]validator.Func{
		"isodate": func(fl validator.FieldLevel) bool {
			_, ok := NormalizeDate(fl.Field().String(), loc)
			return ok
		},
		"notpast": func(fl validator.FieldLevel) bool {
			d, ok := NormalizeDate(fl.Field().String(), loc)
			return ok && IsNotPast(d, time.Now().In(loc).Format(timezone.DateLayout))
		},
		"hhmm": func(fl validator.FieldLevel) bool {
			_, ok := NormalizeTime(fl.Field().String())
			return ok
		},
		"apptstatus": func(fl validator.FieldLevel) bool {
			return domain.IsValidStatus(fl.Field().String())
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// ======================================================
// MESSAGES
// ======================================================

var messages = map[string]string{
	"idCita":                 "El ID de la cita debe ser un número entero positivo",
	"idCliente":              "El ID del cliente debe ser un número entero positivo",
	"idMascota":              "El ID de la mascota debe ser un número entero positivo",
	"idServicio":             "El ID del servicio debe ser un número entero positivo",
	"idVeterinario":          "El ID del veterinario debe ser un número entero positivo",
	"usuarioIdUser":          "El ID del usuario debe ser un número entero positivo",
	"fecha":                  "La fecha debe ser válida (formato ISO 8601)",
	"fecha.required":         "La fecha es obligatoria",
	"fecha.notpast":          "La fecha no puede ser anterior a hoy",
	"hora":                   "La hora debe tener formato HH:MM válido",
	"hora.required":          "La hora es obligatoria",
	"motivo":                 "El motivo no puede exceder 255 caracteres",
	"sintomas":               "Los síntomas no pueden exceder 500 caracteres",
	"diagnosticoPrevio":      "El diagnóstico previo no puede exceder 300 caracteres",
	"tratamientosAnteriores": "Los tratamientos anteriores deben ser un array",
	"notasAdicionales":       "Las notas adicionales no pueden exceder 500 caracteres",
	"estado":                 "Estado debe ser: scheduled, confirmed, cancelled, completed o no-show",
	"observaciones":          "Las observaciones no pueden exceder 500 caracteres",
	"asistio":                "El campo asistio es obligatorio y debe ser booleano",
	"fechaReal":              "La fecha real debe ser válida (formato ISO 8601)",
}

// Message returns the human readable message for a failing field and rule.
func Message(field, tag string) string {
	if m, ok := messages[field+"."+tag]; ok {
		return m
	}
	if m, ok := messages[field]; ok {
		return m
	}
	return "El campo " + field + " no es válido"
}

// Translate turns a binding error into one message per failing field.
func Translate(err error) []httperr.FieldError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]httperr.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, httperr.FieldError{
				Field:   fe.Field(),
				Message: Message(fe.Field(), fe.Tag()),
			})
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		field := strings.SplitN(typeErr.Field, ".", 2)[0]
		return []httperr.FieldError{{Field: field, Message: Message(field, "type")}}
	}

	return []httperr.FieldError{{
		Field:   "body",
		Message: "El cuerpo de la solicitud no es un JSON válido",
	}}
}
