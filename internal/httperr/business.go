package httperr

import "errors"

const (
	CodeAppointmentNotFound = "appointment_not_found"
	CodeInvalidReference    = "invalid_reference"
	CodeInvalidDateTime     = "invalid_date_or_time"
	CodeInvalidStatus       = "invalid_status"
)

type BusinessError struct {
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}
