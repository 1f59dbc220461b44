package appointment

import (
	"context"

	domain "github.com/Javier-Villarroel93/Practicas-Backend/internal/domain/appointment"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/dto"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/timezone"
)

const agendaWeekDays = 7

// ListAgenda lists appointments relative to the clinic's current day.
type ListAgenda struct {
	list  *ListAppointments
	today func() string
}

func NewListAgenda(list *ListAppointments, tz string) *ListAgenda {
	return &ListAgenda{
		list:  list,
		today: func() string { return timezone.Today(tz) },
	}
}

func (uc *ListAgenda) Today(ctx context.Context) ([]dto.AppointmentDTO, error) {
	return uc.list.Execute(ctx, domain.ListFilter{Date: uc.today()})
}

// Week covers today and the six following days.
func (uc *ListAgenda) Week(ctx context.Context) ([]dto.AppointmentDTO, error) {
	from := uc.today()
	to, err := timezone.AddDays(from, agendaWeekDays-1)
	if err != nil {
		return nil, err
	}
	return uc.list.Execute(ctx, domain.ListFilter{DateFrom: from, DateTo: to})
}
