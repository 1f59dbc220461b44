package appointment

import (
	"context"
	"fmt"
	"time"

	domain "github.com/Javier-Villarroel93/Practicas-Backend/internal/domain/appointment"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/dto"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/timezone"
)

type AvailabilityInput struct {
	Date    string
	Time    string
	StaffID *uint
	// ExcludeID ignores one appointment, so a reschedule can check its own slot.
	ExcludeID uint
}

type CheckAvailability struct {
	repo domain.Repository
	loc  *time.Location
}

func NewCheckAvailability(repo domain.Repository, tz string) *CheckAvailability {
	return &CheckAvailability{
		repo: repo,
		loc:  timezone.Location(tz),
	}
}

// Execute reports whether no other live appointment holds the slot for the
// same veterinarian (or for nobody, when no veterinarian is given).
func (uc *CheckAvailability) Execute(
	ctx context.Context,
	in AvailabilityInput,
) (dto.AvailabilityDTO, error) {

	date, hhmm, err := normalizeSlot(in.Date, in.Time, uc.loc)
	if err != nil {
		return dto.AvailabilityDTO{}, err
	}

	taken, err := uc.repo.HasSlotConflict(ctx, date, hhmm, in.StaffID, in.ExcludeID)
	if err != nil {
		return dto.AvailabilityDTO{}, fmt.Errorf("check availability: %w", err)
	}

	return dto.AvailabilityDTO{
		Available: !taken,
		Date:      date,
		Time:      hhmm,
	}, nil
}
