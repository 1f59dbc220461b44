package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/Javier-Villarroel93/Practicas-Backend/internal/audit"
	domain "github.com/Javier-Villarroel93/Practicas-Backend/internal/domain/appointment"
)

const (
	repairBatchSize = 200

	// repairGrace leaves rows alone while their create request may still be
	// writing the document.
	repairGrace = time.Minute
)

type RepairReport struct {
	Scanned int
	Created int
	// Skipped counts documents written by another request between the
	// existence check and the insert.
	Skipped int
	Failed  int
}

// RepairDetails creates the clinical document of every appointment that has
// none. Created documents carry empty clinical fields and mirror the row's
// status. Rows younger than the grace period are not considered.
type RepairDetails struct {
	Deps
	batch int
	grace time.Duration
	now   func() time.Time
}

func NewRepairDetails(deps Deps) *RepairDetails {
	return &RepairDetails{
		Deps:  deps,
		batch: repairBatchSize,
		grace: repairGrace,
		now:   time.Now,
	}
}

func (uc *RepairDetails) Execute(ctx context.Context) (RepairReport, error) {
	var (
		report RepairReport
		after  uint
	)

	cutoff := uc.now().UTC().Add(-uc.grace)

	for {
		apps, err := uc.Repo.ListAppointmentsAfter(ctx, after, cutoff, uc.batch)
		if err != nil {
			return report, fmt.Errorf("repair details: %w", err)
		}
		if len(apps) == 0 {
			return report, nil
		}

		keys := make([]string, len(apps))
		for i := range apps {
			keys[i] = domain.DocumentKey(apps[i].ID)
		}

		found, err := uc.Details.ExistingDetails(ctx, keys)
		if err != nil {
			return report, fmt.Errorf("repair details: %w", err)
		}

		for i := range apps {
			ap := &apps[i]
			report.Scanned++
			if found[keys[i]] {
				continue
			}

			inserted, err := uc.Details.InsertDetailIfMissing(ctx, domain.NewDetail(ap, domain.Clinical{}))
			if err != nil {
				report.Failed++
				uc.Logger.Warn("detail repair failed", "appointment_id", ap.ID, "err", err)
				continue
			}
			if !inserted {
				report.Skipped++
				continue
			}

			report.Created++
			uc.dispatch(Actor{}, audit.ActionDetailRepaired, ap.ID, nil)
		}

		after = apps[len(apps)-1].ID
		if len(apps) < uc.batch {
			return report, nil
		}
	}
}
