package appointment

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	domain "github.com/Javier-Villarroel93/Practicas-Backend/internal/domain/appointment"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/dto"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/fieldcrypt"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/models"
)

// detailFetchLimit bounds concurrent document lookups per listing.
const detailFetchLimit = 8

type ListAppointments struct {
	repo    domain.Repository
	details domain.DetailRepository
	cipher  fieldcrypt.Decrypter
	logger  *slog.Logger
}

func NewListAppointments(
	repo domain.Repository,
	details domain.DetailRepository,
	cipher fieldcrypt.Decrypter,
	logger *slog.Logger,
) *ListAppointments {
	return &ListAppointments{
		repo:    repo,
		details: details,
		cipher:  cipher,
		logger:  logger,
	}
}

// Execute returns the joined rows merged with their clinical documents, in
// the order the relational query produced them.
func (uc *ListAppointments) Execute(
	ctx context.Context,
	f domain.ListFilter,
) ([]dto.AppointmentDTO, error) {

	rows, err := uc.repo.ListAppointments(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	out := make([]dto.AppointmentDTO, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detailFetchLimit)

	for i := range rows {
		g.Go(func() error {
			detail, err := uc.details.GetDetail(gctx, domain.DocumentKey(rows[i].ID))
			if err != nil {
				return fmt.Errorf("appointment %d detail: %w", rows[i].ID, err)
			}
			out[i] = uc.merge(rows[i], detail)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

func (uc *ListAppointments) merge(
	row models.AppointmentRow,
	detail *models.AppointmentDetail,
) dto.AppointmentDTO {

	decrypt := func(field, value string) string {
		return fieldcrypt.DecryptOrEmpty(uc.cipher, uc.logger, field, value)
	}

	var vet string
	if row.StaffName != nil {
		vet = decrypt("staff.name", *row.StaffName)
	}

	out := dto.AppointmentDTO{
		ID:        row.ID,
		ClientID:  row.ClientID,
		PetID:     row.PetID,
		ServiceID: row.ServiceID,
		StaffID:   row.StaffID,
		Date:      row.Date,
		Time:      row.Time,
		Status:    row.Status,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
		Client: dto.ClientSummary{
			Name:     decrypt("client.name", row.ClientName),
			IDNumber: decrypt("client.id_number", row.ClientIDNumber),
		},
		Pet: dto.PetSummary{
			Name:    decrypt("pet.name", row.PetName),
			Species: decrypt("pet.species", row.PetSpecies),
		},
		Service: dto.ServiceSummary{
			Name:  decrypt("service.name", row.ServiceName),
			Price: row.ServicePrice,
		},
		Veterinarian: vet,
	}

	if detail != nil {
		treatments := detail.PriorTreatments
		if treatments == nil {
			treatments = []string{}
		}
		out.Details = &dto.AppointmentDetailDTO{
			Reason:          detail.Reason,
			Symptoms:        detail.Symptoms,
			PriorDiagnosis:  detail.PriorDiagnosis,
			PriorTreatments: treatments,
			Status:          detail.Status,
			Notes:           detail.Notes,
			Observations:    detail.Observations,
			Attended:        detail.Attended,
			ActualDate:      detail.ActualDate,
		}
	}

	return out
}
