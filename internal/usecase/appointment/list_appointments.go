package appointment

import (
	"context"

	domain "github.com/BruksfildServices01/sacrament-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/httperr"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/models"
)

type ListAppointmentsInput struct {
	// Mine restricts the list to the actor's own appointments.
	Mine     bool
	ChurchID *uint
	Status   string
	SlotDate string
	Limit    int
	Offset   int
}

type ListAppointments struct {
	repo domain.Repository
}

func NewListAppointments(repo domain.Repository) *ListAppointments {
	return &ListAppointments{repo: repo}
}

func (uc *ListAppointments) Execute(
	ctx context.Context,
	actor domain.Actor,
	in ListAppointmentsInput,
) ([]models.Appointment, int64, error) {

	filter := domain.AppointmentFilter{
		SlotDate: in.SlotDate,
		Limit:    in.Limit,
		Offset:   in.Offset,
	}

	if in.Status != "" {
		st, ok := domain.ParseStatus(in.Status)
		if !ok {
			return nil, 0, httperr.ErrBusiness(domain.CodeInvalidStatus)
		}
		filter.Status = string(st)
	}

	switch {
	case in.Mine:
		filter.UserID = &actor.UserID
	case actor.Role == domain.RoleAdmin:
		filter.ChurchID = in.ChurchID
	case actor.IsStaff() && actor.ChurchID != nil:
		filter.ChurchID = actor.ChurchID
	default:
		return nil, 0, httperr.ErrBusiness(domain.CodeForbiddenAppointment)
	}

	return uc.repo.ListAppointments(ctx, filter)
}
