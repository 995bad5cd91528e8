package appointment

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/sacrament-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/httperr"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/models"
)

// Normalizer converts an upload into the bytes to store, returning the
// content type and file extension to use.
type Normalizer func(data []byte) (body []byte, contentType, ext string, err error)

type RequirementUpload struct {
	Name string
	Data []byte
}

type AttachRequirement struct {
	repo      domain.Repository
	store     domain.ObjectStore
	normalize Normalizer
	log       *zap.Logger
}

// NewAttachRequirement accepts a nil store; uploads then fail with
// storage_disabled.
func NewAttachRequirement(
	repo domain.Repository,
	store domain.ObjectStore,
	normalize Normalizer,
	log *zap.Logger,
) *AttachRequirement {
	return &AttachRequirement{
		repo:      repo,
		store:     store,
		normalize: normalize,
		log:       log,
	}
}

func (uc *AttachRequirement) Execute(
	ctx context.Context,
	actor domain.Actor,
	appointmentID uint,
	up RequirementUpload,
) (*models.RequirementSubmission, error) {

	if uc.store == nil {
		return nil, httperr.ErrBusiness(domain.CodeStorageDisabled)
	}

	ap, err := uc.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if ap.UserID != actor.UserID && !actor.CanManageChurch(ap.ChurchID) {
		return nil, httperr.ErrBusiness(domain.CodeForbiddenAppointment)
	}

	body, contentType, ext, err := uc.normalize(up.Data)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("churches/%d/appointments/%d/%s-%s%s",
		ap.ChurchID, ap.ID, slug(up.Name), uuid.NewString(), ext)

	url, err := uc.store.Put(ctx, key, contentType, body)
	if err != nil {
		return nil, err
	}

	req := &models.RequirementSubmission{
		AppointmentID:   ap.ID,
		RequirementName: up.Name,
		ObjectKey:       key,
		URL:             url,
		ContentType:     contentType,
		Size:            int64(len(body)),
	}
	if err := uc.repo.CreateRequirement(ctx, req); err != nil {
		return nil, err
	}

	uc.log.Info("requirement uploaded",
		zap.Uint("appointment_id", ap.ID),
		zap.String("object_key", key),
	)

	return req, nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slug(s string) string {
	out := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if out == "" {
		return "document"
	}
	return out
}
