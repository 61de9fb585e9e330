package service

import (
	"context"
	"fmt"
	"time"

	"github.com/deppfellow/safe-trail/internal/errs"
	"github.com/deppfellow/safe-trail/internal/lib/utils"
	"github.com/deppfellow/safe-trail/internal/model"
	"github.com/deppfellow/safe-trail/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DigitalIDValidityDays is how long a freshly issued digital ID is valid.
const DigitalIDValidityDays = 30

const digitalIDNotFoundMessage = "Digital ID not found. Please complete your profile first."

type DigitalIDService struct {
	profiles   repository.TouristProfileStore
	digitalIDs repository.DigitalIDStore
	notifier   IssuanceNotifier
	now        func() time.Time
}

func NewDigitalIDService(profiles repository.TouristProfileStore, digitalIDs repository.DigitalIDStore, notifier IssuanceNotifier) *DigitalIDService {
	return &DigitalIDService{
		profiles:   profiles,
		digitalIDs: digitalIDs,
		notifier:   notifier,
		now:        time.Now,
	}
}

// EnsureIssued returns the profile's digital ID, issuing one first if none
// exists and the profile is completed. An incomplete profile without an ID
// gets (nil, nil).
//
// Issuance relies on the store's uniqueness check: when two requests race,
// the loser's Create fails with ErrAlreadyExists and it returns the
// winner's record instead, so at most one ID ever exists per tourist.
func (s *DigitalIDService) EnsureIssued(ctx context.Context, profile *model.TouristProfile) (*model.DigitalID, error) {
	existing, err := s.digitalIDs.GetByTouristID(ctx, profile.TouristID)
	if err == nil {
		return existing, nil
	}
	if !repository.IsNotFound(err) {
		return nil, fmt.Errorf("looking up digital id: %w", err)
	}

	if !profile.ProfileCompleted {
		return nil, nil
	}

	id, err := s.newDigitalID(profile)
	if err != nil {
		return nil, err
	}

	err = s.digitalIDs.Create(ctx, id)
	if repository.IsAlreadyExists(err) {
		winner, err := s.digitalIDs.GetByTouristID(ctx, profile.TouristID)
		if err != nil {
			return nil, fmt.Errorf("re-reading digital id after lost issuance race: %w", err)
		}
		return winner, nil
	}
	if err != nil {
		return nil, fmt.Errorf("issuing digital id: %w", err)
	}

	log := zerolog.Ctx(ctx)
	log.Info().
		Str("tourist_id", id.TouristID).
		Str("digital_id", id.ID.String()).
		Str("valid_until", id.ValidUntil.String()).
		Msg("issued digital id")

	if err := s.notifier.NotifyDigitalIDIssued(ctx, profile, id); err != nil {
		// The ID is already issued; a lost email must not fail the request.
		log.Error().Err(err).Str("tourist_id", id.TouristID).Msg("failed to enqueue digital id notification")
	}

	return id, nil
}

func (s *DigitalIDService) newDigitalID(profile *model.TouristProfile) (*model.DigitalID, error) {
	hash, err := utils.NewBlockchainHash()
	if err != nil {
		return nil, fmt.Errorf("generating blockchain hash: %w", err)
	}

	issueDate := model.NewDate(s.now())

	return &model.DigitalID{
		TouristProfileID: profile.ID,
		TouristID:        profile.TouristID,
		IssueDate:        issueDate,
		ValidUntil:       issueDate.AddDays(DigitalIDValidityDays),
		BlockchainHash:   hash,
		Triggers: []model.Trigger{
			{Type: model.TriggerProfileCompletion, Source: model.SourcePlatform, Date: issueDate},
			{Type: model.TriggerIdentityVerification, Source: model.SourceTourismBoard, Date: issueDate},
		},
	}, nil
}

// GetDigitalID returns the card view for touristID. Reading the card of a
// completed profile without an ID issues one: this is the lazy issuance path.
func (s *DigitalIDService) GetDigitalID(ctx context.Context, touristID string) (*model.DigitalIDView, error) {
	profile, err := s.profiles.GetByTouristID(ctx, touristID)
	if repository.IsNotFound(err) {
		return nil, errs.NewNotFoundError(profileNotFoundMessage, true, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up profile: %w", err)
	}

	id, err := s.EnsureIssued(ctx, profile)
	if err != nil {
		return nil, err
	}

	if id == nil {
		code := "DIGITAL_ID_NOT_FOUND"
		return nil, errs.NewNotFoundError(digitalIDNotFoundMessage, true, &code).
			WithAction(&errs.Action{
				Type:    errs.ActionTypeRedirect,
				Message: "Complete your profile to receive a digital ID",
				Value:   "/profile",
			})
	}

	return model.NewDigitalIDView(id, profile), nil
}

// CreateDigitalID stores a digital ID supplied in full by the caller.
func (s *DigitalIDService) CreateDigitalID(ctx context.Context, req *model.CreateDigitalIDRequest) (*model.DigitalID, error) {
	profileID, err := uuid.Parse(req.TouristProfileID)
	if err != nil {
		return nil, errs.NewBadRequestError("Validation failed", true, nil,
			[]errs.FieldError{{Field: "touristProfileId", Error: "must be a valid UUID"}}, nil)
	}

	profile, err := s.profiles.GetByTouristID(ctx, req.TouristID)
	if repository.IsNotFound(err) {
		return nil, errs.NewBadRequestError("Validation failed", true, nil,
			[]errs.FieldError{{Field: "touristId", Error: "no profile exists for this tourist ID"}}, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up profile: %w", err)
	}

	if profile.ID != profileID {
		return nil, errs.NewBadRequestError("Validation failed", true, nil,
			[]errs.FieldError{{Field: "touristProfileId", Error: "does not match the profile for touristId"}}, nil)
	}

	id := &model.DigitalID{
		TouristProfileID: profileID,
		TouristID:        req.TouristID,
		IssueDate:        req.IssueDate,
		ValidUntil:       req.ValidUntil,
		BlockchainHash:   req.BlockchainHash,
		Triggers:         req.Triggers,
	}

	err = s.digitalIDs.Create(ctx, id)
	if repository.IsAlreadyExists(err) {
		code := "DIGITAL_ID_ALREADY_EXISTS"
		return nil, errs.NewConflictError("A digital ID already exists for this tourist", true, &code)
	}
	if err != nil {
		return nil, fmt.Errorf("creating digital id: %w", err)
	}

	return id, nil
}
