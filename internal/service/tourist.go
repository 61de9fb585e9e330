package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/deppfellow/safe-trail/internal/errs"
	"github.com/deppfellow/safe-trail/internal/lib/utils"
	"github.com/deppfellow/safe-trail/internal/model"
	"github.com/deppfellow/safe-trail/internal/repository"
	"github.com/rs/zerolog"
)

const (
	profileNotFoundMessage    = "Profile not found"
	invalidCredentialsMessage = "Invalid credentials"
)

type TouristService struct {
	profiles repository.TouristProfileStore
	issuer   *DigitalIDService
}

func NewTouristService(profiles repository.TouristProfileStore, issuer *DigitalIDService) *TouristService {
	return &TouristService{profiles: profiles, issuer: issuer}
}

// Login identifies a tourist. Unknown tourist IDs get a fresh incomplete
// profile; known ones must present the stored name (case-insensitive).
func (s *TouristService) Login(ctx context.Context, req *model.LoginRequest) (*model.TouristProfile, error) {
	profile, err := s.profiles.GetByTouristID(ctx, req.TouristID)
	if repository.IsNotFound(err) {
		return s.firstLogin(ctx, req)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up profile: %w", err)
	}

	return checkName(profile, req.FullName)
}

func (s *TouristService) firstLogin(ctx context.Context, req *model.LoginRequest) (*model.TouristProfile, error) {
	profile := &model.TouristProfile{
		TouristID:        req.TouristID,
		FullName:         strings.TrimSpace(req.FullName),
		Nationality:      model.DefaultNationality,
		TravelerType:     model.DefaultTravelerType,
		Accommodation:    "",
		ProfileCompleted: false,
	}

	err := s.profiles.Create(ctx, profile)
	if repository.IsAlreadyExists(err) {
		// Another first login for the same ID won; hold this one to its name.
		existing, err := s.profiles.GetByTouristID(ctx, req.TouristID)
		if err != nil {
			return nil, fmt.Errorf("re-reading profile after lost create race: %w", err)
		}
		return checkName(existing, req.FullName)
	}
	if err != nil {
		return nil, fmt.Errorf("creating profile: %w", err)
	}

	zerolog.Ctx(ctx).Info().Str("tourist_id", profile.TouristID).Msg("created tourist profile on first login")
	return profile, nil
}

func checkName(profile *model.TouristProfile, fullName string) (*model.TouristProfile, error) {
	if !utils.SameName(profile.FullName, fullName) {
		return nil, errs.NewUnauthorizedError(invalidCredentialsMessage, true)
	}
	return profile, nil
}

func (s *TouristService) GetProfile(ctx context.Context, touristID string) (*model.TouristProfile, error) {
	profile, err := s.profiles.GetByTouristID(ctx, touristID)
	if repository.IsNotFound(err) {
		return nil, errs.NewNotFoundError(profileNotFoundMessage, true, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up profile: %w", err)
	}
	return profile, nil
}

// CreateProfile stores a full profile. It is completed, and its digital ID
// issued, when an accommodation is supplied.
func (s *TouristService) CreateProfile(ctx context.Context, req *model.CreateProfileRequest) (*model.TouristProfile, error) {
	accommodation := strings.TrimSpace(req.Accommodation)

	profile := &model.TouristProfile{
		TouristID:        req.TouristID,
		FullName:         strings.TrimSpace(req.FullName),
		Nationality:      utils.Deref(req.Nationality, model.DefaultNationality),
		TravelerType:     utils.Deref(req.TravelerType, model.DefaultTravelerType),
		Accommodation:    accommodation,
		Email:            req.Email,
		ProfileCompleted: accommodation != "",
	}

	err := s.profiles.Create(ctx, profile)
	if repository.IsAlreadyExists(err) {
		code := "TOURIST_PROFILE_ALREADY_EXISTS"
		return nil, errs.NewConflictError("A profile already exists for this tourist ID", true, &code)
	}
	if err != nil {
		return nil, fmt.Errorf("creating profile: %w", err)
	}

	if _, err := s.issuer.EnsureIssued(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

// UpdateProfile merges req into the stored profile, marks it completed and
// issues its digital ID if it has none yet.
func (s *TouristService) UpdateProfile(ctx context.Context, req *model.UpdateProfileRequest) (*model.TouristProfile, error) {
	profile, err := s.profiles.GetByTouristID(ctx, req.TouristID)
	if repository.IsNotFound(err) {
		return nil, errs.NewNotFoundError(profileNotFoundMessage, true, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up profile: %w", err)
	}

	if req.FullName != nil && strings.TrimSpace(*req.FullName) != "" {
		profile.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Nationality != nil {
		profile.Nationality = *req.Nationality
	}
	if req.TravelerType != nil {
		profile.TravelerType = *req.TravelerType
	}
	if req.Email != nil {
		profile.Email = req.Email
	}
	profile.Accommodation = strings.TrimSpace(req.Accommodation)
	profile.ProfileCompleted = true

	err = s.profiles.Update(ctx, profile)
	if repository.IsNotFound(err) {
		return nil, errs.NewNotFoundError(profileNotFoundMessage, true, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}

	if _, err := s.issuer.EnsureIssued(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}
