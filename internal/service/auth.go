package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/safe-trail/internal/errs"
	"github.com/deppfellow/safe-trail/internal/model"
	"github.com/deppfellow/safe-trail/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const usernameTakenMessage = "Username already exists"

// dummyHash is compared against when a username is unknown so that the
// response time does not reveal which usernames exist.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("safe-trail-dummy"), bcrypt.DefaultCost)

// AuthService manages username/password accounts.
type AuthService struct {
	users repository.UserStore
	cost  int
}

func NewAuthService(users repository.UserStore) *AuthService {
	return &AuthService{users: users, cost: bcrypt.DefaultCost}
}

func (s *AuthService) Register(ctx context.Context, req *model.CredentialsRequest) (*model.PublicUser, error) {
	if _, err := s.users.GetByUsername(ctx, req.Username); err == nil {
		return nil, errs.NewConflictError(usernameTakenMessage, true, nil)
	} else if !repository.IsNotFound(err) {
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{Username: req.Username, PasswordHash: string(hash)}

	err = s.users.Create(ctx, user)
	if repository.IsAlreadyExists(err) {
		return nil, errs.NewConflictError(usernameTakenMessage, true, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	public := user.Public()
	return &public, nil
}

func (s *AuthService) Login(ctx context.Context, req *model.CredentialsRequest) (*model.PublicUser, error) {
	user, err := s.users.GetByUsername(ctx, req.Username)
	if repository.IsNotFound(err) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
		return nil, errs.NewUnauthorizedError(invalidCredentialsMessage, true)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return nil, errs.NewUnauthorizedError(invalidCredentialsMessage, true)
	}
	if err != nil {
		return nil, fmt.Errorf("comparing password: %w", err)
	}

	public := user.Public()
	return &public, nil
}
