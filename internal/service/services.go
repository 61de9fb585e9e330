package service

import (
	"github.com/deppfellow/safe-trail/internal/lib/job"
	"github.com/deppfellow/safe-trail/internal/repository"
	"github.com/deppfellow/safe-trail/internal/server"
)

type Services struct {
	Auth      *AuthService
	Tourist   *TouristService
	DigitalID *DigitalIDService
	Job       *job.JobService
}

func NewServices(s *server.Server, repos *repository.Repositories) (*Services, error) {
	var notifier IssuanceNotifier = noopNotifier{}
	if s.Job != nil {
		notifier = s.Job
	}

	digitalIDService := NewDigitalIDService(repos.Profiles, repos.DigitalIDs, notifier)

	return &Services{
		Auth:      NewAuthService(repos.Users),
		Tourist:   NewTouristService(repos.Profiles, digitalIDService),
		DigitalID: digitalIDService,
		Job:       s.Job,
	}, nil
}
