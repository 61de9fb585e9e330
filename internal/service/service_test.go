package service

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/deppfellow/safe-trail/internal/errs"
	"github.com/deppfellow/safe-trail/internal/lib/utils"
	"github.com/deppfellow/safe-trail/internal/model"
	"github.com/deppfellow/safe-trail/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (n *recordingNotifier) NotifyDigitalIDIssued(_ context.Context, _ *model.TouristProfile, id *model.DigitalID) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, id.TouristID)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

var fixedNow = time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)

type ServiceSuite struct {
	suite.Suite
	ctx        context.Context
	repos      *repository.Repositories
	digitalIDs *repository.MemoryDigitalIDStore
	notifier   *recordingNotifier
	tourist    *TouristService
	digitalID  *DigitalIDService
	auth       *AuthService
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.repos = repository.NewMemoryRepositories()
	s.digitalIDs = s.repos.DigitalIDs.(*repository.MemoryDigitalIDStore)
	s.notifier = &recordingNotifier{}

	s.digitalID = NewDigitalIDService(s.repos.Profiles, s.repos.DigitalIDs, s.notifier)
	s.digitalID.now = func() time.Time { return fixedNow }
	s.tourist = NewTouristService(s.repos.Profiles, s.digitalID)
	s.auth = NewAuthService(s.repos.Users)
	s.auth.cost = bcrypt.MinCost
}

func (s *ServiceSuite) requireStatus(err error, status int) *errs.HTTPError {
	s.T().Helper()
	httpErr, ok := errs.AsHTTPError(err)
	s.Require().True(ok, "expected *errs.HTTPError, got %v", err)
	s.Require().Equal(status, httpErr.Status)
	return httpErr
}

func (s *ServiceSuite) login(touristID, name string) (*model.TouristProfile, error) {
	return s.tourist.Login(s.ctx, &model.LoginRequest{TouristID: touristID, FullName: name})
}

func (s *ServiceSuite) complete(touristID, accommodation string) (*model.TouristProfile, error) {
	return s.tourist.UpdateProfile(s.ctx, &model.UpdateProfileRequest{TouristID: touristID, Accommodation: accommodation})
}

func (s *ServiceSuite) TestFirstLoginCreatesIncompleteProfile() {
	profile, err := s.login("T1", "Asha")
	s.Require().NoError(err)

	s.Equal("T1", profile.TouristID)
	s.Equal("Asha", profile.FullName)
	s.Equal(model.DefaultNationality, profile.Nationality)
	s.Equal(model.DefaultTravelerType, profile.TravelerType)
	s.Empty(profile.Accommodation)
	s.False(profile.ProfileCompleted)

	again, err := s.login("T1", "  ASHA ")
	s.Require().NoError(err)
	s.Equal(profile.ID, again.ID, "repeat login returns the same profile")
}

func (s *ServiceSuite) TestLoginWithWrongNameIsRejected() {
	_, err := s.login("T1", "Asha")
	s.Require().NoError(err)

	_, err = s.login("T1", "Wrong Name")
	httpErr := s.requireStatus(err, http.StatusUnauthorized)
	s.Equal("Invalid credentials", httpErr.Message)

	stored, err := s.tourist.GetProfile(s.ctx, "T1")
	s.Require().NoError(err)
	s.Equal("Asha", stored.FullName)
}

func (s *ServiceSuite) TestConcurrentFirstLoginsCreateOneProfile() {
	var wg sync.WaitGroup
	ids := make(chan string, 20)

	for rangeIter := 0; rangeIter < 20; rangeIter++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			profile, err := s.login("T9", "Ravi")
			if err == nil {
				ids <- profile.ID.String()
			}
		}()
	}
	wg.Wait()
	close(ids)

	unique := map[string]struct{}{}
	for id := range ids {
		unique[id] = struct{}{}
	}
	s.Len(unique, 1)
}

func (s *ServiceSuite) TestUpdateUnknownProfileIsNotFound() {
	_, err := s.complete("ghost", "Hotel Ganga")
	httpErr := s.requireStatus(err, http.StatusNotFound)
	s.Equal("Profile not found", httpErr.Message)
	s.Equal(0, s.digitalIDs.Count())
}

func (s *ServiceSuite) TestCompletionIssuesExactlyOneDigitalID() {
	_, err := s.login("T1", "Asha")
	s.Require().NoError(err)

	nationality := "Nepali"
	profile, err := s.tourist.UpdateProfile(s.ctx, &model.UpdateProfileRequest{
		TouristID:     "T1",
		Accommodation: " Hotel Ganga ",
		Nationality:   &nationality,
	})
	s.Require().NoError(err)
	s.True(profile.ProfileCompleted)
	s.Equal("Hotel Ganga", profile.Accommodation)
	s.Equal("Nepali", profile.Nationality)
	s.Equal("Asha", profile.FullName, "omitted fields keep their value")

	first, err := s.repos.DigitalIDs.GetByTouristID(s.ctx, "T1")
	s.Require().NoError(err)

	for rangeIter := 0; rangeIter < 3; rangeIter++ {
		_, err := s.complete("T1", "Hotel Brahmaputra")
		s.Require().NoError(err)
		view, err := s.digitalID.GetDigitalID(s.ctx, "T1")
		s.Require().NoError(err)
		s.Equal(first.ID, view.ID)
	}

	s.Equal(1, s.digitalIDs.Count())
	s.Equal(1, s.notifier.count())
}

func (s *ServiceSuite) TestIssuedDigitalIDShape() {
	_, err := s.login("T1", "Asha")
	s.Require().NoError(err)
	_, err = s.complete("T1", "Hotel Ganga")
	s.Require().NoError(err)

	id, err := s.repos.DigitalIDs.GetByTouristID(s.ctx, "T1")
	s.Require().NoError(err)

	s.Equal("2025-01-15", id.IssueDate.String())
	s.Equal("2025-02-14", id.ValidUntil.String())
	s.Equal(id.IssueDate.AddDays(30), id.ValidUntil)
	s.True(utils.IsBlockchainHash(id.BlockchainHash))
	s.Require().Len(id.Triggers, 2)
	s.Equal(model.Trigger{Type: "Profile Completion", Source: "Safe Trail Platform", Date: id.IssueDate}, id.Triggers[0])
	s.Equal(model.Trigger{Type: "Identity Verification", Source: "North East Tourism Board", Date: id.IssueDate}, id.Triggers[1])
}

func (s *ServiceSuite) TestGetDigitalID() {
	s.Run("missing profile", func() {
		_, err := s.digitalID.GetDigitalID(s.ctx, "nobody")
		httpErr := s.requireStatus(err, http.StatusNotFound)
		s.Equal("Profile not found", httpErr.Message)
	})

	s.Run("incomplete profile", func() {
		_, err := s.login("T2", "Meera")
		s.Require().NoError(err)

		_, err = s.digitalID.GetDigitalID(s.ctx, "T2")
		httpErr := s.requireStatus(err, http.StatusNotFound)
		s.Equal("Digital ID not found. Please complete your profile first.", httpErr.Message)
		s.NotNil(httpErr.Action)
	})

	s.Run("lazy issuance for completed profile", func() {
		// Completed directly in storage, so no ID was issued yet.
		profile := &model.TouristProfile{TouristID: "T3", FullName: "Kiran", Accommodation: "Homestay", ProfileCompleted: true}
		s.Require().NoError(s.repos.Profiles.Create(s.ctx, profile))

		view, err := s.digitalID.GetDigitalID(s.ctx, "T3")
		s.Require().NoError(err)
		s.Equal("T3", view.TouristID)
		s.Equal("Kiran", view.Profile.FullName)
		s.Equal(model.DefaultNationality, view.Profile.Nationality)
		s.Equal("Domestic", view.Profile.TravelerType)
		s.True(utils.IsBlockchainHash(view.BlockchainHash))
	})
}

func (s *ServiceSuite) TestConcurrentLazyIssuanceYieldsOneID() {
	profile := &model.TouristProfile{TouristID: "T4", FullName: "Dev", Accommodation: "Camp", ProfileCompleted: true}
	s.Require().NoError(s.repos.Profiles.Create(s.ctx, profile))

	var wg sync.WaitGroup
	results := make(chan string, 25)
	for rangeIter := 0; rangeIter < 25; rangeIter++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			view, err := s.digitalID.GetDigitalID(s.ctx, "T4")
			if err == nil {
				results <- view.ID.String()
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := map[string]struct{}{}
	for id := range results {
		seen[id] = struct{}{}
	}
	s.Len(seen, 1)
	s.Equal(1, s.digitalIDs.Count())
	s.Equal(1, s.notifier.count())
}

func (s *ServiceSuite) TestCreateProfile() {
	email := "asha@example.com"
	profile, err := s.tourist.CreateProfile(s.ctx, &model.CreateProfileRequest{
		TouristID:     "T5",
		FullName:      "Asha",
		Accommodation: "Hotel Ganga",
		Email:         &email,
	})
	s.Require().NoError(err)
	s.True(profile.ProfileCompleted)
	s.Equal(1, s.digitalIDs.Count())

	_, err = s.tourist.CreateProfile(s.ctx, &model.CreateProfileRequest{TouristID: "T5", FullName: "Other"})
	s.requireStatus(err, http.StatusConflict)

	incomplete, err := s.tourist.CreateProfile(s.ctx, &model.CreateProfileRequest{TouristID: "T6", FullName: "Ravi"})
	s.Require().NoError(err)
	s.False(incomplete.ProfileCompleted)
	s.Equal(1, s.digitalIDs.Count())
}

func (s *ServiceSuite) TestCreateDigitalID() {
	profile, err := s.login("T7", "Asha")
	s.Require().NoError(err)

	hash, err := utils.NewBlockchainHash()
	s.Require().NoError(err)

	issued := model.NewDate(fixedNow)
	req := &model.CreateDigitalIDRequest{
		TouristProfileID: profile.ID.String(),
		TouristID:        "T7",
		IssueDate:        issued,
		ValidUntil:       issued.AddDays(30),
		BlockchainHash:   hash,
		Triggers:         []model.Trigger{{Type: "Manual", Source: "Front Desk", Date: issued}},
	}

	created, err := s.digitalID.CreateDigitalID(s.ctx, req)
	s.Require().NoError(err)
	s.Equal("T7", created.TouristID)

	_, err = s.digitalID.CreateDigitalID(s.ctx, req)
	s.requireStatus(err, http.StatusConflict)

	req.TouristID = "missing"
	_, err = s.digitalID.CreateDigitalID(s.ctx, req)
	s.requireStatus(err, http.StatusBadRequest)
}

func (s *ServiceSuite) TestCreateDigitalIDProfileMismatch() {
	_, err := s.login("T8", "Asha")
	s.Require().NoError(err)

	issued := model.NewDate(fixedNow)
	_, err = s.digitalID.CreateDigitalID(s.ctx, &model.CreateDigitalIDRequest{
		TouristProfileID: "6f1c2d4e-0000-4000-8000-000000000000",
		TouristID:        "T8",
		IssueDate:        issued,
		ValidUntil:       issued,
		BlockchainHash:   "0x00",
	})
	httpErr := s.requireStatus(err, http.StatusBadRequest)
	s.Equal("touristProfileId", httpErr.Errors[0].Field)
}

func (s *ServiceSuite) TestRegisterAndPasswordLogin() {
	creds := &model.CredentialsRequest{Username: "a", Password: "p"}

	user, err := s.auth.Register(s.ctx, creds)
	s.Require().NoError(err)
	s.Equal("a", user.Username)

	stored, err := s.repos.Users.GetByUsername(s.ctx, "a")
	s.Require().NoError(err)
	s.NotEqual("p", stored.PasswordHash, "passwords are stored hashed")

	_, err = s.auth.Register(s.ctx, creds)
	httpErr := s.requireStatus(err, http.StatusConflict)
	s.Equal("Username already exists", httpErr.Message)

	loggedIn, err := s.auth.Login(s.ctx, creds)
	s.Require().NoError(err)
	s.Equal(user.ID, loggedIn.ID)

	_, err = s.auth.Login(s.ctx, &model.CredentialsRequest{Username: "a", Password: "wrong"})
	s.requireStatus(err, http.StatusUnauthorized)

	_, err = s.auth.Login(s.ctx, &model.CredentialsRequest{Username: "nobody", Password: "p"})
	s.requireStatus(err, http.StatusUnauthorized)
}

func TestNoopNotifier(t *testing.T) {
	require.NoError(t, noopNotifier{}.NotifyDigitalIDIssued(context.Background(), nil, nil))
	assert.Implements(t, (*IssuanceNotifier)(nil), noopNotifier{})
}
