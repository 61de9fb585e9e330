package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/deppfellow/safe-trail/internal/config"
	"github.com/deppfellow/safe-trail/internal/errs"
	"github.com/deppfellow/safe-trail/internal/handler"
	"github.com/deppfellow/safe-trail/internal/model"
	"github.com/deppfellow/safe-trail/internal/repository"
	"github.com/deppfellow/safe-trail/internal/server"
	"github.com/deppfellow/safe-trail/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hashPattern = regexp.MustCompile(`^0x[0-9a-f]{64}$`)

type testApp struct {
	t      *testing.T
	router *echo.Echo
	repos  *repository.Repositories
}

func newTestApp(t *testing.T, configure ...func(cfg *config.Config)) *testApp {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Primary.Env = "test"
	cfg.Storage.Driver = config.StorageDriverMemory
	for _, fn := range configure {
		fn(cfg)
	}
	require.NoError(t, cfg.Validate())

	logger := zerolog.Nop()
	srv := &server.Server{Config: cfg, Logger: &logger}

	repos := repository.NewRepositories(srv)
	services, err := service.NewServices(srv, repos)
	require.NoError(t, err)

	return &testApp{
		t:      t,
		router: NewRouter(srv, handler.NewHandlers(srv, services)),
		repos:  repos,
	}
}

func (a *testApp) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestTouristOnboardingFlow(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/api/login", map[string]string{"touristId": "T1", "fullName": "Asha"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	login := decode[handler.LoginResponse](t, rec)
	require.NotNil(t, login.Profile)
	assert.Equal(t, "T1", login.Profile.TouristID)
	assert.False(t, login.Profile.ProfileCompleted)
	assert.Equal(t, model.DefaultNationality, login.Profile.Nationality)
	assert.Equal(t, model.DefaultTravelerType, login.Profile.TravelerType)

	rec = app.do(http.MethodGet, "/api/digital-id/T1", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	notIssued := decode[errs.HTTPError](t, rec)
	assert.Equal(t, "Digital ID not found. Please complete your profile first.", notIssued.Message)
	require.NotNil(t, notIssued.Action)
	assert.Equal(t, errs.ActionTypeRedirect, notIssued.Action.Type)

	rec = app.do(http.MethodPost, "/api/profile/T1", map[string]string{"accommodation": "Hotel Ganga"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[model.TouristProfile](t, rec)
	assert.True(t, updated.ProfileCompleted)
	assert.Equal(t, "Hotel Ganga", updated.Accommodation)

	rec = app.do(http.MethodGet, "/api/digital-id/T1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decode[model.DigitalIDView](t, rec)

	assert.Equal(t, "T1", view.TouristID)
	assert.Equal(t, updated.ID, view.TouristProfileID)
	assert.Regexp(t, hashPattern, view.BlockchainHash)
	assert.Equal(t, view.IssueDate.AddDays(30), view.ValidUntil)
	require.Len(t, view.Triggers, 2)
	for _, trigger := range view.Triggers {
		assert.Equal(t, view.IssueDate, trigger.Date)
	}
	assert.Equal(t, "Asha", view.Profile.FullName)
	assert.Equal(t, model.DefaultNationality, view.Profile.Nationality)

	rec = app.do(http.MethodPut, "/api/profile/T1", map[string]string{"accommodation": "Hotel Brahmaputra"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(http.MethodGet, "/api/digital-id/T1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	again := decode[model.DigitalIDView](t, rec)
	assert.Equal(t, view.ID, again.ID, "completion never issues a second digital ID")
	assert.Equal(t, view.BlockchainHash, again.BlockchainHash)

	rec = app.do(http.MethodGet, "/api/profile/T1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hotel Brahmaputra", decode[model.TouristProfile](t, rec).Accommodation)
}

func TestLoginWithWrongNameIsUnauthorized(t *testing.T) {
	app := newTestApp(t)

	require.Equal(t, http.StatusOK, app.do(http.MethodPost, "/api/login",
		map[string]string{"touristId": "T2", "fullName": "Asha Devi"}).Code)

	rec := app.do(http.MethodPost, "/api/login", map[string]string{"touristId": "T2", "fullName": "  asha devi "})
	assert.Equal(t, http.StatusOK, rec.Code, "name match ignores case and surrounding space")

	rec = app.do(http.MethodPost, "/api/login", map[string]string{"touristId": "T2", "fullName": "Ravi"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decode[errs.HTTPError](t, rec).Code)
}

func TestLoginValidation(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/api/login", map[string]string{"touristId": "   "})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode[errs.HTTPError](t, rec)
	fields := make([]string, 0, len(body.Errors))
	for _, fe := range body.Errors {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"touristId", "fullName"}, fields)

	rec = app.do(http.MethodPost, "/api/login", `{"touristId":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBlankAccommodationLeavesProfileUntouched(t *testing.T) {
	app := newTestApp(t)

	require.Equal(t, http.StatusOK, app.do(http.MethodPost, "/api/login",
		map[string]string{"touristId": "T3", "fullName": "Meera"}).Code)

	for _, body := range []any{
		map[string]string{"accommodation": "   "},
		map[string]string{"fullName": "Meera K"},
	} {
		rec := app.do(http.MethodPost, "/api/profile/T3", body)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		httpErr := decode[errs.HTTPError](t, rec)
		require.Len(t, httpErr.Errors, 1)
		assert.Equal(t, "accommodation", httpErr.Errors[0].Field)
		assert.Equal(t, model.AccommodationRequiredMessage, httpErr.Errors[0].Error)
	}

	rec := app.do(http.MethodGet, "/api/profile/T3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode[model.TouristProfile](t, rec)
	assert.False(t, profile.ProfileCompleted)
	assert.Equal(t, "Meera", profile.FullName)
}

func TestNotFoundResponses(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name    string
		method  string
		path    string
		body    any
		message string
	}{
		{"profile read", http.MethodGet, "/api/profile/ghost", nil, "Profile not found"},
		{"profile update", http.MethodPost, "/api/profile/ghost", map[string]string{"accommodation": "Tent"}, "Profile not found"},
		{"digital id read", http.MethodGet, "/api/digital-id/ghost", nil, "Profile not found"},
		{"unknown api route", http.MethodGet, "/api/unknown", nil, "API endpoint not found"},
		{"unknown route", http.MethodGet, "/nowhere", nil, "Route not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(tt.method, tt.path, tt.body)
			require.Equal(t, http.StatusNotFound, rec.Code)

			httpErr := decode[errs.HTTPError](t, rec)
			assert.Equal(t, tt.message, httpErr.Message)
			assert.Equal(t, http.StatusNotFound, httpErr.Status)
		})
	}
}

func TestCreateProfileAndDigitalID(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/api/profile", map[string]string{"touristId": "T4", "fullName": "Kiran"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	profile := decode[model.TouristProfile](t, rec)
	assert.False(t, profile.ProfileCompleted)

	rec = app.do(http.MethodPost, "/api/profile", map[string]string{"touristId": "T4", "fullName": "Kiran"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	payload := map[string]any{
		"touristProfileId": profile.ID.String(),
		"touristId":        "T4",
		"issueDate":        "2025-03-01",
		"validUntil":       "2025-03-31",
		"blockchainHash":   "0x" + "ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12",
		"triggers": []map[string]string{
			{"type": model.TriggerIdentityVerification, "source": model.SourceTourismBoard, "date": "2025-03-01"},
		},
	}

	rec = app.do(http.MethodPost, "/api/digital-id", payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[model.DigitalID](t, rec)
	assert.Equal(t, "2025-03-31", created.ValidUntil.String())

	rec = app.do(http.MethodPost, "/api/digital-id", payload)
	assert.Equal(t, http.StatusConflict, rec.Code)

	payload["blockchainHash"] = "not-a-hash"
	rec = app.do(http.MethodPost, "/api/digital-id", payload)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(http.MethodGet, "/api/digital-id/T4", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decode[model.DigitalIDView](t, rec).ID)
}

func TestRegisterAndPasswordLogin(t *testing.T) {
	app := newTestApp(t)
	credentials := map[string]string{"username": "asha", "password": "s3cret-pass"}

	rec := app.do(http.MethodPost, "/api/register", credentials)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	registered := decode[handler.UserResponse](t, rec)
	require.NotNil(t, registered.User)
	assert.Equal(t, "asha", registered.User.Username)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = app.do(http.MethodPost, "/api/register", credentials)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Username already exists", decode[errs.HTTPError](t, rec).Message)

	rec = app.do(http.MethodPost, "/api/auth/login", credentials)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, registered.User.ID, decode[handler.UserResponse](t, rec).User.ID)

	rec = app.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "asha", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", decode[errs.HTTPError](t, rec).Message)
}

func TestCredentialEndpointsAreRateLimited(t *testing.T) {
	app := newTestApp(t, func(cfg *config.Config) {
		cfg.RateLimit.RequestsPerSecond = 0.001
		cfg.RateLimit.Burst = 2
	})

	body := map[string]string{"touristId": "T5", "fullName": "Nima"}
	for rangeIter := 0; rangeIter < 2; rangeIter++ {
		require.Equal(t, http.StatusOK, app.do(http.MethodPost, "/api/login", body).Code)
	}

	rec := app.do(http.MethodPost, "/api/login", body)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "TOO_MANY_REQUESTS", decode[errs.HTTPError](t, rec).Code)

	rec = app.do(http.MethodGet, "/api/profile/T5", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "reads are not throttled")
}

func TestSystemRoutes(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[handler.HealthResponse](t, rec)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, config.StorageDriverMemory, health.Storage)
	assert.Equal(t, "disabled", health.Checks["database"].Status)
	assert.Equal(t, "disabled", health.Checks["redis"].Status)

	rec = app.do(http.MethodGet, "/docs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/static/openapi.json")

	rec = app.do(http.MethodGet, "/static/openapi.json", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/digital-id/{touristId}")

	rec = app.do(http.MethodGet, "/status", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
