package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/deppfellow/safe-trail/internal/lib/email"
	"github.com/deppfellow/safe-trail/internal/model"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	to   string
	data email.DigitalIDIssuedData
	err  error
}

func (f *fakeMailer) SendDigitalIDIssuedEmail(_ context.Context, to string, data email.DigitalIDIssuedData) error {
	f.to = to
	f.data = data
	return f.err
}

func fixtures() (*model.TouristProfile, *model.DigitalID) {
	addr := "asha@example.com"
	issued := model.NewDate(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
	return &model.TouristProfile{TouristID: "T1", FullName: "Asha", Email: &addr},
		&model.DigitalID{TouristID: "T1", IssueDate: issued, ValidUntil: issued.AddDays(30), BlockchainHash: "0xfeed"}
}

func TestNewDigitalIDIssuedTask(t *testing.T) {
	profile, id := fixtures()

	task, err := NewDigitalIDIssuedTask(profile, id)
	require.NoError(t, err)
	assert.Equal(t, TaskDigitalIDIssued, task.Type())

	var p DigitalIDIssuedPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.Equal(t, DigitalIDIssuedPayload{
		To:             "asha@example.com",
		FullName:       "Asha",
		TouristID:      "T1",
		IssueDate:      "2025-01-15",
		ValidUntil:     "2025-02-14",
		BlockchainHash: "0xfeed",
	}, p)

	profile.Email = nil
	_, err = NewDigitalIDIssuedTask(profile, id)
	assert.Error(t, err)
}

func TestHandleDigitalIDIssuedTask(t *testing.T) {
	logger := zerolog.Nop()
	profile, id := fixtures()
	task, err := NewDigitalIDIssuedTask(profile, id)
	require.NoError(t, err)

	t.Run("sends email", func(t *testing.T) {
		m := &fakeMailer{}
		j := &JobService{logger: &logger, mailer: m}

		require.NoError(t, j.handleDigitalIDIssuedTask(context.Background(), task))
		assert.Equal(t, "asha@example.com", m.to)
		assert.Equal(t, "2025-02-14", m.data.ValidUntil)
		assert.Equal(t, "Asha", m.data.FullName)
	})

	t.Run("propagates send failure for retry", func(t *testing.T) {
		j := &JobService{logger: &logger, mailer: &fakeMailer{err: errors.New("resend down")}}
		assert.Error(t, j.handleDigitalIDIssuedTask(context.Background(), task))
	})

	t.Run("bad payload skips retry", func(t *testing.T) {
		j := &JobService{logger: &logger, mailer: &fakeMailer{}}
		err := j.handleDigitalIDIssuedTask(context.Background(), asynq.NewTask(TaskDigitalIDIssued, []byte("{")))
		assert.ErrorIs(t, err, asynq.SkipRetry)
	})
}

func TestNotifySkipsProfilesWithoutEmail(t *testing.T) {
	logger := zerolog.Nop()
	profile, id := fixtures()
	profile.Email = nil

	// Client is nil: reaching the enqueue call would panic.
	j := &JobService{logger: &logger}
	assert.NoError(t, j.NotifyDigitalIDIssued(context.Background(), profile, id))
}
