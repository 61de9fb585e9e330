package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/deppfellow/safe-trail/internal/lib/email"
	"github.com/deppfellow/safe-trail/internal/model"
	"github.com/hibiken/asynq"
)

type mailer interface {
	SendDigitalIDIssuedEmail(ctx context.Context, to string, data email.DigitalIDIssuedData) error
}

// NotifyDigitalIDIssued enqueues the issuance email. Profiles without an
// email address are skipped.
func (j *JobService) NotifyDigitalIDIssued(ctx context.Context, profile *model.TouristProfile, id *model.DigitalID) error {
	if profile.Email == nil || *profile.Email == "" {
		return nil
	}

	task, err := NewDigitalIDIssuedTask(profile, id)
	if err != nil {
		return fmt.Errorf("building digital id email task: %w", err)
	}

	info, err := j.Client.EnqueueContext(ctx, task)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueueing digital id email task: %w", err)
	}

	j.logger.Debug().
		Str("task_id", info.ID).
		Str("queue", info.Queue).
		Str("tourist_id", id.TouristID).
		Msg("enqueued digital id email")
	return nil
}

func (j *JobService) handleDigitalIDIssuedTask(ctx context.Context, t *asynq.Task) error {
	var p DigitalIDIssuedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		// A payload that cannot be decoded will never succeed.
		return fmt.Errorf("failed to unmarshal digital id email payload: %v: %w", err, asynq.SkipRetry)
	}

	log := j.logger.With().
		Str("type", TaskDigitalIDIssued).
		Str("tourist_id", p.TouristID).
		Logger()

	log.Info().Msg("processing digital id email task")

	err := j.mailer.SendDigitalIDIssuedEmail(ctx, p.To, email.DigitalIDIssuedData{
		FullName:       p.FullName,
		TouristID:      p.TouristID,
		IssueDate:      p.IssueDate,
		ValidUntil:     p.ValidUntil,
		BlockchainHash: p.BlockchainHash,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to send digital id email")
		return err
	}

	log.Info().Msg("sent digital id email")
	return nil
}

func sprint(args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprint(a)
	}
	return strings.Join(parts, " ")
}
