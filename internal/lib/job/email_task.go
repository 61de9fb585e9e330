package job

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/deppfellow/safe-trail/internal/model"
	"github.com/hibiken/asynq"
)

const (
	// TaskDigitalIDIssued emails a tourist once their digital ID exists.
	TaskDigitalIDIssued = "email:digital_id_issued"
)

// DigitalIDIssuedPayload is the JSON body of a TaskDigitalIDIssued task.
type DigitalIDIssuedPayload struct {
	To             string `json:"to"`
	FullName       string `json:"full_name"`
	TouristID      string `json:"tourist_id"`
	IssueDate      string `json:"issue_date"`
	ValidUntil     string `json:"valid_until"`
	BlockchainHash string `json:"blockchain_hash"`
}

// NewDigitalIDIssuedTask builds the notification task. The task ID is derived
// from the tourist ID so a duplicate enqueue for the same issuance is rejected
// by Asynq instead of sending a second email.
func NewDigitalIDIssuedTask(profile *model.TouristProfile, id *model.DigitalID) (*asynq.Task, error) {
	if profile.Email == nil || *profile.Email == "" {
		return nil, fmt.Errorf("profile %s has no email address", profile.TouristID)
	}

	payload, err := json.Marshal(DigitalIDIssuedPayload{
		To:             *profile.Email,
		FullName:       profile.FullName,
		TouristID:      id.TouristID,
		IssueDate:      id.IssueDate.String(),
		ValidUntil:     id.ValidUntil.String(),
		BlockchainHash: id.BlockchainHash,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskDigitalIDIssued,
		payload,
		asynq.TaskID("digital-id-issued:"+id.TouristID),
		asynq.MaxRetry(3),
		asynq.Queue(QueueDefault),
		asynq.Timeout(30*time.Second),
	), nil
}
