// Package service contains the business logic.
//
// It sits between the handler and repository layers: handlers pass in
// validated requests, services apply the domain rules and call the stores.
// Expected outcomes (not found, conflict, bad credentials) come back as
// *errs.HTTPError; unexpected storage failures are wrapped and left for the
// global error handler.
package service

import (
	"context"

	"github.com/deppfellow/safe-trail/internal/model"
)

// IssuanceNotifier is told about every newly issued digital ID.
type IssuanceNotifier interface {
	NotifyDigitalIDIssued(ctx context.Context, profile *model.TouristProfile, id *model.DigitalID) error
}

type noopNotifier struct{}

func (noopNotifier) NotifyDigitalIDIssued(context.Context, *model.TouristProfile, *model.DigitalID) error {
	return nil
}
