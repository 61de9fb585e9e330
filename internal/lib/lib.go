// Package lib groups modules that do not fit strictly into other layers.
//
// It contains shared utilities, background job processing (Asynq on Redis)
// and the transactional email client (Resend).
package lib
