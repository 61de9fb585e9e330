// Package job runs background work on an Asynq (Redis-backed) queue.
//
// The API enqueues tasks through Client; the worker server registered in
// Start consumes them in the same process.
package job

import (
	"github.com/deppfellow/safe-trail/internal/config"
	"github.com/deppfellow/safe-trail/internal/lib/email"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Queue names, in descending priority.
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// JobService owns the Asynq producer and worker.
type JobService struct {
	Client *asynq.Client
	server *asynq.Server
	logger *zerolog.Logger
	mailer mailer
}

func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: cfg.Jobs.Concurrency,
			Queues: map[string]int{
				QueueCritical: 6,
				QueueDefault:  3,
				QueueLow:      1,
			},
			Logger:   newAsynqLogger(logger),
			LogLevel: asynq.WarnLevel,
		},
	)

	return &JobService{
		Client: asynq.NewClient(redisOpt),
		server: server,
		logger: logger,
	}
}

// InitHandlers builds the dependencies task handlers need.
func (j *JobService) InitHandlers(cfg *config.Config, logger *zerolog.Logger) {
	j.mailer = email.NewClient(cfg, logger)
}

// Start registers handlers and starts the workers. It does not block.
func (j *JobService) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskDigitalIDIssued, j.handleDigitalIDIssuedTask)

	j.logger.Info().Msg("starting background job server")

	return j.server.Start(mux)
}

// Stop waits for in-flight tasks and releases Redis connections.
func (j *JobService) Stop() {
	j.logger.Info().Msg("stopping background job server")
	j.server.Shutdown()
	if err := j.Client.Close(); err != nil {
		j.logger.Error().Err(err).Msg("failed to close job client")
	}
}

// asynqLogger routes Asynq's internal logging through zerolog.
type asynqLogger struct {
	logger zerolog.Logger
}

func newAsynqLogger(logger *zerolog.Logger) *asynqLogger {
	return &asynqLogger{logger: logger.With().Str("component", "asynq").Logger()}
}

func (l *asynqLogger) Debug(args ...any) { l.logger.Debug().Msg(sprint(args)) }
func (l *asynqLogger) Info(args ...any)  { l.logger.Info().Msg(sprint(args)) }
func (l *asynqLogger) Warn(args ...any)  { l.logger.Warn().Msg(sprint(args)) }
func (l *asynqLogger) Error(args ...any) { l.logger.Error().Msg(sprint(args)) }
func (l *asynqLogger) Fatal(args ...any) { l.logger.Fatal().Msg(sprint(args)) }
