package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exscan-backend/internal/config"
	"github.com/stemsi/exscan-backend/internal/model"
	"github.com/stemsi/exscan-backend/internal/service"
)

const gradingPollTimeout = 1 * time.Second

// GradingWorker consumes grading jobs from the queue and runs them through
// the grading service. Failed jobs are logged and dropped: the submission
// keeps its NULL score and can be re-enqueued.
type GradingWorker struct {
	grading *service.GradingService
	rdb     *redis.Client
	log     zerolog.Logger
}

// NewGradingWorker creates a new GradingWorker.
func NewGradingWorker(grading *service.GradingService, rdb *redis.Client, log zerolog.Logger) *GradingWorker {
	return &GradingWorker{
		grading: grading,
		rdb:     rdb,
		log:     log.With().Str("component", "grading_worker").Logger(),
	}
}

// Start runs the consume loop until ctx is cancelled.
func (w *GradingWorker) Start(ctx context.Context) {
	w.log.Info().Msg("GradingWorker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. GradingWorker stopping")
			return

		default:
			item, err := w.rdb.BLPop(ctx, gradingPollTimeout, config.WorkerKey.GradingQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var job model.GradingJob
			if err := json.Unmarshal([]byte(item[1]), &job); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			w.process(ctx, job)
		}
	}
}

func (w *GradingWorker) process(ctx context.Context, job model.GradingJob) {
	score, err := w.grading.Grade(ctx, job)
	if err != nil {
		w.log.Error().Err(err).
			Str("submission_id", job.SubmissionID).
			Str("test_id", job.TestID).
			Msg("Grading job failed")
		return
	}

	w.publish(ctx, job, score)
}

// publish notifies live result streams. Delivery is best effort; the score is
// already persisted.
func (w *GradingWorker) publish(ctx context.Context, job model.GradingJob, score int) {
	event := model.GradingEvent{
		SubmissionID: job.SubmissionID,
		TestID:       job.TestID,
		Score:        score,
		GradedAt:     time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		w.log.Error().Err(err).Msg("Failed to marshal grading event")
		return
	}
	channel := config.CacheKey.TestResultsChannel(job.TestID)
	if err := w.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		w.log.Error().Err(err).Str("channel", channel).Msg("Failed to publish grading event")
	}
}
