package jobs

import (
	"context"
	"time"

	"pronostix/internal/models"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DeadlineJob periodically reports predictions whose deadline has passed but
// that are still waiting for settlement. Vote guards already reject late
// votes; this job surfaces stale predictions so someone settles them.
type DeadlineJob struct {
	db   *gorm.DB
	stop chan struct{}
}

func NewDeadlineJob(db *gorm.DB) *DeadlineJob {
	return &DeadlineJob{
		db:   db,
		stop: make(chan struct{}),
	}
}

// Start begins the periodic sweep
func (j *DeadlineJob) Start(interval time.Duration) {
	go func() {
		ctx := context.Background()
		j.sweep(ctx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				j.sweep(ctx)
			case <-j.stop:
				return
			}
		}
	}()
}

// Stop terminates the sweep loop
func (j *DeadlineJob) Stop() {
	close(j.stop)
}

func (j *DeadlineJob) sweep(ctx context.Context) {
	var stale []models.Prediction
	err := j.db.WithContext(ctx).
		Where("status = ? AND deadline < ?", models.PredictionStatusWaiting, time.Now()).
		Find(&stale).Error
	if err != nil {
		log.WithError(err).Error("deadline sweep failed")
		return
	}

	for _, prediction := range stale {
		log.WithFields(log.Fields{
			"prediction_id": prediction.ID,
			"title":         prediction.Title,
			"deadline":      prediction.Deadline,
		}).Warn("prediction past deadline awaiting settlement")
	}

	if len(stale) > 0 {
		log.WithField("count", len(stale)).Info("deadline sweep completed")
	}
}
