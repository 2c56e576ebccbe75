// Package scheduler runs the recurring housekeeping jobs: pruning stale read
// notifications and warning when the regulator floor for the new month has not
// been set yet.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/ceylonara/ceylonara-api/databases"
)

// readNotificationTTL is how long a read notification is kept before pruning.
const readNotificationTTL = 30 * 24 * time.Hour

const jobTimeout = 2 * time.Minute

// Scheduler owns the cron instance and the database handles its jobs use
type Scheduler struct {
	cron *cron.Cron
	ndb  databases.NotificationDatabase
	adb  databases.AveragePriceDatabase
}

// New builds a scheduler with its jobs registered but not yet running
func New(ndb databases.NotificationDatabase, adb databases.AveragePriceDatabase) *Scheduler {
	s := &Scheduler{
		cron: cron.New(cron.WithLocation(time.UTC)),
		ndb:  ndb,
		adb:  adb,
	}

	// nightly at 02:00 UTC
	_, err := s.cron.AddFunc("0 2 * * *", s.pruneReadNotifications)
	if err != nil {
		zap.S().With(err).Error("failed to register notification prune job")
	}

	// 00:30 UTC on the first three days of each month
	_, err = s.cron.AddFunc("30 0 1-3 * *", s.warnMissingFloorPrice)
	if err != nil {
		zap.S().With(err).Error("failed to register floor price check job")
	}

	return s
}

// Start begins running the registered jobs
func (s *Scheduler) Start() {
	s.cron.Start()
	zap.S().Info("scheduler started")
}

// Stop halts the scheduler and waits for any running job to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("scheduler stopped")
}

// pruneReadNotifications deletes read notifications older than the TTL
func (s *Scheduler) pruneReadNotifications() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	cutoff := primitive.NewDateTimeFromTime(time.Now().UTC().Add(-readNotificationTTL))
	deleted, err := s.ndb.DeleteMany(ctx, bson.M{
		"read":      true,
		"createdAt": bson.M{"$lt": cutoff},
	})
	if err != nil {
		zap.S().With(err).Error("failed to prune read notifications")
		return
	}
	zap.S().Infow("pruned read notifications", "deleted", deleted)
}

// warnMissingFloorPrice logs a warning if no floor price exists for the
// current month yet. Runs early in the month so operators can chase it up.
func (s *Scheduler) warnMissingFloorPrice() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	now := time.Now().UTC()
	count, err := s.adb.CountDocuments(ctx, bson.M{"month": int(now.Month()), "year": now.Year()})
	if err != nil {
		zap.S().With(err).Error("failed to check floor price for current month")
		return
	}
	if count == 0 {
		zap.S().Warnw("no floor price set for current month",
			"month", int(now.Month()),
			"year", now.Year(),
		)
	}
}
