package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	rediscache "github.com/raseedhq/raseed-backend/internal/clients/redis"
	"github.com/raseedhq/raseed-backend/internal/logger"
	"github.com/raseedhq/raseed-backend/internal/repos"
	"github.com/raseedhq/raseed-backend/internal/types"
	"github.com/raseedhq/raseed-backend/internal/warranty"
)

// ReminderService periodically recomputes expiring-soon counts for
// every user with slips and warms the summary cache, so reminder
// polling stays cheap.
type ReminderService interface {
	ScanExpiring(ctx context.Context) (map[uuid.UUID]int, error)
	StartWorker(ctx context.Context)
}

type reminderService struct {
	db           *gorm.DB
	log          *logger.Logger
	slipRepo     repos.WarrantySlipRepo
	summaryCache rediscache.SummaryCache
	horizonDays  int
	interval     time.Duration
}

func NewReminderService(
	db *gorm.DB,
	log *logger.Logger,
	slipRepo repos.WarrantySlipRepo,
	summaryCache rediscache.SummaryCache,
	horizonDays int,
	interval time.Duration,
) ReminderService {
	serviceLog := log.With("service", "ReminderService")
	if horizonDays <= 0 {
		horizonDays = warranty.DefaultHorizonDays
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &reminderService{
		db:           db,
		log:          serviceLog,
		slipRepo:     slipRepo,
		summaryCache: summaryCache,
		horizonDays:  horizonDays,
		interval:     interval,
	}
}

// ScanExpiring fans out one status computation per user and returns the
// expiring-soon count for each. The per-user work is independent, so a
// bounded errgroup does them concurrently.
func (rs *reminderService) ScanExpiring(ctx context.Context) (map[uuid.UUID]int, error) {
	userIDs, err := rs.slipRepo.ListUserIDsWithSlips(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Failed to list users with slips: %w", err)
	}

	var mu sync.Mutex
	counts := make(map[uuid.UUID]int, len(userIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	now := time.Now().UTC()
	for _, userID := range userIDs {
		g.Go(func() error {
			slips, sErr := rs.slipRepo.ListByUserID(gctx, nil, userID)
			if sErr != nil {
				return fmt.Errorf("user %s: %w", userID, sErr)
			}
			summary := statusCounts(slips, now, rs.horizonDays)
			mu.Lock()
			counts[userID] = summary[string(warranty.StatusExpiringSoon)]
			mu.Unlock()
			if rs.summaryCache != nil {
				if cErr := rs.summaryCache.Set(gctx, userID, summary); cErr != nil {
					rs.log.Warn("Failed to warm summary cache", "user_id", userID, "error", cErr)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return counts, nil
}

func (rs *reminderService) StartWorker(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(rs.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				counts, err := rs.ScanExpiring(ctx)
				if err != nil {
					rs.log.Warn("Reminder scan failed", "error", err)
					continue
				}
				total := 0
				for _, c := range counts {
					total += c
				}
				rs.log.Info("Reminder scan complete", "users", len(counts), "expiring_soon", total)
			}
		}
	}()
}

func statusCounts(slips []*types.WarrantySlip, now time.Time, horizonDays int) map[string]int {
	counts := map[string]int{
		string(warranty.StatusActive):       0,
		string(warranty.StatusExpiringSoon): 0,
		string(warranty.StatusExpired):      0,
	}
	for _, slip := range slips {
		status := warranty.DeriveStatus(slip.WarrantyEndDate, now, horizonDays)
		counts[string(status)]++
	}
	return counts
}
