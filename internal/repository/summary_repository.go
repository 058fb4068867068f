package repository

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ledger-bank/internal/model"
)

type SummaryRepository struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewSummaryRepository(db *gorm.DB, log *logrus.Logger) *SummaryRepository {
	return &SummaryRepository{
		db:  db,
		log: log,
	}
}

// SaveRun stores the final balances and the tally of a run. Saving the same
// run again overwrites the previous values.
func (r *SummaryRepository) SaveRun(ctx context.Context, runID string, workers int, balances []int64, success, failure int) error {
	rows := make([]model.AccountBalance, len(balances))
	for id, b := range balances {
		rows[id] = model.AccountBalance{RunID: runID, AccountID: id, Balance: b}
	}

	summary := model.RunSummary{
		RunID:    runID,
		Workers:  workers,
		Accounts: len(balances),
		Success:  success,
		Failure:  failure,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(rows) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "run_id"}, {Name: "account_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"balance", "updated_at"}),
			}).Create(&rows).Error; err != nil {
				return fmt.Errorf("failed to save balances: %w", err)
			}
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "run_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"workers", "accounts", "success", "failure", "updated_at"}),
		}).Create(&summary).Error; err != nil {
			return fmt.Errorf("failed to save run summary: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.log.WithFields(logrus.Fields{
		"run_id":   runID,
		"accounts": len(balances),
		"success":  success,
		"failure":  failure,
	}).Info("run archived")

	return nil
}

// GetRun returns the summary of a run and its balances ordered by account ID
func (r *SummaryRepository) GetRun(ctx context.Context, runID string) (*model.RunSummary, []model.AccountBalance, error) {
	var summary model.RunSummary
	if err := r.db.WithContext(ctx).Where("run_id = ?", runID).First(&summary).Error; err != nil {
		return nil, nil, err
	}

	var balances []model.AccountBalance
	err := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("account_id").
		Find(&balances).Error

	return &summary, balances, err
}
