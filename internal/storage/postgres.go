package storage

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/earnwatch/earnwatch/internal/models"
)

// PostgresStore implements the same flush contract as the file store on top
// of PostgreSQL: every save rewrites the full state inside one transaction.
// Rows carry an explicit Seq column because insertion order is part of the
// snapshot, not an artifact of the backend.
type PostgresStore struct {
	db *gorm.DB
}

type accountRecord struct {
	Email      string `gorm:"primaryKey"`
	Username   string
	Password   string
	Earnings   float64
	ScreenTime float64
	LastLogin  *string
	Seq        int `gorm:"index"`
}

func (accountRecord) TableName() string { return "accounts" }

type withdrawRecord struct {
	ID           string `gorm:"primaryKey"`
	AccountEmail string `gorm:"index"`
	Amount       float64
	Method       string
	Date         string
	Approved     bool
	Seq          int
}

func (withdrawRecord) TableName() string { return "withdraw_requests" }

type feedbackRecord struct {
	ID      uint `gorm:"primaryKey;autoIncrement"`
	Name    string
	Email   string
	Message string
	Date    string
	Seq     int `gorm:"index"`
}

func (feedbackRecord) TableName() string { return "feedback_entries" }

func OpenPostgres(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := db.AutoMigrate(&accountRecord{}, &withdrawRecord{}, &feedbackRecord{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) LoadUsers() (UserSnapshot, error) {
	snap := UserSnapshot{Accounts: make(map[string]*models.Account)}

	var accounts []accountRecord
	if err := s.db.Order("seq").Find(&accounts).Error; err != nil {
		return snap, fmt.Errorf("loading accounts: %w", err)
	}

	var requests []withdrawRecord
	if err := s.db.Order("seq").Find(&requests).Error; err != nil {
		return snap, fmt.Errorf("loading withdraw requests: %w", err)
	}

	for _, rec := range accounts {
		snap.Accounts[rec.Email] = &models.Account{
			Username:         rec.Username,
			Password:         rec.Password,
			Earnings:         rec.Earnings,
			ScreenTime:       rec.ScreenTime,
			LastLogin:        rec.LastLogin,
			WithdrawRequests: []models.WithdrawRequest{},
		}
		snap.Order = append(snap.Order, rec.Email)
	}

	for _, rec := range requests {
		acct, ok := snap.Accounts[rec.AccountEmail]
		if !ok {
			continue
		}
		acct.WithdrawRequests = append(acct.WithdrawRequests, models.WithdrawRequest{
			ID:       rec.ID,
			Amount:   rec.Amount,
			Method:   rec.Method,
			Date:     rec.Date,
			Approved: rec.Approved,
		})
	}

	return snap, nil
}

func (s *PostgresStore) SaveUsers(snap UserSnapshot) error {
	accounts := make([]accountRecord, 0, len(snap.Order))
	var requests []withdrawRecord

	for seq, email := range snap.Order {
		acct, ok := snap.Accounts[email]
		if !ok {
			continue
		}
		accounts = append(accounts, accountRecord{
			Email:      email,
			Username:   acct.Username,
			Password:   acct.Password,
			Earnings:   acct.Earnings,
			ScreenTime: acct.ScreenTime,
			LastLogin:  acct.LastLogin,
			Seq:        seq,
		})
		for i, req := range acct.WithdrawRequests {
			requests = append(requests, withdrawRecord{
				ID:           req.ID,
				AccountEmail: email,
				Amount:       req.Amount,
				Method:       req.Method,
				Date:         req.Date,
				Approved:     req.Approved,
				Seq:          i,
			})
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		wipe := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := wipe.Delete(&withdrawRecord{}).Error; err != nil {
			return fmt.Errorf("clearing withdraw requests: %w", err)
		}
		if err := wipe.Delete(&accountRecord{}).Error; err != nil {
			return fmt.Errorf("clearing accounts: %w", err)
		}
		if len(accounts) > 0 {
			if err := tx.Create(&accounts).Error; err != nil {
				return fmt.Errorf("writing accounts: %w", err)
			}
		}
		if len(requests) > 0 {
			if err := tx.Create(&requests).Error; err != nil {
				return fmt.Errorf("writing withdraw requests: %w", err)
			}
		}
		return nil
	})
}

func (s *PostgresStore) LoadFeedback() ([]models.FeedbackEntry, error) {
	var records []feedbackRecord
	if err := s.db.Order("seq").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("loading feedback: %w", err)
	}

	entries := make([]models.FeedbackEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, models.FeedbackEntry{
			Name:    rec.Name,
			Email:   rec.Email,
			Message: rec.Message,
			Date:    rec.Date,
		})
	}
	return entries, nil
}

func (s *PostgresStore) SaveFeedback(entries []models.FeedbackEntry) error {
	records := make([]feedbackRecord, 0, len(entries))
	for seq, entry := range entries {
		records = append(records, feedbackRecord{
			Name:    entry.Name,
			Email:   entry.Email,
			Message: entry.Message,
			Date:    entry.Date,
			Seq:     seq,
		})
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		wipe := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := wipe.Delete(&feedbackRecord{}).Error; err != nil {
			return fmt.Errorf("clearing feedback: %w", err)
		}
		if len(records) > 0 {
			if err := tx.Create(&records).Error; err != nil {
				return fmt.Errorf("writing feedback: %w", err)
			}
		}
		return nil
	})
}

func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
