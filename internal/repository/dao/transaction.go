package dao

import (
	"context"
	"time"

	"gorm.io/gorm"
)

const (
	TransactionPending   = "pending"
	TransactionCompleted = "completed"
	TransactionFailed    = "failed"
)

type Transaction struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	UserID      string `gorm:"not null;index"`
	Amount      int    `gorm:"not null"`
	Method      string `gorm:"not null"`
	Status      string `gorm:"not null"`
	CreatedAt   time.Time
	CompletedAt *time.Time
}

func (Transaction) TableName() string {
	return "transactions"
}

// WithdrawalCheck validates a withdrawal against the locked user's score and the amount
// already reserved by pending or completed transactions.
type WithdrawalCheck func(score, withdrawn int) error

type TransactionDAO struct {
	db *gorm.DB
}

func NewTransactionDAO(db *gorm.DB) *TransactionDAO {
	return &TransactionDAO{
		db: db,
	}
}

// InsertWithdrawal runs check under the user row lock, then records the transaction and
// deducts its amount from the score. It returns the score after the deduction.
func (d *TransactionDAO) InsertWithdrawal(ctx context.Context, t Transaction, check WithdrawalCheck) (Transaction, int, error) {
	var score int

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockUser(tx, t.UserID)
		if err != nil {
			return err
		}

		withdrawn, err := sumWithdrawn(tx, t.UserID)
		if err != nil {
			return err
		}
		if err := check(user.Score, withdrawn); err != nil {
			return err
		}

		if err := tx.Create(&t).Error; err != nil {
			return err
		}

		err = tx.Model(&User{}).Where("id = ?", t.UserID).
			UpdateColumn("score", gorm.Expr("score - ?", t.Amount)).Error
		if err != nil {
			return err
		}
		score = user.Score - t.Amount

		return nil
	})
	if err != nil {
		return Transaction{}, 0, err
	}

	return t, score, nil
}

// FindByUserID returns the user's transactions, newest first.
func (d *TransactionDAO) FindByUserID(ctx context.Context, userID string) ([]Transaction, error) {
	var transactions []Transaction

	result := d.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&transactions)
	if result.Error != nil {
		return nil, result.Error
	}

	return transactions, nil
}

func (d *TransactionDAO) SumWithdrawn(ctx context.Context, userID string) (int, error) {
	return sumWithdrawn(d.db.WithContext(ctx), userID)
}

func sumWithdrawn(db *gorm.DB, userID string) (int, error) {
	var total int

	result := db.Model(&Transaction{}).
		Where("user_id = ? AND status IN ?", userID, []string{TransactionPending, TransactionCompleted}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total)
	if result.Error != nil {
		return 0, result.Error
	}

	return total, nil
}
