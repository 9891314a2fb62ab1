package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrChallengeNotFound = errors.New("challenge not found")
)

type Challenge struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	Title       string `gorm:"not null"`
	Description string `gorm:"type:text;not null"`
	Category    string `gorm:"not null;index"`
	Points      int    `gorm:"not null"`
	Flag        string `gorm:"not null"`
	Solves      int    `gorm:"not null;default:0"`
	CreatedBy   string `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

type ChallengeDAO struct {
	db *gorm.DB
}

func NewChallengeDAO(db *gorm.DB) *ChallengeDAO {
	return &ChallengeDAO{
		db: db,
	}
}

// SeedIfEmpty inserts seeds only when the table has never held a row, deleted rows included.
func (d *ChallengeDAO) SeedIfEmpty(ctx context.Context, seeds []Challenge) (bool, error) {
	seeded := false

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec("LOCK TABLE challenges IN SHARE ROW EXCLUSIVE MODE").Error; err != nil {
				return err
			}
		}

		var existing int64
		if err := tx.Unscoped().Model(&Challenge{}).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 || len(seeds) == 0 {
			return nil
		}

		if err := tx.Create(&seeds).Error; err != nil {
			return err
		}
		seeded = true

		return nil
	})
	if err != nil {
		return false, err
	}

	return seeded, nil
}

func (d *ChallengeDAO) FindAll(ctx context.Context) ([]Challenge, error) {
	var challenges []Challenge

	result := d.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&challenges)
	if result.Error != nil {
		return nil, result.Error
	}

	return challenges, nil
}

func (d *ChallengeDAO) FindByID(ctx context.Context, id string) (Challenge, error) {
	var challenge Challenge

	result := d.db.WithContext(ctx).First(&challenge, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Challenge{}, ErrChallengeNotFound
		}

		return Challenge{}, result.Error
	}

	return challenge, nil
}

func (d *ChallengeDAO) Insert(ctx context.Context, challenge Challenge) (Challenge, error) {
	result := d.db.WithContext(ctx).Create(&challenge)
	if result.Error != nil {
		return Challenge{}, result.Error
	}

	return challenge, nil
}

// Update writes the editable columns. The solve counter is owned by the ledger and is
// never written here, so an edit cannot clobber a concurrent credit.
func (d *ChallengeDAO) Update(ctx context.Context, challenge Challenge) (Challenge, error) {
	var updated Challenge

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Challenge{}).
			Where("id = ?", challenge.ID).
			Select("title", "description", "category", "points", "flag").
			Updates(&challenge)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrChallengeNotFound
		}

		return tx.First(&updated, "id = ?", challenge.ID).Error
	})
	if err != nil {
		return Challenge{}, err
	}

	return updated, nil
}

// Delete soft-deletes the challenge. Submissions keep pointing at the row.
func (d *ChallengeDAO) Delete(ctx context.Context, id string) error {
	result := d.db.WithContext(ctx).Delete(&Challenge{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrChallengeNotFound
	}

	return nil
}

func (d *ChallengeDAO) Count(ctx context.Context) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&Challenge{}).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}
