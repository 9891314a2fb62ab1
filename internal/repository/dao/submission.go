package dao

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Submission struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)"`
	UserID      string    `gorm:"not null;index:idx_submissions_user_challenge"`
	ChallengeID string    `gorm:"not null;index:idx_submissions_user_challenge"`
	Flag        string    `gorm:"not null"`
	Correct     bool      `gorm:"not null"`
	SubmittedAt time.Time `gorm:"not null;index"`
}

type AttemptResult struct {
	Submission Submission
	Credited   bool
	Score      int
}

type SubmissionDAO struct {
	db *gorm.DB
}

func NewSubmissionDAO(db *gorm.DB) *SubmissionDAO {
	return &SubmissionDAO{
		db: db,
	}
}

// RecordAttempt appends the attempt and, when it is the user's first correct one for the
// challenge, credits points to the user and bumps the challenge solve counter. All of it
// commits or none of it does. The user row stays locked for the whole transaction, which
// serializes concurrent attempts by the same user.
func (d *SubmissionDAO) RecordAttempt(ctx context.Context, sub Submission, points int) (AttemptResult, error) {
	var res AttemptResult

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockUser(tx, sub.UserID)
		if err != nil {
			return err
		}

		if err := tx.Create(&sub).Error; err != nil {
			return err
		}
		res.Submission = sub
		res.Score = user.Score

		if !sub.Correct {
			return nil
		}

		var earlier int64
		err = tx.Model(&Submission{}).
			Where("user_id = ? AND challenge_id = ? AND correct = ? AND id <> ?", sub.UserID, sub.ChallengeID, true, sub.ID).
			Count(&earlier).Error
		if err != nil {
			return err
		}
		if earlier > 0 {
			return nil
		}

		err = tx.Model(&User{}).Where("id = ?", sub.UserID).
			UpdateColumn("score", gorm.Expr("score + ?", points)).Error
		if err != nil {
			return err
		}

		result := tx.Model(&Challenge{}).Where("id = ?", sub.ChallengeID).
			UpdateColumn("solves", gorm.Expr("solves + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrChallengeNotFound
		}

		res.Credited = true
		res.Score = user.Score + points

		return nil
	})
	if err != nil {
		return AttemptResult{}, err
	}

	return res, nil
}

// FindByUserID returns the user's submissions, newest first.
func (d *SubmissionDAO) FindByUserID(ctx context.Context, userID string) ([]Submission, error) {
	var subs []Submission

	result := d.db.WithContext(ctx).Where("user_id = ?", userID).Order("submitted_at DESC").Find(&subs)
	if result.Error != nil {
		return nil, result.Error
	}

	return subs, nil
}

// FindCorrect returns every correct submission in submission order.
func (d *SubmissionDAO) FindCorrect(ctx context.Context) ([]Submission, error) {
	var subs []Submission

	result := d.db.WithContext(ctx).Where("correct = ?", true).Order("submitted_at ASC").Find(&subs)
	if result.Error != nil {
		return nil, result.Error
	}

	return subs, nil
}

// FindCorrectByChallengeID returns the correct submissions for one challenge, oldest first.
func (d *SubmissionDAO) FindCorrectByChallengeID(ctx context.Context, challengeID string) ([]Submission, error) {
	var subs []Submission

	result := d.db.WithContext(ctx).
		Where("challenge_id = ? AND correct = ?", challengeID, true).
		Order("submitted_at ASC").
		Find(&subs)
	if result.Error != nil {
		return nil, result.Error
	}

	return subs, nil
}

func (d *SubmissionDAO) HasCorrect(ctx context.Context, userID, challengeID string) (bool, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&Submission{}).
		Where("user_id = ? AND challenge_id = ? AND correct = ?", userID, challengeID, true).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}
