package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrUserEmailExists    = errors.New("user email already exists")
	ErrUserUsernameExists = errors.New("username already taken")
	ErrUserNotFound       = errors.New("user not found")
)

type User struct {
	ID string `json:"id" gorm:"primaryKey;type:varchar(36)"`

	Username string `json:"username" gorm:"unique;not null"`
	Email    string `json:"email" gorm:"unique;not null"`

	Role  string `json:"role" gorm:"not null"` // "user", "challenge_creator" or "admin"
	Score int    `json:"score" gorm:"not null;default:0"`

	Affiliation string     `json:"affiliation"`
	IPAddress   string     `json:"ipAddress"`
	Location    string     `json:"location"`
	LastLogin   *time.Time `json:"lastLogin"`
	LoginCount  int        `json:"loginCount" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"createdAt" gorm:"not null;index"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"not null"`
}

// RolePolicy picks the role of a new user from the number of users that already exist.
type RolePolicy func(existing int64) string

type UserDAO struct {
	db *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{
		db: db,
	}
}

// Insert creates the user with the role chosen by policy. The users table is locked
// against concurrent inserts so the count the policy sees is the count the row lands on.
func (d *UserDAO) Insert(ctx context.Context, user User, policy RolePolicy) (User, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec("LOCK TABLE users IN SHARE ROW EXCLUSIVE MODE").Error; err != nil {
				return err
			}
		}

		var existing int64
		if err := tx.Model(&User{}).Count(&existing).Error; err != nil {
			return err
		}
		user.Role = policy(existing)

		return tx.Create(&user).Error
	})
	if err != nil {
		return User{}, translateUserErr(err)
	}

	return user, nil
}

func (d *UserDAO) FindByID(ctx context.Context, id string) (User, error) {
	var user User

	result := d.db.WithContext(ctx).First(&user, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindByEmail(ctx context.Context, email string) (User, error) {
	var user User

	result := d.db.WithContext(ctx).First(&user, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

// FindAll returns every user in signup order.
func (d *UserDAO) FindAll(ctx context.Context) ([]User, error) {
	var users []User

	result := d.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}

	return users, nil
}

func (d *UserDAO) UpdateRole(ctx context.Context, id string, role string) (User, error) {
	var user User

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&User{}).Where("id = ?", id).Update("role", role)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}

		return tx.First(&user, "id = ?", id).Error
	})
	if err != nil {
		return User{}, err
	}

	return user, nil
}

// RecordLogin bumps the login counter and stamps the login time.
func (d *UserDAO) RecordLogin(ctx context.Context, id string, at time.Time) (User, error) {
	var user User

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&User{}).Where("id = ?", id).Updates(map[string]interface{}{
			"last_login":  at,
			"login_count": gorm.Expr("login_count + 1"),
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}

		return tx.First(&user, "id = ?", id).Error
	})
	if err != nil {
		return User{}, err
	}

	return user, nil
}

// lockUser reads the user row FOR UPDATE inside tx.
func lockUser(tx *gorm.DB, id string) (User, error) {
	var user User

	result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Limit(1).Find(&user, "id = ?", id)
	if result.Error != nil {
		return User{}, result.Error
	}
	if result.RowsAffected == 0 {
		return User{}, ErrUserNotFound
	}

	return user, nil
}

func translateUserErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		switch {
		case strings.Contains(pgErr.Message, `"uni_users_email"`):
			return ErrUserEmailExists
		case strings.Contains(pgErr.Message, `"uni_users_username"`):
			return ErrUserUsernameExists
		}
	}

	return err
}
