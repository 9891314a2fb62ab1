package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vuctf/vuctf-api/internal/domain"
)

const (
	DefaultMinWithdrawal  = 1000 // points
	DefaultConversionRate = 100  // points per USD
)

var (
	ErrBelowMinimum        = errors.New("withdrawal below minimum")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidMethod       = errors.New("invalid withdrawal method")
)

type WalletLimits struct {
	MinWithdrawal  int
	ConversionRate int
}

type WalletUserRepository interface {
	FindByID(ctx context.Context, id string) (domain.User, error)
}

type TransactionRepository interface {
	CreateWithdrawal(ctx context.Context, t domain.Transaction, check func(score, withdrawn int) error) (domain.Transaction, int, error)
	FindByUserID(ctx context.Context, userID string) ([]domain.Transaction, error)
	SumWithdrawn(ctx context.Context, userID string) (int, error)
}

// WalletService turns score into a withdrawable balance.
type WalletService struct {
	users        WalletUserRepository
	transactions TransactionRepository
	sessions     SessionRefresher
	now          func() time.Time

	mu     sync.RWMutex
	limits WalletLimits
}

func NewWalletService(users WalletUserRepository, transactions TransactionRepository, sessions SessionRefresher, limits WalletLimits) *WalletService {
	s := &WalletService{
		users:        users,
		transactions: transactions,
		sessions:     sessions,
		now:          time.Now,
	}
	s.SetLimits(limits)

	return s
}

// SetLimits replaces the withdrawal minimum and conversion rate. Non-positive values fall
// back to the defaults.
func (s *WalletService) SetLimits(limits WalletLimits) {
	if limits.MinWithdrawal <= 0 {
		limits.MinWithdrawal = DefaultMinWithdrawal
	}
	if limits.ConversionRate <= 0 {
		limits.ConversionRate = DefaultConversionRate
	}

	s.mu.Lock()
	s.limits = limits
	s.mu.Unlock()
}

func (s *WalletService) Limits() WalletLimits {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.limits
}

// PointsToUSD converts at the fixed rate without rounding.
func (s *WalletService) PointsToUSD(points int) float64 {
	return float64(points) / float64(s.Limits().ConversionRate)
}

// GetAvailableBalance is score minus the pending and completed withdrawals, floored at 0.
// It is a display figure: RequestWithdrawal checks the score, which already has every
// withdrawal deducted.
func (s *WalletService) GetAvailableBalance(ctx context.Context, userID string) (int, error) {
	wallet, err := s.GetWallet(ctx, userID)
	if err != nil {
		return 0, err
	}

	return wallet.AvailableBalance, nil
}

func (s *WalletService) GetWallet(ctx context.Context, userID string) (domain.Wallet, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return domain.Wallet{}, fmt.Errorf("s.users.FindByID -> %w", err)
	}

	withdrawn, err := s.transactions.SumWithdrawn(ctx, userID)
	if err != nil {
		return domain.Wallet{}, fmt.Errorf("s.transactions.SumWithdrawn -> %w", err)
	}

	limits := s.Limits()
	available := user.Score - withdrawn
	if available < 0 {
		available = 0
	}

	return domain.Wallet{
		UserID:           userID,
		Score:            user.Score,
		TotalWithdrawn:   withdrawn,
		AvailableBalance: available,
		AvailableUSD:     s.PointsToUSD(available),
		MinWithdrawal:    limits.MinWithdrawal,
		ConversionRate:   limits.ConversionRate,
	}, nil
}

// GetUserTransactions returns the user's transactions, newest first.
func (s *WalletService) GetUserTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	transactions, err := s.transactions.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.transactions.FindByUserID -> %w", err)
	}

	return transactions, nil
}

// RequestWithdrawal records a pending withdrawal and deducts it from the score. The amount
// is checked against the locked score, so each withdrawal is counted once.
func (s *WalletService) RequestWithdrawal(ctx context.Context, userID string, amount int, method domain.WithdrawalMethod) (domain.Transaction, error) {
	limits := s.Limits()
	if amount < limits.MinWithdrawal {
		return domain.Transaction{}, fmt.Errorf("%w: minimum withdrawal is %d points ($%.2f)",
			ErrBelowMinimum, limits.MinWithdrawal, s.PointsToUSD(limits.MinWithdrawal))
	}
	if !method.IsValid() {
		return domain.Transaction{}, ErrInvalidMethod
	}

	t := domain.Transaction{
		ID:        uuid.NewString(),
		UserID:    userID,
		Amount:    amount,
		Method:    method,
		Status:    domain.TransactionPending,
		CreatedAt: s.now().UTC(),
	}

	created, score, err := s.transactions.CreateWithdrawal(ctx, t, func(score, _ int) error {
		if amount > score {
			return fmt.Errorf("%w: you have %d points available", ErrInsufficientBalance, score)
		}
		return nil
	})
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("s.transactions.CreateWithdrawal -> %w", err)
	}

	zap.L().Info("withdrawal requested",
		zap.String("user_id", userID),
		zap.String("transaction_id", created.ID),
		zap.Int("amount", amount),
		zap.String("method", string(method)),
		zap.Int("score", score),
	)

	if user, err := s.users.FindByID(ctx, userID); err == nil {
		refreshSession(ctx, s.sessions, user)
	}

	return created, nil
}
