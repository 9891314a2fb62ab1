package repository

import (
	"context"
	"fmt"

	"github.com/vuctf/vuctf-api/internal/domain"
	"github.com/vuctf/vuctf-api/internal/repository/dao"
)

type TransactionDAO interface {
	InsertWithdrawal(ctx context.Context, t dao.Transaction, check dao.WithdrawalCheck) (dao.Transaction, int, error)
	FindByUserID(ctx context.Context, userID string) ([]dao.Transaction, error)
	SumWithdrawn(ctx context.Context, userID string) (int, error)
}

type TransactionRepository struct {
	dao TransactionDAO
}

func NewTransactionRepository(dao TransactionDAO) *TransactionRepository {
	return &TransactionRepository{
		dao: dao,
	}
}

// CreateWithdrawal records the withdrawal and deducts it from the score once check passes.
// check sees the locked score and the total already withdrawn. Returns the new score.
func (r *TransactionRepository) CreateWithdrawal(ctx context.Context, t domain.Transaction, check func(score, withdrawn int) error) (domain.Transaction, int, error) {
	created, score, err := r.dao.InsertWithdrawal(ctx, transactionDomainToDao(t), check)
	if err != nil {
		return domain.Transaction{}, 0, fmt.Errorf("r.dao.InsertWithdrawal -> %w", err)
	}

	return transactionDaoToDomain(created), score, nil
}

func (r *TransactionRepository) FindByUserID(ctx context.Context, userID string) ([]domain.Transaction, error) {
	found, err := r.dao.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByUserID -> %w", err)
	}

	transactions := make([]domain.Transaction, len(found))
	for i, t := range found {
		transactions[i] = transactionDaoToDomain(t)
	}

	return transactions, nil
}

func (r *TransactionRepository) SumWithdrawn(ctx context.Context, userID string) (int, error) {
	total, err := r.dao.SumWithdrawn(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.SumWithdrawn -> %w", err)
	}

	return total, nil
}

func transactionDaoToDomain(t dao.Transaction) domain.Transaction {
	return domain.Transaction{
		ID:          t.ID,
		UserID:      t.UserID,
		Amount:      t.Amount,
		Method:      domain.WithdrawalMethod(t.Method),
		Status:      domain.TransactionStatus(t.Status),
		CreatedAt:   t.CreatedAt,
		CompletedAt: t.CompletedAt,
	}
}

func transactionDomainToDao(t domain.Transaction) dao.Transaction {
	return dao.Transaction{
		ID:          t.ID,
		UserID:      t.UserID,
		Amount:      t.Amount,
		Method:      string(t.Method),
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		CompletedAt: t.CompletedAt,
	}
}
