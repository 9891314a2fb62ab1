package domain

import (
	"time"
)

type WithdrawalMethod string

const (
	MethodPayPal       WithdrawalMethod = "PayPal"
	MethodBankTransfer WithdrawalMethod = "Bank Transfer"
	MethodCrypto       WithdrawalMethod = "Crypto"
	MethodGiftCard     WithdrawalMethod = "Gift Card"
)

func (m WithdrawalMethod) IsValid() bool {
	switch m {
	case MethodPayPal, MethodBankTransfer, MethodCrypto, MethodGiftCard:
		return true
	}
	return false
}

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
)

type Transaction struct {
	ID          string            `json:"id"`
	UserID      string            `json:"userId"`
	Amount      int               `json:"amount"`
	Method      WithdrawalMethod  `json:"method"`
	Status      TransactionStatus `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
	CompletedAt *time.Time        `json:"completedAt,omitempty"`
}

// ReservesBalance reports whether the transaction counts against the available balance.
// Failed withdrawals release their amount.
func (t *Transaction) ReservesBalance() bool {
	return t.Status == TransactionPending || t.Status == TransactionCompleted
}

// Wallet is the balance view of a single user.
type Wallet struct {
	UserID           string  `json:"userId"`
	Score            int     `json:"score"`
	TotalWithdrawn   int     `json:"totalWithdrawn"`
	AvailableBalance int     `json:"availableBalance"`
	AvailableUSD     float64 `json:"availableUsd"`
	MinWithdrawal    int     `json:"minWithdrawal"`
	ConversionRate   int     `json:"conversionRate"`
}
