package request

import (
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/vuctf/vuctf-api/internal/domain"
)

type UpdateRoleRequest struct {
	Role string `json:"role"`
}

func (req *UpdateRoleRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Role, validation.Required, validation.In(
			string(domain.RoleUser),
			string(domain.RoleChallengeCreator),
			string(domain.RoleAdmin),
		)),
	)
}

type WithdrawalRequest struct {
	Amount int    `json:"amount"`
	Method string `json:"method"`
}

func (req *WithdrawalRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Amount, validation.Required, validation.Min(1)),
		validation.Field(&req.Method, validation.Required, validation.In(
			string(domain.MethodPayPal),
			string(domain.MethodBankTransfer),
			string(domain.MethodCrypto),
			string(domain.MethodGiftCard),
		)),
	)
}
