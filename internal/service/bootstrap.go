package service

import "github.com/vuctf/vuctf-api/internal/domain"

// BootstrapPolicy grants admin to the first user ever created and the default role to
// everyone after. The repository evaluates it once per insert against the current user count.
func BootstrapPolicy(existing int64) domain.Role {
	if existing == 0 {
		return domain.RoleAdmin
	}
	return domain.RoleUser
}
