package domain

import "time"

type Role string

const (
	RoleUser             Role = "user"
	RoleChallengeCreator Role = "challenge_creator"
	RoleAdmin            Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleChallengeCreator, RoleAdmin:
		return true
	}
	return false
}

// CanManageChallenges reports whether the role may create, edit or delete challenges.
func (r Role) CanManageChallenges() bool {
	return r == RoleAdmin || r == RoleChallengeCreator
}

type User struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Role        Role       `json:"role"`
	Score       int        `json:"score"`
	Affiliation string     `json:"affiliation,omitempty"`
	IPAddress   string     `json:"ipAddress,omitempty"`
	Location    string     `json:"location,omitempty"`
	LastLogin   *time.Time `json:"lastLogin,omitempty"`
	LoginCount  int        `json:"loginCount"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
