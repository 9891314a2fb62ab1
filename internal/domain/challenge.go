package domain

import "time"

type Category string

const (
	CategoryWeb       Category = "Web"
	CategoryCrypto    Category = "Crypto"
	CategoryPwn       Category = "Pwn"
	CategoryForensics Category = "Forensics"
	CategoryReverse   Category = "Reverse Engineering"
	CategoryMisc      Category = "Misc"
)

var Categories = []Category{
	CategoryWeb,
	CategoryCrypto,
	CategoryPwn,
	CategoryForensics,
	CategoryReverse,
	CategoryMisc,
}

func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Challenge struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    Category  `json:"category"`
	Points      int       `json:"points"`
	Flag        string    `json:"flag,omitempty"`
	Solves      int       `json:"solves"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Redacted returns a copy without the flag, for callers that must not see it.
func (c Challenge) Redacted() Challenge {
	c.Flag = ""
	return c
}

// ChallengePatch carries the fields of an update. Nil fields are left untouched.
type ChallengePatch struct {
	Title       *string
	Description *string
	Category    *Category
	Points      *int
	Flag        *string
}

func (p ChallengePatch) Apply(c Challenge) Challenge {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Category != nil {
		c.Category = *p.Category
	}
	if p.Points != nil {
		c.Points = *p.Points
	}
	if p.Flag != nil {
		c.Flag = *p.Flag
	}
	return c
}
