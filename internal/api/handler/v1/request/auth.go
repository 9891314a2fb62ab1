package request

import (
	"errors"
	"strings"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	usernameRegexPattern = `^(?=.*[A-Za-z])[A-Za-z0-9_]{3,32}$`
)

var (
	usernameExp = regexp2.MustCompile(usernameRegexPattern, regexp2.None)

	errInvalidUsername = errors.New("the username must be 3 to 32 letters, digits or underscores and contain at least 1 letter")
)

type SignupRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Affiliation string `json:"affiliation,omitempty"`
	Location    string `json:"location,omitempty"`
}

func (req *SignupRequest) Normalize() {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Affiliation = strings.TrimSpace(req.Affiliation)
	req.Location = strings.TrimSpace(req.Location)
}

func (req *SignupRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Username, validation.Required),
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Affiliation, validation.Length(0, 100)),
		validation.Field(&req.Location, validation.Length(0, 100)),
	)
	if err != nil {
		return err
	}

	ok, err := usernameExp.MatchString(req.Username)
	if err != nil || !ok {
		return errInvalidUsername
	}

	return nil
}

type LoginRequest struct {
	Email string `json:"email"`
}

func (req *LoginRequest) Normalize() {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
}

func (req *LoginRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Email, validation.Required, is.Email),
	)
}
