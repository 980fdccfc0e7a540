package auth

import (
	errors "github.com/frahmantamala/vortex-demo/internal"
	"github.com/frahmantamala/vortex-demo/internal/core/common/validation"
	"github.com/frahmantamala/vortex-demo/internal/user"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks required fields only; credential checks belong to the store.
func (d LoginDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required()
	v.Field("password", d.Password).Required()
	return v.Validate()
}

type LoginResponse struct {
	Success bool            `json:"success"`
	User    user.PublicUser `json:"user"`
}

type LogoutResponse struct {
	Success bool `json:"success"`
}

type MeResponse struct {
	User user.PublicUser `json:"user"`
}
