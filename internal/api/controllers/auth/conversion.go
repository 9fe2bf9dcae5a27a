package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/hbomb79/Reel/internal/user"
)

type (
	UserDto struct {
		ID        uuid.UUID `json:"id"`
		Username  string    `json:"username"`
		Email     string    `json:"email"`
		Role      user.Role `json:"role"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	TokenDto struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
		User      UserDto   `json:"user"`
	}
)

func NewUserDto(u *user.User) UserDto {
	return UserDto{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
