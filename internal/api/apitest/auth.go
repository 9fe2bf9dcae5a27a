package apitest

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/gommon/random"
	"github.com/stretchr/testify/require"
)

// Defines common functions which assist tests with
// creating test users and authenticated test clients

type TestUser struct {
	ID       string
	Username string
	Email    string
	Password string
	Role     string
	Token    string
}

// RegisterUser registers a new user with random credentials, returning
// the user alongside a client authenticated as them. The first user
// registered against an Env is an admin.
func (env *Env) RegisterUser(t *testing.T) (TestUser, *Client) {
	t.Helper()

	suffix := random.String(16, random.Lowercase, random.Numeric)
	user := TestUser{
		Username: fmt.Sprintf("user%s", suffix),
		Email:    fmt.Sprintf("user%s@example.com", suffix),
		Password: random.String(24),
	}

	body := Object(t, env.Client(t).Post("/api/auth/register", map[string]string{
		"username": user.Username,
		"email":    user.Email,
		"password": user.Password,
	}), http.StatusCreated)

	token, ok := body["token"].(string)
	require.True(t, ok, "register response is missing the token")
	registered, ok := body["user"].(map[string]any)
	require.True(t, ok, "register response is missing the user")

	user.ID, _ = registered["id"].(string)
	user.Role, _ = registered["role"].(string)
	user.Token = token
	return user, env.Client(t).WithToken(token)
}

// AdminClient registers the first user of the Env (who is granted the
// admin role) and returns a client authenticated as them.
func (env *Env) AdminClient(t *testing.T) *Client {
	t.Helper()

	user, client := env.RegisterUser(t)
	require.Equal(t, "admin", user.Role, "AdminClient must be called before any other user is registered")
	return client
}
