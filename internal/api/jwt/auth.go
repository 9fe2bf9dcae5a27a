package jwt

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hbomb79/Reel/internal/api/apierr"
	"github.com/hbomb79/Reel/internal/user"
	"github.com/hbomb79/Reel/pkg/logger"
	"github.com/hbomb79/Reel/pkg/sync"
	"github.com/labstack/echo/v4"
)

var (
	ErrAuthTokenMissing = errors.New("request does not contain a bearer token")
	ErrTokenRevoked     = errors.New("token has been revoked")

	log = logger.Get("JWT-Auth")
)

const (
	// DefaultSecret is only used when no secret is configured, and a warning
	// is emitted at startup when it is.
	DefaultSecret = "reel-development-secret-change-me"

	userContextKey  = "user"
	tokenContextKey = "token"
	bearerPrefix    = "Bearer "
)

type (
	AuthConfig struct {
		Secret           string `yaml:"secret" env:"JWT_SECRET"`
		ExpiresIn        string `yaml:"expires_in" env:"JWT_EXPIRES_IN" env-default:"7d"`
		RequireForWrites bool   `yaml:"require_for_writes" env:"AUTH_REQUIRE_FOR_WRITES" env-default:"true"`
	}

	AuthenticatedUser struct {
		UserID    uuid.UUID
		Role      user.Role
		ExpiresAt time.Time
	}

	authTokenClaims struct {
		jwt.RegisteredClaims
		UserID uuid.UUID `json:"id"`
		Role   user.Role `json:"role"`
	}

	jwtAuthProvider struct {
		secret   []byte
		lifespan time.Duration

		// This map (acting as a set) is used to keep track of any token which
		// we have explicitly revoked (for example, when a user logs out).
		//
		// NB: Tokens are removed from this set shortly after they expire, as
		// they would be rejected anyway at that point.
		blacklistedTokens *sync.TypedSyncMap[string, struct{}]
	}
)

// NewJwtAuth creates an authentication provider which issues and verifies
// HS256 tokens signed with the secret provided, valid for lifespan.
func NewJwtAuth(secret []byte, lifespan time.Duration) *jwtAuthProvider {
	return &jwtAuthProvider{
		secret:            secret,
		lifespan:          lifespan,
		blacklistedTokens: new(sync.TypedSyncMap[string, struct{}]),
	}
}

// ParseLifespan parses a token lifetime. In addition to Go durations
// ("90m", "12h") this accepts a number of days or weeks ("7d", "2w"), and
// a bare number of seconds.
func ParseLifespan(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, errors.New("token lifespan must not be empty")
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		return positive(time.Duration(seconds) * time.Second)
	}

	unit := value[len(value)-1]
	if unit == 'd' || unit == 'w' {
		n, err := strconv.Atoi(value[:len(value)-1])
		if err != nil {
			return 0, fmt.Errorf("invalid token lifespan '%s'", value)
		}

		day := 24 * time.Hour
		if unit == 'w' {
			return positive(time.Duration(n) * 7 * day)
		}

		return positive(time.Duration(n) * day)
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid token lifespan '%s': %w", value, err)
	}

	return positive(d)
}

func positive(d time.Duration) (time.Duration, error) {
	if d <= 0 {
		return 0, fmt.Errorf("token lifespan must be positive, got %s", d)
	}

	return d, nil
}

// GenerateToken issues a token for the user provided, returning it
// alongside its expiry.
func (auth *jwtAuthProvider) GenerateToken(u *user.User) (string, time.Time, error) {
	exp := time.Now().Add(auth.lifespan)
	claims := &authTokenClaims{
		UserID: u.ID,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ID:        uuid.NewString(),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(auth.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign auth token: %w", err)
	}

	return token, exp, nil
}

// Middleware authenticates any request carrying a bearer token, storing
// the user in the request context. Requests without a token continue
// anonymously, whereas requests with an invalid token are rejected.
func (auth *jwtAuthProvider) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ec echo.Context) error {
			token, err := bearerToken(ec.Request())
			if errors.Is(err, ErrAuthTokenMissing) {
				return next(ec)
			} else if err != nil {
				return apierr.Unauthorized("malformed authorization header", err)
			}

			authUser, err := auth.validateJWT(token)
			if err != nil {
				return apierr.Unauthorized("invalid or expired token", err)
			}

			ec.Set(userContextKey, authUser)
			ec.Set(tokenContextKey, token)
			return next(ec)
		}
	}
}

// RequireAuth rejects requests which were not authenticated by Middleware.
func (auth *jwtAuthProvider) RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ec echo.Context) error {
			if _, err := auth.GetAuthenticatedUserFromContext(ec); err != nil {
				return apierr.ErrUnauthorized
			}

			return next(ec)
		}
	}
}

// RequireAuthForWrites behaves like RequireAuth, but only for methods
// which modify state. Reads are always permitted.
func (auth *jwtAuthProvider) RequireAuthForWrites() echo.MiddlewareFunc {
	requireAuth := auth.RequireAuth()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		guarded := requireAuth(next)
		return func(ec echo.Context) error {
			switch ec.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(ec)
			}

			return guarded(ec)
		}
	}
}

// RequireRole rejects anonymous requests with a 401, and requests by users
// without the role provided with a 403.
func (auth *jwtAuthProvider) RequireRole(role user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ec echo.Context) error {
			authUser, err := auth.GetAuthenticatedUserFromContext(ec)
			if err != nil {
				return apierr.ErrUnauthorized
			}
			if authUser.Role != role {
				log.Warnf("User %s (role %s) denied access to %s which requires role %s\n", authUser.UserID, authUser.Role, ec.Request().RequestURI, role)
				return apierr.ErrForbidden
			}

			return next(ec)
		}
	}
}

// GetAuthenticatedUserFromContext provides a way for endpoints
// to extract the user's ID and role from the context of their
// request. An error will be returned if no valid user can be found.
func (auth *jwtAuthProvider) GetAuthenticatedUserFromContext(ec echo.Context) (*AuthenticatedUser, error) {
	u, ok := ec.Get(userContextKey).(*AuthenticatedUser)
	if !ok {
		return nil, errors.New("no user found in request context")
	}

	return u, nil
}

// RevokeTokenInContext revokes the token this request was authenticated
// with, if any.
func (auth *jwtAuthProvider) RevokeTokenInContext(ec echo.Context) {
	token, ok := ec.Get(tokenContextKey).(string)
	if !ok {
		return
	}

	authUser, err := auth.GetAuthenticatedUserFromContext(ec)
	if err != nil {
		return
	}

	auth.revokeToken(token, authUser.ExpiresAt)
}

// validateJWT ensures that the provided token is:
//   - signed using the same secret/algorithm as we expect
//   - contains a valid user ID and role
//   - not expired
//   - not blacklisted
func (auth *jwtAuthProvider) validateJWT(token string) (*AuthenticatedUser, error) {
	claims := &authTokenClaims{}
	tkn, err := jwt.ParseWithClaims(
		token,
		claims,
		func(*jwt.Token) (interface{}, error) { return auth.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT: %w", err)
	}
	if tkn == nil || !tkn.Valid {
		return nil, errors.New("failed to verify JWT: token is expired or invalid")
	}

	if claims.ExpiresAt == nil {
		return nil, errors.New("JWT claims are missing an expiry")
	}
	if claims.UserID == uuid.Nil {
		return nil, errors.New("failed to extract user ID from JWT claims: missing")
	}
	if claims.Role != user.RoleUser && claims.Role != user.RoleAdmin {
		return nil, fmt.Errorf("JWT claims contain unknown role '%s'", claims.Role)
	}

	if auth.blacklistedTokens.Has(token) {
		return nil, ErrTokenRevoked
	}

	return &AuthenticatedUser{UserID: claims.UserID, Role: claims.Role, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// revokeToken blacklists the token until shortly after it expires, at
// which point it would be rejected regardless.
func (auth *jwtAuthProvider) revokeToken(token string, expiry time.Time) {
	log.Debugf("Revoking token expiring at %s\n", expiry)
	auth.blacklistedTokens.Store(token, struct{}{})

	time.AfterFunc(time.Until(expiry.Add(time.Second*5)), func() {
		auth.blacklistedTokens.Delete(token)
	})
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", ErrAuthTokenMissing
	}
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", errors.New("authorization header is not a bearer token")
	}

	return strings.TrimSpace(header[len(bearerPrefix):]), nil
}
