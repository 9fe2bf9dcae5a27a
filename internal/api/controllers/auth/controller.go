package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hbomb79/Reel/internal/api/apierr"
	"github.com/hbomb79/Reel/internal/api/jwt"
	"github.com/hbomb79/Reel/internal/api/util"
	"github.com/hbomb79/Reel/internal/user"
	"github.com/hbomb79/Reel/pkg/logger"
	"github.com/labstack/echo/v4"
)

var log = logger.Get("AuthController")

type (
	RegisterRequest struct {
		Username string `json:"username" validate:"required,min=3,max=50"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8,max=128"`
	}

	LoginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	PasswordRequest struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
	}

	UserService interface {
		Register(ctx context.Context, username string, email string, password string) (*user.User, error)
		Authenticate(ctx context.Context, email string, password string) (*user.User, error)
		Get(ctx context.Context, id uuid.UUID) (*user.User, error)
		ChangePassword(ctx context.Context, id uuid.UUID, currentPassword string, newPassword string) error
	}

	AuthProvider interface {
		GenerateToken(u *user.User) (string, time.Time, error)
		GetAuthenticatedUserFromContext(ec echo.Context) (*jwt.AuthenticatedUser, error)
		RevokeTokenInContext(ec echo.Context)
		RequireAuth() echo.MiddlewareFunc
	}

	Controller struct {
		users        UserService
		authProvider AuthProvider
		validate     *validator.Validate
	}
)

func New(validate *validator.Validate, authProvider AuthProvider, users UserService) *Controller {
	return &Controller{users: users, authProvider: authProvider, validate: validate}
}

func (controller *Controller) SetRoutes(eg *echo.Group) {
	requireAuth := controller.authProvider.RequireAuth()

	eg.POST("/register/", controller.register)
	eg.POST("/login/", controller.login)
	eg.GET("/me/", controller.me, requireAuth)
	eg.PUT("/password/", controller.changePassword, requireAuth)
	eg.POST("/logout/", controller.logout, requireAuth)
}

func (controller *Controller) register(ec echo.Context) error {
	var request RegisterRequest
	if err := util.BindAndValidate(ec, controller.validate, &request); err != nil {
		return err
	}

	u, err := controller.users.Register(ec.Request().Context(), request.Username, request.Email, request.Password)
	if err != nil {
		if errors.Is(err, user.ErrUserExists) {
			return apierr.Validation(err.Error(), nil)
		}

		return err
	}

	return controller.respondWithToken(ec, http.StatusCreated, u)
}

// login exchanges an email and password for a token. Unknown emails and
// incorrect passwords are not distinguished in the response.
func (controller *Controller) login(ec echo.Context) error {
	var request LoginRequest
	if err := util.BindAndValidate(ec, controller.validate, &request); err != nil {
		return err
	}

	u, err := controller.users.Authenticate(ec.Request().Context(), request.Email, request.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			log.Warnf("Failed login attempt for %s\n", request.Email)
			return apierr.Unauthorized("invalid email or password", err)
		}

		return err
	}

	return controller.respondWithToken(ec, http.StatusOK, u)
}

func (controller *Controller) me(ec echo.Context) error {
	u, err := controller.currentUser(ec)
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusOK, NewUserDto(u))
}

// changePassword replaces the password of the current user. The token used
// for this request is revoked, and a fresh one returned in its place.
func (controller *Controller) changePassword(ec echo.Context) error {
	var request PasswordRequest
	if err := util.BindAndValidate(ec, controller.validate, &request); err != nil {
		return err
	}

	authUser, err := controller.authProvider.GetAuthenticatedUserFromContext(ec)
	if err != nil {
		return apierr.ErrUnauthorized
	}

	if err := controller.users.ChangePassword(ec.Request().Context(), authUser.UserID, request.CurrentPassword, request.NewPassword); err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			return apierr.Unauthorized("current password is incorrect", err)
		}

		return err
	}

	u, err := controller.currentUser(ec)
	if err != nil {
		return err
	}

	controller.authProvider.RevokeTokenInContext(ec)
	return controller.respondWithToken(ec, http.StatusOK, u)
}

func (controller *Controller) logout(ec echo.Context) error {
	controller.authProvider.RevokeTokenInContext(ec)
	return ec.NoContent(http.StatusNoContent)
}

// currentUser loads the authenticated user. A token for a user which no
// longer exists is treated as unauthenticated.
func (controller *Controller) currentUser(ec echo.Context) (*user.User, error) {
	authUser, err := controller.authProvider.GetAuthenticatedUserFromContext(ec)
	if err != nil {
		return nil, apierr.ErrUnauthorized
	}

	u, err := controller.users.Get(ec.Request().Context(), authUser.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, apierr.Unauthorized("user no longer exists", err)
		}

		return nil, err
	}

	return u, nil
}

func (controller *Controller) respondWithToken(ec echo.Context, status int, u *user.User) error {
	token, expiresAt, err := controller.authProvider.GenerateToken(u)
	if err != nil {
		return err
	}

	return ec.JSON(status, TokenDto{Token: token, ExpiresAt: expiresAt, User: NewUserDto(u)})
}
