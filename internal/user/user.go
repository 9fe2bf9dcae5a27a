package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hbomb79/Reel/pkg/logger"
)

var (
	ErrUserNotFound       = errors.New("user does not exist")
	ErrUserExists         = errors.New("a user with this username or email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")

	log = logger.Get("Users")
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type (
	User struct {
		ID             uuid.UUID `db:"id"`
		Username       string    `db:"username"`
		Email          string    `db:"email"`
		Role           Role      `db:"role"`
		HashedPassword []byte    `db:"password"`
		HashSalt       []byte    `db:"salt"`
		CreatedAt      time.Time `db:"created_at"`
		UpdatedAt      time.Time `db:"updated_at"`
	}

	// Repository is the persistence required by the Service. Insert must
	// fail with ErrUserExists if the username or email (case-insensitive)
	// is already taken, and lookups must fail with ErrUserNotFound.
	Repository interface {
		InsertUser(ctx context.Context, user *User) error
		CountUsers(ctx context.Context) (int, error)
		GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
		GetUserByEmail(ctx context.Context, email string) (*User, error)
		UpdateUserPassword(ctx context.Context, id uuid.UUID, hash []byte, salt []byte) error
	}

	Service struct {
		repo   Repository
		hasher *argonHasher
	}
)

func (user *User) Clone() *User {
	c := *user
	c.HashedPassword = append([]byte(nil), user.HashedPassword...)
	c.HashSalt = append([]byte(nil), user.HashSalt...)

	return &c
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:   repo,
		hasher: newArgon2IdHasher(1, 16, 64*1024, 2, 32),
	}
}

// NormalizeEmail is the form in which emails are stored and compared.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user with the credentials provided. The very first
// user registered is granted the admin role, everybody else is a regular user.
func (service *Service) Register(ctx context.Context, username string, email string, password string) (*User, error) {
	hash, err := service.hasher.GenerateHash([]byte(password), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	count, err := service.repo.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	role := RoleUser
	if count == 0 {
		role = RoleAdmin
	}

	now := time.Now().UTC()
	user := &User{
		ID:             uuid.New(),
		Username:       strings.TrimSpace(username),
		Email:          NormalizeEmail(email),
		Role:           role,
		HashedPassword: hash.hash,
		HashSalt:       hash.salt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := service.repo.InsertUser(ctx, user); err != nil {
		return nil, err
	}

	log.Emit(logger.NEW, "Registered user %s (%s) with role %s\n", user.Username, user.ID, user.Role)
	return user, nil
}

// Authenticate returns the user with the given email IF and ONLY IF the
// raw password provided hashes to the same value as stored for the user.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (service *Service) Authenticate(ctx context.Context, email string, password string) (*User, error) {
	user, err := service.repo.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if err := service.hasher.Compare(user.HashedPassword, user.HashSalt, []byte(password)); err != nil {
		log.Debugf("Password comparison failed for user %s: %v\n", user.ID, err)
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (service *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return service.repo.GetUserByID(ctx, id)
}

// ChangePassword replaces the users password, provided the current
// password supplied is correct.
func (service *Service) ChangePassword(ctx context.Context, id uuid.UUID, currentPassword string, newPassword string) error {
	user, err := service.repo.GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	if err := service.hasher.Compare(user.HashedPassword, user.HashSalt, []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := service.hasher.GenerateHash([]byte(newPassword), nil)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return service.repo.UpdateUserPassword(ctx, id, hash.hash, hash.salt)
}
