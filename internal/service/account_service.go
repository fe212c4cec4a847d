package service

import (
	"context"
	"log/slog"
	"strings"

	"folio/internal/featureflags"
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/repository"
	"folio/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// AccountService registers and authenticates users.
type AccountService struct {
	users repository.UserRepository
	flags *featureflags.Manager
}

type RegisterInput struct {
	Email    string
	Password string
	// Admin grants RoleAdmin at creation; only bootstrap and seed code set it.
	Admin bool
}

func NewAccountService(users repository.UserRepository, flags *featureflags.Manager) *AccountService {
	return &AccountService{users: users, flags: flags}
}

// RegistrationOpen reports whether visitors may sign up.
func (s *AccountService) RegistrationOpen() bool {
	return s.flags.Enabled(featureflags.OpenRegistration, 0)
}

// Register creates an account with an empty public profile.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	fields := map[string]string{}
	if err := validation.ValidateEmail(email); err != nil {
		fields["email"] = err.Error()
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		fields["password"] = err.Error()
	}
	if len(fields) > 0 {
		return nil, models.NewFieldValidationError(fields)
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("User already exists")
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user := &models.User{
		Email:    email,
		Password: hash,
		Blocked:  new(bool),
		UserData: &models.UserData{},
	}
	if in.Admin {
		user.Roles = []models.UserRole{{Role: models.RoleAdmin}}
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	middleware.Logger.InfoContext(ctx, "user registered", slog.Uint64("user_id", uint64(user.ID)))
	return user, nil
}

// Authenticate checks credentials. Unknown emails and wrong passwords get
// the same answer; blocked accounts are refused after the password check.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); cmpErr != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if user.IsBlocked() {
		return nil, models.NewUnauthorizedError("Account is locked.")
	}
	return user, nil
}
