package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/stockroom-ims/stockroom/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo     Repository
	validate *validator.Validate
	clock    shared.Clock
	cost     int
}

// NewService constructs a new Service.
func NewService(repo Repository, clock shared.Clock) *Service {
	if clock == nil {
		clock = shared.UTCNow
	}
	return &Service{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		clock:    clock,
		cost:     bcrypt.DefaultCost,
	}
}

// WithCost overrides the bcrypt cost, used by tests.
func (s *Service) WithCost(cost int) *Service {
	s.cost = cost
	return s
}

// Authenticate validates username/password credentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return User{}, shared.ErrInvalidCredentials
		}
		return User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, shared.ErrInvalidCredentials
	}
	return user, nil
}

var registrationMessages = map[string]map[string]string{
	"FirstName":       {"required": "The First Name field is required.", "max": "First Name must be at most 50 characters."},
	"LastName":        {"required": "The Last Name field is required.", "max": "Last Name must be at most 50 characters."},
	"Username":        {"required": "The Username field is required.", "max": "Username must be at most 50 characters."},
	"Password":        {"required": "The Password field is required.", "min": "Password must be at least 6 characters.", "max": "Password must be at most 72 characters."},
	"ConfirmPassword": {"eqfield": "The password and confirmation password do not match."},
}

var registrationKeys = map[string]string{
	"FirstName":       "firstName",
	"LastName":        "lastName",
	"Username":        "username",
	"Password":        "password",
	"ConfirmPassword": "confirmPassword",
}

// Register creates an account. Validation failures come back as
// shared.FieldErrors; a taken username as ErrUsernameTaken.
func (s *Service) Register(ctx context.Context, in Registration) (User, error) {
	in = in.trimmed()
	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return User{}, err
		}
		fe := shared.FieldErrors{}
		for _, fieldErr := range verrs {
			msg := registrationMessages[fieldErr.Field()][fieldErr.Tag()]
			if msg == "" {
				msg = fieldErr.Error()
			}
			fe.Add(registrationKeys[fieldErr.Field()], msg)
		}
		return User{}, fe
	}

	if _, err := s.repo.FindByUsername(ctx, in.Username); err == nil {
		return User{}, ErrUsernameTaken
	} else if !errors.Is(err, shared.ErrNotFound) {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	user := User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: string(hash),
		CreatedAt:    s.clock(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// EnsureDefaultAdmin seeds the default admin account when no account exists.
func (s *Service) EnsureDefaultAdmin(ctx context.Context, logger *slog.Logger) error {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err = s.Register(ctx, Registration{
		FirstName:       DefaultAdminFirstName,
		LastName:        DefaultAdminLastName,
		Username:        DefaultAdminUsername,
		Password:        DefaultAdminPassword,
		ConfirmPassword: DefaultAdminPassword,
	})
	if errors.Is(err, ErrUsernameTaken) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed default admin: %w", err)
	}
	if logger != nil {
		logger.Info("seeded default admin", slog.String("username", DefaultAdminUsername))
	}
	return nil
}

// SessionUser converts an account into its session form.
func SessionUser(u User) shared.SessionUser {
	return shared.SessionUser{ID: u.ID, Username: u.Username, DisplayName: u.FullName()}
}
