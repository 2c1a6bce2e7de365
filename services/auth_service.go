// File: services/auth_service.go
package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	dberrors "hspace-portal/db/errors"
	"hspace-portal/logger"
	"hspace-portal/models"
)

// ErrInvalidCredentials is returned for an unknown user or a wrong password.
var ErrInvalidCredentials = errors.New("invalid username or password")

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{4,20}$`)
	upperPattern    = regexp.MustCompile(`[A-Z]`)
	lowerPattern    = regexp.MustCompile(`[a-z]`)
	digitPattern    = regexp.MustCompile(`[0-9]`)
	specialPattern  = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{}|;:'",./<>?]`)
)

const minPasswordLength = 10

// RegisterInput is a submitted registration form.
type RegisterInput struct {
	Username        string
	Password        string
	PasswordConfirm string
}

// RegisterResult reports the outcome of Register. Errors lists validation
// problems; a nil User with no Errors means the name was taken, which is not
// disclosed to the visitor.
type RegisterResult struct {
	User   *models.User
	Errors []string
}

type AuthService struct {
	users UserStore
	cost  int
}

func NewAuthService(users UserStore) *AuthService {
	return &AuthService{users: users, cost: bcrypt.DefaultCost}
}

// ValidateRegistration lists every problem with the form, in field order.
func ValidateRegistration(in RegisterInput) []string {
	var problems []string
	username := strings.TrimSpace(in.Username)
	if !usernamePattern.MatchString(username) {
		problems = append(problems, "Username must be 4 to 20 letters, digits or underscores.")
	}
	if len(in.Password) < minPasswordLength {
		problems = append(problems, "Password must be at least 10 characters long.")
	}
	if !upperPattern.MatchString(in.Password) {
		problems = append(problems, "Password needs at least one uppercase letter.")
	}
	if !lowerPattern.MatchString(in.Password) {
		problems = append(problems, "Password needs at least one lowercase letter.")
	}
	if !digitPattern.MatchString(in.Password) {
		problems = append(problems, "Password needs at least one digit.")
	}
	if !specialPattern.MatchString(in.Password) {
		problems = append(problems, "Password needs at least one special character.")
	}
	if in.Password != in.PasswordConfirm {
		problems = append(problems, "Passwords do not match.")
	}
	return problems
}

// Register validates the form and creates the account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (RegisterResult, error) {
	if problems := ValidateRegistration(in); len(problems) > 0 {
		return RegisterResult{Errors: problems}, nil
	}

	username := strings.TrimSpace(in.Username)
	_, err := s.users.GetUserByUsername(ctx, username)
	if err == nil {
		logger.Warn.Printf("Register: username %q already taken", username)
		return RegisterResult{}, nil
	}
	if !dberrors.IsEntryNotFound(err) {
		return RegisterResult{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return RegisterResult{}, err
	}

	user := models.User{Username: username, PasswordHash: string(hash)}
	if err := s.users.CreateUser(ctx, &user); err != nil {
		logger.Error.Printf("Register: failed to create user %q: %v", username, err)
		return RegisterResult{}, err
	}
	logger.Info.Printf("Register: created user %d (%s)", user.ID, user.Username)
	return RegisterResult{User: &user}, nil
}

// Authenticate checks a username and password pair.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if dberrors.IsEntryNotFound(err) {
		logger.Warn.Printf("Authenticate: unknown user %q", username)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !checkPasswordHash(password, user.PasswordHash) {
		logger.Warn.Printf("Authenticate: wrong password for user %q", username)
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// UserByID loads the account stored in a session.
func (s *AuthService) UserByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// checkPasswordHash verifies if the provided plain-text password matches the stored hashed password.
func checkPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
