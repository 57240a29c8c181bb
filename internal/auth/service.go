// Package auth implements credential validation, password hashing, session
// token issuance and profile updates.
package auth

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"learnhub/internal/apperrors"
	"learnhub/internal/shared"
	"learnhub/internal/store"
)

// Identical message for unknown email and wrong password, so the API cannot
// be used to enumerate accounts.
const invalidCredentialsMessage = "invalid email or password"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Service implements signup, login, current-user lookup and profile updates.
type Service struct {
	users      store.UserStore
	tokens     *TokenManager
	bcryptCost int
}

// NewService creates the auth service.
func NewService(users store.UserStore, tokens *TokenManager, bcryptCost int) *Service {
	return &Service{users: users, tokens: tokens, bcryptCost: bcryptCost}
}

// SignupInput is the payload of POST /api/auth/signup.
type SignupInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// ProfileInput is the partial-update payload of PUT /api/auth/profile.
// Absent fields leave the stored value untouched.
type ProfileInput struct {
	Name      *string   `json:"name"`
	Bio       *string   `json:"bio"`
	Phone     *string   `json:"phone"`
	ImageURL  *string   `json:"imageUrl"`
	Expertise *[]string `json:"expertise"`
}

// Session is an issued token together with its expiry, used by the handler
// to set the cookie.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// Signup validates the input, hashes the password, creates the user and
// issues a session token. The admin role can never be created through this
// path; it is assigned out-of-band.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*shared.PublicUser, *Session, error) {
	if err := validateSignup(&in); err != nil {
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, nil, apperrors.Internal(err)
	}

	user := &shared.User{
		ID:              shared.GenerateUserID(),
		Name:            strings.TrimSpace(in.Name),
		Email:           in.Email,
		PasswordHash:    string(hash),
		Role:            in.Role,
		EnrolledCourses: []string{},
		CreatedAt:       time.Now(),
	}

	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, nil, apperrors.Conflict("an account with this email already exists")
		}
		return nil, nil, apperrors.Internal(err)
	}

	session, err := s.issueSession(user)
	if err != nil {
		return nil, nil, err
	}
	return user.Public(), session, nil
}

// Login verifies the credentials and issues a session token. The failure
// message is byte-identical whether the email is unknown or the password is
// wrong.
func (s *Service) Login(ctx context.Context, email, password string) (*shared.PublicUser, *Session, error) {
	fields := map[string]string{}
	if strings.TrimSpace(email) == "" {
		fields["email"] = "Email is required"
	}
	if strings.TrimSpace(password) == "" {
		fields["password"] = "Password is required"
	}
	if len(fields) > 0 {
		return nil, nil, apperrors.Validation("email and password are required", fields)
	}

	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, apperrors.Auth(invalidCredentialsMessage)
		}
		return nil, nil, apperrors.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, apperrors.Auth(invalidCredentialsMessage)
	}

	session, err := s.issueSession(user)
	if err != nil {
		return nil, nil, err
	}
	return user.Public(), session, nil
}

// CurrentUser returns the public projection of the authenticated user.
func (s *Service) CurrentUser(ctx context.Context, userID string) (*shared.PublicUser, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Internal(err)
	}
	return user.Public(), nil
}

// UpdateProfile applies a partial profile update. Email, role and password
// are never touched here.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*shared.PublicUser, error) {
	fields := map[string]string{}
	if in.Name != nil && len(strings.TrimSpace(*in.Name)) < 2 {
		fields["name"] = "Name must be at least 2 characters"
	}
	if in.Bio != nil && len(*in.Bio) > 500 {
		fields["bio"] = "Bio cannot exceed 500 characters"
	}
	if len(fields) > 0 {
		return nil, apperrors.Validation("invalid profile fields", fields)
	}

	update := store.ProfileUpdate{
		Bio:       in.Bio,
		Phone:     in.Phone,
		ImageURL:  in.ImageURL,
		Expertise: in.Expertise,
	}
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		update.Name = &trimmed
	}

	user, err := s.users.UpdateProfile(ctx, userID, update)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Internal(err)
	}
	return user.Public(), nil
}

func (s *Service) issueSession(user *shared.User) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &Session{Token: token, ExpiresAt: expiresAt}, nil
}

// validateSignup normalizes and validates the signup input in place,
// returning a field-keyed validation error on failure.
func validateSignup(in *SignupInput) error {
	fields := map[string]string{}

	if len(strings.TrimSpace(in.Name)) < 2 {
		fields["name"] = "Name must be at least 2 characters"
	}

	in.Email = normalizeEmail(in.Email)
	if !emailPattern.MatchString(in.Email) {
		fields["email"] = "Please provide a valid email address"
	}

	if len(in.Password) < 6 {
		fields["password"] = "Password must be at least 6 characters"
	}

	// Default the role, then reject anything outside the public set. Admin
	// accounts are only ever created out-of-band.
	if in.Role == "" {
		in.Role = shared.RoleStudent
	}
	if in.Role != shared.RoleStudent && in.Role != shared.RoleEducator {
		fields["role"] = "Invalid role. Must be 'student' or 'educator'"
	}

	if len(fields) > 0 {
		return apperrors.Validation("invalid signup fields", fields)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
