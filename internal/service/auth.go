package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	pkg_hash "github.com/Skotchmaster/storefront/pkg/hash"
	jwthelp "github.com/Skotchmaster/storefront/pkg/jwt"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/mykafka"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const (
	AccessTTL         = 15 * time.Minute
	RefreshTTL        = 7 * 24 * time.Hour
	MinPasswordLength = 6
)

type AuthService struct {
	Repo          *repo.GormRepo
	JWTSecret     []byte
	RefreshSecret []byte
	Events        mykafka.Publisher

	// AllowAdminRequests enables self-service promotion through RequestAdmin.
	AllowAdminRequests bool
}

// Session is a signed token pair together with the user it belongs to.
type Session struct {
	tokens.Pair
	User *models.User
}

func (s *AuthService) signPair(userID uint, role string) (*tokens.Pair, *models.RefreshToken, error) {
	now := time.Now()
	pair := &tokens.Pair{AccessExp: now.Add(AccessTTL), RefreshExp: now.Add(RefreshTTL)}

	var err error
	if pair.AccessToken, err = tokens.SignAccess(s.JWTSecret, role, userID, pair.AccessExp); err != nil {
		return nil, nil, err
	}
	jti := jwthelp.NewJTI()
	if pair.RefreshToken, err = tokens.SignRefresh(s.RefreshSecret, userID, jti, pair.RefreshExp); err != nil {
		return nil, nil, err
	}

	record := &models.RefreshToken{
		Token:     jwthelp.Sha256Hex(pair.RefreshToken),
		UserID:    userID,
		JTI:       jti,
		ExpiresAt: pair.RefreshExp,
	}
	return pair, record, nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*Session, error) {
	pair, record, err := s.signPair(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.AddRefreshToken(ctx, record); err != nil {
		return nil, err
	}
	return &Session{Pair: *pair, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Signup(ctx context.Context, req transport.SignupRequest) (*Session, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signup")

	email := normalizeEmail(req.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if len(req.Password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
	}

	pwHash, err := pkg_hash.HashPassword(req.Password)
	if err != nil {
		l.Error("signup_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}
	user := &models.User{
		Email:        email,
		PasswordHash: pwHash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         tokens.RoleCustomer,
	}
	if err := s.Repo.CreateUserIfNotExists(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			return nil, fmt.Errorf("%w: user already exists", ErrConflict)
		}
		l.Error("signup_error", "error", err)
		return nil, err
	}

	publish(ctx, s.Events, mykafka.TopicUserEvents, idKey(user.ID), UserEvent{Type: "user_registered", UserID: user.ID, Role: user.Role})
	return s.issue(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest) (*Session, error) {
	email := normalizeEmail(req.Email)
	l := logging.FromContext(ctx).With("svc", "auth.login", "email", email)
	if email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password required", ErrValidation)
	}

	user, err := s.Repo.UserExist(ctx, email, req.Password)
	if err != nil {
		if errors.Is(err, repo.ErrInvalidCredentials) {
			l.Warn("login_failed", "reason", "invalid email or password")
			return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
		}
		return nil, err
	}
	return s.issue(ctx, user)
}

// Refresh rotates a refresh token. The old token is revoked in the same
// transaction that stores the new one.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*tokens.Pair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
	}
	userID, err := tokens.ParseSubject(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	user, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: unknown user", ErrUnauthorized)
		}
		return nil, err
	}

	pair, record, err := s.signPair(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.RotateRefreshToken(ctx, claims.ID, refreshToken, record); err != nil {
		if errors.Is(err, repo.ErrTokenRevoked) || errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("refresh_rejected", "user_id", user.ID, "error", err)
			return nil, fmt.Errorf("%w: refresh token expired or revoked", ErrUnauthorized)
		}
		return nil, err
	}
	return pair, nil
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.Repo.LogOut(ctx, refreshToken)
}

func (s *AuthService) CurrentUser(ctx context.Context, p tokens.Principal) (*models.User, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}
	user, err := s.Repo.GetUserByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, p.UserID)
		}
		return nil, err
	}
	return user, nil
}

// RequestAdmin grants the caller the admin role and issues tokens carrying it.
// It is refused unless AllowAdminRequests is set.
func (s *AuthService) RequestAdmin(ctx context.Context, p tokens.Principal) (*Session, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}
	if !s.AllowAdminRequests {
		return nil, fmt.Errorf("%w: admin requests are disabled", ErrForbidden)
	}
	if p.IsAdmin() {
		return nil, fmt.Errorf("%w: already an admin", ErrValidation)
	}
	user, err := s.Repo.SetUserRole(ctx, p.UserID, tokens.RoleAdmin)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, p.UserID)
		}
		return nil, err
	}

	publish(ctx, s.Events, mykafka.TopicUserEvents, idKey(user.ID), UserEvent{Type: "user_role_changed", UserID: user.ID, Role: user.Role})
	return s.issue(ctx, user)
}

// UserRole returns the role currently stored for the user.
func (s *AuthService) UserRole(ctx context.Context, userID uint) (string, error) {
	user, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

// CreateAdmin creates a back-office account, or promotes an existing one.
func (s *AuthService) CreateAdmin(ctx context.Context, req transport.SignupRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", ErrValidation)
	}

	existing, err := s.Repo.GetUserByEmail(ctx, email)
	if err == nil {
		return s.Repo.SetUserRole(ctx, existing.ID, tokens.RoleAdmin)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if len(req.Password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
	}
	pwHash, err := pkg_hash.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:        email,
		PasswordHash: pwHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         tokens.RoleAdmin,
	}
	if err := s.Repo.CreateUserIfNotExists(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
