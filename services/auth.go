package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"imagegallery/apperror"
	"imagegallery/database"
	"imagegallery/models"
	"imagegallery/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	msgFieldsRequired     = "All fields are required"
	msgUserExists         = "User already exists"
	msgInvalidCredentials = "Invalid username or password"
	msgUnauthorized       = "Unauthorized"
	msgUserNotFound       = "User not found"
)

type AuthService struct {
	users    UserStore
	sessions SessionStore
	secret   string
	ttl      time.Duration
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewAuthService(users UserStore, sessions SessionStore, secret string, ttl time.Duration, log logrus.FieldLogger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		secret:   secret,
		ttl:      ttl,
		log:      log,
		now:      time.Now,
	}
}

// Issued is the result of a successful register or login.
type Issued struct {
	User      models.UserResponse
	Token     string
	ExpiresAt time.Time
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) (*Issued, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return nil, apperror.Validation(msgFieldsRequired)
	}

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, apperror.Internal("Failed to check existing user", err)
	}
	if exists {
		return nil, apperror.Conflict(msgUserExists, nil)
	}

	hash, err := utils.HashPass(password)
	if err != nil {
		return nil, apperror.Internal("Error hashing password", err)
	}

	user := &models.User{
		Username:  username,
		Email:     email,
		Password:  hash,
		CreatedAt: s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicateUser) {
			return nil, apperror.Conflict(msgUserExists, err)
		}
		return nil, apperror.Internal("Error adding user", err)
	}
	s.log.WithField("username", user.Username).Info("user registered")

	return s.issue(ctx, user)
}

// Login reports the same error for an unknown user and a wrong password.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Issued, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperror.Auth(msgInvalidCredentials)
	}

	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apperror.Auth(msgInvalidCredentials)
	}
	if err != nil {
		return nil, apperror.Internal("Something went wrong, please try again later", err)
	}

	if err := utils.ComparePass(password, user.Password); err != nil {
		if !errors.Is(err, utils.ErrIncorrectPassword) {
			s.log.WithFields(logrus.Fields{"username": username, "error": err.Error()}).Warn("stored password hash unusable")
		}
		return nil, apperror.Auth(msgInvalidCredentials)
	}

	return s.issue(ctx, user)
}

// Logout destroys the session. A session that is already gone is not an
// error.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	err := s.sessions.Delete(ctx, sessionID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return apperror.Internal("Error logging out", err)
	}
	return nil
}

// Authenticate resolves a cookie token to its session and user. The user
// is re-read on every call so deleted accounts lose access immediately.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Session, *models.User, error) {
	sessionID, err := utils.ParseToken(s.secret, token)
	if err != nil {
		return nil, nil, apperror.Auth(msgUnauthorized)
	}
	session, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil, apperror.Auth(msgUnauthorized)
	}
	if err != nil {
		return nil, nil, apperror.Internal("Auth error", err)
	}
	if session.Expired(s.now()) {
		return nil, nil, apperror.Auth(msgUnauthorized)
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil, apperror.Auth(msgUserNotFound)
	}
	if err != nil {
		return nil, nil, apperror.Internal("Server error", err)
	}
	return session, user, nil
}

// CurrentUser returns the public view of the user bound to the session
// the caller's request resolved to.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.UserResponse, error) {
	if userID == "" {
		return nil, apperror.Auth(msgUnauthorized)
	}
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apperror.Auth(msgUserNotFound)
	}
	if err != nil {
		return nil, apperror.Internal("Server error", err)
	}
	view := user.Public()
	return &view, nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*Issued, error) {
	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID.Hex(),
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, apperror.Internal("Error creating session", err)
	}
	token, err := utils.SignedToken(s.secret, session.ID, session.ExpiresAt)
	if err != nil {
		_ = s.sessions.Delete(ctx, session.ID)
		return nil, apperror.Internal("Error creating session", err)
	}
	return &Issued{User: user.Public(), Token: token, ExpiresAt: session.ExpiresAt}, nil
}
