package services

import (
	"context"
	"testing"
	"time"

	"imagegallery/apperror"
	"imagegallery/database"
	"imagegallery/logger"
	"imagegallery/storetest"
	"imagegallery/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newAuth(t *testing.T) (*AuthService, *storetest.Users, *database.MemorySessionStore) {
	t.Helper()
	users := storetest.NewUsers()
	sessions := database.NewMemorySessionStore(0)
	t.Cleanup(func() { _ = sessions.Close() })
	return NewAuthService(users, sessions, testSecret, 24*time.Hour, logger.Discard()), users, sessions
}

func TestRegisterAuthenticatesImmediately(t *testing.T) {
	auth, _, _ := newAuth(t)
	ctx := context.Background()

	issued, err := auth.Register(ctx, "  alice ", " Alice@Example.COM ", "pw")
	require.NoError(t, err)
	assert.Equal(t, "alice", issued.User.Username)
	assert.Equal(t, "alice@example.com", issued.User.Email)
	assert.NotEmpty(t, issued.User.ID)
	assert.NotEmpty(t, issued.Token)

	session, user, err := auth.Authenticate(ctx, issued.Token)
	require.NoError(t, err)
	assert.Equal(t, issued.User.ID, session.UserID)
	assert.Equal(t, "alice", user.Username)

	me, err := auth.CurrentUser(ctx, session.UserID)
	require.NoError(t, err)
	assert.Equal(t, issued.User, *me)
}

func TestRegisterStoresHashNotPassword(t *testing.T) {
	auth, users, _ := newAuth(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "alice", "a@example.com", "plain-password")
	require.NoError(t, err)

	stored, err := users.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "plain-password", stored.Password)
	assert.NoError(t, utils.ComparePass("plain-password", stored.Password))
}

func TestRegisterValidation(t *testing.T) {
	auth, _, _ := newAuth(t)
	cases := []struct{ username, email, password string }{
		{"", "a@example.com", "pw"},
		{"alice", "", "pw"},
		{"alice", "a@example.com", ""},
		{"   ", "a@example.com", "pw"},
	}
	for _, tc := range cases {
		_, err := auth.Register(context.Background(), tc.username, tc.email, tc.password)
		assert.True(t, apperror.Is(err, apperror.ValidationError), "%+v", tc)
	}
}

func TestRegisterConflicts(t *testing.T) {
	auth, _, _ := newAuth(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "alice", "alice@example.com", "pw")
	require.NoError(t, err)

	_, err = auth.Register(ctx, "alice", "other@example.com", "pw")
	assert.True(t, apperror.Is(err, apperror.ConflictError))

	_, err = auth.Register(ctx, "bob", "ALICE@example.com", "pw")
	assert.True(t, apperror.Is(err, apperror.ConflictError))

	appErr, _ := apperror.From(err)
	assert.Equal(t, "User already exists", appErr.Message)
}

func TestRegisterStoreFailure(t *testing.T) {
	auth, users, _ := newAuth(t)
	users.Err = storetest.ErrUnavailable

	_, err := auth.Register(context.Background(), "alice", "a@example.com", "pw")
	assert.True(t, apperror.Is(err, apperror.InternalError))
	assert.ErrorIs(t, err, storetest.ErrUnavailable)
}

func TestLoginErrorsAreIndistinguishable(t *testing.T) {
	auth, _, _ := newAuth(t)
	ctx := context.Background()
	_, err := auth.Register(ctx, "u", "u@example.com", "right")
	require.NoError(t, err)

	_, wrongPassword := auth.Login(ctx, "u", "wrong")
	_, unknownUser := auth.Login(ctx, "nonexistent", "x")
	_, empty := auth.Login(ctx, "", "")

	for _, err := range []error{wrongPassword, unknownUser, empty} {
		require.True(t, apperror.Is(err, apperror.AuthError))
	}
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
	assert.Equal(t, "Invalid username or password", unknownUser.Error())
	assert.Equal(t, unknownUser.Error(), empty.Error())
}

func TestLoginCreatesNewSession(t *testing.T) {
	auth, _, sessions := newAuth(t)
	ctx := context.Background()
	registered, err := auth.Register(ctx, "u", "u@example.com", "pw")
	require.NoError(t, err)

	loggedIn, err := auth.Login(ctx, " u ", "pw")
	require.NoError(t, err)
	assert.Equal(t, registered.User, loggedIn.User)
	assert.NotEqual(t, registered.Token, loggedIn.Token)
	assert.Equal(t, 2, sessions.Len())
}

func TestLogoutIsIdempotent(t *testing.T) {
	auth, _, _ := newAuth(t)
	ctx := context.Background()
	issued, err := auth.Register(ctx, "u", "u@example.com", "pw")
	require.NoError(t, err)

	session, _, err := auth.Authenticate(ctx, issued.Token)
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, session.ID))
	_, _, err = auth.Authenticate(ctx, issued.Token)
	assert.True(t, apperror.Is(err, apperror.AuthError))

	assert.NoError(t, auth.Logout(ctx, session.ID))
	assert.NoError(t, auth.Logout(ctx, ""))
}

func TestAuthenticateRejects(t *testing.T) {
	auth, users, _ := newAuth(t)
	ctx := context.Background()
	issued, err := auth.Register(ctx, "u", "u@example.com", "pw")
	require.NoError(t, err)

	t.Run("garbage token", func(t *testing.T) {
		_, _, err := auth.Authenticate(ctx, "garbage")
		assert.True(t, apperror.Is(err, apperror.AuthError))
	})

	t.Run("foreign signature", func(t *testing.T) {
		forged, err := utils.SignedToken("other-secret", "sid", time.Now().Add(time.Hour))
		require.NoError(t, err)
		_, _, err = auth.Authenticate(ctx, forged)
		assert.True(t, apperror.Is(err, apperror.AuthError))
	})

	t.Run("expired session", func(t *testing.T) {
		auth.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
		defer func() { auth.now = time.Now }()
		_, _, err := auth.Authenticate(ctx, issued.Token)
		assert.True(t, apperror.Is(err, apperror.AuthError))
	})

	t.Run("deleted user", func(t *testing.T) {
		users.Delete(issued.User.ID)
		_, _, err := auth.Authenticate(ctx, issued.Token)
		assert.True(t, apperror.Is(err, apperror.AuthError))

		_, err = auth.CurrentUser(ctx, issued.User.ID)
		assert.True(t, apperror.Is(err, apperror.AuthError))
	})
}

func TestCurrentUserAnonymous(t *testing.T) {
	auth, _, _ := newAuth(t)
	_, err := auth.CurrentUser(context.Background(), "")
	assert.True(t, apperror.Is(err, apperror.AuthError))
}
