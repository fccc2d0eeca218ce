package auth

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockAuthRepository struct {
	mock.Mock
}

func (m *mockAuthRepository) GetByUsername(ctx context.Context, username string) (User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(User)
	return user, args.Error(1)
}

func (m *mockAuthRepository) GetByRefreshToken(ctx context.Context, token string) (User, error) {
	args := m.Called(ctx, token)
	user, _ := args.Get(0).(User)
	return user, args.Error(1)
}

func (m *mockAuthRepository) UpdateRefreshToken(ctx context.Context, userID int, token string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, token, expiresAt)
	return args.Error(0)
}

func (m *mockAuthRepository) ClearRefreshToken(ctx context.Context, userID int) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func testLogEntry() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log.WithField("component", "auth")
}

func newTestAuthService(repo AuthRepository) AuthService {
	return NewAuthService(repo, testTokenManager(15*time.Minute), testLogEntry())
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := new(mockAuthRepository)
	service := newTestAuthService(repo)
	ctx := context.Background()

	stored := User{
		ID:           7,
		Username:     "jdoe",
		PasswordHash: hashPassword(t, "s3cret"),
		FullName:     "John Doe",
	}
	repo.On("GetByUsername", ctx, "jdoe").Return(stored, nil)
	repo.On("UpdateRefreshToken", ctx, 7, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)

	sess, err := service.Login(ctx, "jdoe", "s3cret")
	require.NoError(t, err)
	require.Equal(t, 7, sess.UserID)
	require.Equal(t, "jdoe", sess.Username)
	require.Equal(t, "John Doe", sess.FullName)
	require.NotEmpty(t, sess.AccessToken)
	require.NotEmpty(t, sess.RefreshToken)
	require.True(t, sess.RefreshExpiresAt.After(sess.AccessExpiresAt))

	repo.AssertExpectations(t)
}

func TestAuthService_Login_FullNameFallsBackToUsername(t *testing.T) {
	repo := new(mockAuthRepository)
	service := newTestAuthService(repo)
	ctx := context.Background()

	stored := User{ID: 3, Username: "jdoe", PasswordHash: hashPassword(t, "s3cret")}
	repo.On("GetByUsername", ctx, "jdoe").Return(stored, nil)
	repo.On("UpdateRefreshToken", ctx, 3, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)

	sess, err := service.Login(ctx, "jdoe", "s3cret")
	require.NoError(t, err)
	require.Equal(t, "jdoe", sess.FullName)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := new(mockAuthRepository)
	service := newTestAuthService(repo)
	ctx := context.Background()

	stored := User{ID: 7, Username: "jdoe", PasswordHash: hashPassword(t, "s3cret")}
	repo.On("GetByUsername", ctx, "jdoe").Return(stored, nil)

	_, err := service.Login(ctx, "jdoe", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	repo.AssertNotCalled(t, "UpdateRefreshToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	repo := new(mockAuthRepository)
	service := newTestAuthService(repo)
	ctx := context.Background()

	repo.On("GetByUsername", ctx, "nobody").Return(User{}, ErrUserNotFound)

	_, err := service.Login(ctx, "nobody", "whatever")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_FallbackUserWhenDatabaseDown(t *testing.T) {
	repo := new(mockAuthRepository)
	service := newTestAuthService(repo)
	ctx := context.Background()

	repo.On("GetByUsername", ctx, "itadmin").Return(User{}, errors.New("connection refused"))

	sess, err := service.Login(ctx, "itadmin", "pass123")
	require.NoError(t, err)
	require.Equal(t, 0, sess.UserID)
	require.Equal(t, "itadmin", sess.Username)
	require.Equal(t, "IT Administrator", sess.FullName)
	require.NotEmpty(t, sess.AccessToken)
	require.NotEmpty(t, sess.RefreshToken)

	// Fallback sessions must never touch the refresh token column.
	repo.AssertNotCalled(t, "UpdateRefreshToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_Login_FallbackUserNotInTable(t *testing.T) {
	repo := new(mockAuthRepository)
	service := newTestAuthService(repo)
	ctx := context.Background()

	repo.On("GetByUsername", ctx, "techlead").Return(User{}, ErrUserNotFound)

	sess, err := service.Login(ctx, "techlead", "admin456")
	require.NoError(t, err)
	require.Equal(t, 0, sess.UserID)
	require.Equal(t, "techlead", sess.FullName)
}

func TestAuthService_Login_FallbackWrongPassword(t *testing.T) {
	repo := new(mockAuthRepository)
	service := newTestAuthService(repo)
	ctx := context.Background()

	repo.On("GetByUsername", ctx, "itadmin").Return(User{}, ErrUserNotFound)

	_, err := service.Login(ctx, "itadmin", "not-the-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_StoreFailureDoesNotBlockLogin(t *testing.T) {
	repo := new(mockAuthRepository)
	service := newTestAuthService(repo)
	ctx := context.Background()

	stored := User{ID: 7, Username: "jdoe", PasswordHash: hashPassword(t, "s3cret"), FullName: "John Doe"}
	repo.On("GetByUsername", ctx, "jdoe").Return(stored, nil)
	repo.On("UpdateRefreshToken", ctx, 7, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Return(errors.New("write timeout"))

	sess, err := service.Login(ctx, "jdoe", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, sess.AccessToken)

	repo.AssertExpectations(t)
}

func TestAuthService_Refresh_Success(t *testing.T) {
	repo := new(mockAuthRepository)
	service := newTestAuthService(repo)
	ctx := context.Background()

	expiry := time.Now().UTC().Add(12 * time.Hour)
	stored := User{
		ID:                    7,
		Username:              "jdoe",
		FullName:              "John Doe",
		RefreshTokenExpiresAt: &expiry,
	}
	repo.On("GetByRefreshToken", ctx, "old-token").Return(stored, nil)
	repo.On("UpdateRefreshToken", ctx, 7,
		mock.MatchedBy(func(token string) bool { return token != "" && token != "old-token" }),
		mock.AnythingOfType("time.Time")).Return(nil)

	sess, err := service.Refresh(ctx, "old-token")
	require.NoError(t, err)
	require.Equal(t, "jdoe", sess.Username)
	require.Equal(t, "John Doe", sess.FullName)
	require.NotEmpty(t, sess.AccessToken)
	require.NotEqual(t, "old-token", sess.RefreshToken)

	repo.AssertExpectations(t)
}

func TestAuthService_Refresh_ExpiredToken(t *testing.T) {
	repo := new(mockAuthRepository)
	service := newTestAuthService(repo)
	ctx := context.Background()

	expiry := time.Now().UTC().Add(-time.Minute)
	stored := User{ID: 7, Username: "jdoe", RefreshTokenExpiresAt: &expiry}
	repo.On("GetByRefreshToken", ctx, "stale").Return(stored, nil)

	_, err := service.Refresh(ctx, "stale")
	require.ErrorIs(t, err, ErrInvalidRefreshToken)

	repo.AssertNotCalled(t, "UpdateRefreshToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_Refresh_MissingExpiry(t *testing.T) {
	repo := new(mockAuthRepository)
	service := newTestAuthService(repo)
	ctx := context.Background()

	stored := User{ID: 7, Username: "jdoe"}
	repo.On("GetByRefreshToken", ctx, "orphan").Return(stored, nil)

	_, err := service.Refresh(ctx, "orphan")
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestAuthService_Refresh_UnknownToken(t *testing.T) {
	repo := new(mockAuthRepository)
	service := newTestAuthService(repo)
	ctx := context.Background()

	repo.On("GetByRefreshToken", ctx, "unknown").Return(User{}, ErrUserNotFound)

	_, err := service.Refresh(ctx, "unknown")
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestAuthService_Refresh_RotationFailureFailsRefresh(t *testing.T) {
	repo := new(mockAuthRepository)
	service := newTestAuthService(repo)
	ctx := context.Background()

	expiry := time.Now().UTC().Add(12 * time.Hour)
	stored := User{ID: 7, Username: "jdoe", RefreshTokenExpiresAt: &expiry}
	repo.On("GetByRefreshToken", ctx, "old-token").Return(stored, nil)
	repo.On("UpdateRefreshToken", ctx, 7, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Return(errors.New("write timeout"))

	_, err := service.Refresh(ctx, "old-token")
	require.Error(t, err)
}

func TestAuthService_Logout_ClearsStoredToken(t *testing.T) {
	repo := new(mockAuthRepository)
	service := newTestAuthService(repo)
	ctx := context.Background()

	stored := User{ID: 7, Username: "jdoe"}
	repo.On("GetByRefreshToken", ctx, "current").Return(stored, nil)
	repo.On("ClearRefreshToken", ctx, 7).Return(nil)

	require.NoError(t, service.Logout(ctx, "current"))
	repo.AssertExpectations(t)
}

func TestAuthService_Logout_UnknownTokenIsNoop(t *testing.T) {
	repo := new(mockAuthRepository)
	service := newTestAuthService(repo)
	ctx := context.Background()

	repo.On("GetByRefreshToken", ctx, "ghost").Return(User{}, ErrUserNotFound)

	require.NoError(t, service.Logout(ctx, "ghost"))
	repo.AssertNotCalled(t, "ClearRefreshToken", mock.Anything, mock.Anything)
}

func TestAuthService_Logout_EmptyTokenIsNoop(t *testing.T) {
	repo := new(mockAuthRepository)
	service := newTestAuthService(repo)

	require.NoError(t, service.Logout(context.Background(), ""))
	repo.AssertNotCalled(t, "GetByRefreshToken", mock.Anything, mock.Anything)
}

func TestAuthService_Verify(t *testing.T) {
	repo := new(mockAuthRepository)
	tm := testTokenManager(15 * time.Minute)
	service := NewAuthService(repo, tm, testLogEntry())

	signed, _, err := tm.NewAccessToken(7, "jdoe", "John Doe")
	require.NoError(t, err)

	claims, ok := service.Verify(signed)
	require.True(t, ok)
	require.Equal(t, "jdoe", claims.Username)

	_, ok = service.Verify("garbage")
	require.False(t, ok)
}
