package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"cardregistry/internal/auth"
	apperr "cardregistry/internal/errors"
	"cardregistry/internal/model"
)

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		password      string
		nameField     string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:      "successful registration",
			email:     "Test@Example.com ",
			password:  "password123",
			nameField: "Test User",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:      "user already exists with different case",
			email:     "EXISTING@example.com",
			password:  "password123",
			nameField: "Existing User",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "existing@example.com").Return(&model.User{Email: "existing@example.com"}, nil)
			},
			expectedError: apperr.ErrUserAlreadyExists,
		},
		{
			name:      "unique index trips on concurrent registration",
			email:     "race@example.com",
			password:  "password123",
			nameField: "Race",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "race@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)
			},
			expectedError: apperr.ErrUserAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			jwtService := auth.NewJWTService("test-secret", time.Hour)
			mockTokenStore := new(MockTokenStore)

			service := NewAuthService(mockRepo, jwtService, mockTokenStore)
			user, err := service.Register(context.Background(), tt.email, tt.password, tt.nameField)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.Equal(t, "test@example.com", user.Email)
				assert.Equal(t, tt.nameField, user.Name)
				assert.NotEmpty(t, user.PasswordHash)
				assert.NotEqual(t, tt.password, user.PasswordHash)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	knownUser := &model.User{
		ID:           uuid.New(),
		Email:        "test@example.com",
		PasswordHash: string(hashedPassword),
	}

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "TEST@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(knownUser, nil)
			},
		},
		{
			name:     "invalid credentials - user not found",
			email:    "notfound@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "notfound@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperr.ErrInvalidCredentials,
		},
		{
			name:     "invalid credentials - wrong password",
			email:    "test@example.com",
			password: "wrong-password",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(knownUser, nil)
			},
			expectedError: apperr.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			jwtService := auth.NewJWTService("test-secret", time.Hour)
			service := NewAuthService(mockRepo, jwtService, new(MockTokenStore))

			result, err := service.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Equal(t, "invalid credentials", err.Error())
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				require.NotNil(t, result)
				assert.NotEmpty(t, result.Token)
				assert.WithinDuration(t, time.Now().Add(time.Hour), result.ExpiresAt, 5*time.Second)

				claims, err := jwtService.ValidateToken(result.Token)
				require.NoError(t, err)
				assert.Equal(t, knownUser.ID.String(), claims.Subject)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login_StorageError(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, errors.New("connection reset"))
	service := NewAuthService(mockRepo, auth.NewJWTService("test-secret", time.Hour), new(MockTokenStore))

	_, err := service.Login(context.Background(), "test@example.com", "password123")

	require.Error(t, err)
	assert.NotErrorIs(t, err, apperr.ErrInvalidCredentials)
}

func TestAuthService_Logout(t *testing.T) {
	mockTokenStore := new(MockTokenStore)
	service := NewAuthService(new(MockUserRepository), auth.NewJWTService("test-secret", time.Hour), mockTokenStore).(*authService)
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	claims := &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        "token-id",
		ExpiresAt: jwt.NewNumericDate(now.Add(30 * time.Minute)),
	}}
	mockTokenStore.On("Revoke", mock.Anything, "token-id", 30*time.Minute).Return(nil)

	require.NoError(t, service.Logout(context.Background(), claims))
	mockTokenStore.AssertExpectations(t)
}

func TestAuthService_Logout_MissingClaims(t *testing.T) {
	service := NewAuthService(new(MockUserRepository), auth.NewJWTService("test-secret", time.Hour), new(MockTokenStore))

	assert.ErrorIs(t, service.Logout(context.Background(), nil), apperr.ErrInvalidToken)
	assert.ErrorIs(t, service.Logout(context.Background(), &auth.Claims{}), apperr.ErrInvalidToken)
}

func TestAuthService_Logout_RevocationFailure(t *testing.T) {
	mockTokenStore := new(MockTokenStore)
	service := NewAuthService(new(MockUserRepository), auth.NewJWTService("test-secret", time.Hour), mockTokenStore)

	claims := &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        "token-id",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(30 * time.Minute)),
	}}
	mockTokenStore.On("Revoke", mock.Anything, "token-id", mock.AnythingOfType("time.Duration")).
		Return(errors.New("redis: connection refused"))

	err := service.Logout(context.Background(), claims)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "revoke token")
	assert.NotErrorIs(t, err, apperr.ErrInvalidToken)
}
