package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taskboard/internal/auth"
	"taskboard/internal/config"
	"taskboard/internal/handler"
	"taskboard/internal/middleware"
	"taskboard/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository mocks the user repository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:         "test-secret",
		AccessTokenMins:   30,
		RefreshTokenHours: 24,
	}
}

func setupAuthTest() (*gin.Engine, *MockUserRepository, *config.Config) {
	gin.SetMode(gin.TestMode)
	r := gin.Default()
	mockRepo := new(MockUserRepository)
	cfg := testConfig()
	userHandler := handler.NewUserHandler(mockRepo, cfg)

	r.POST("/auth/signup", userHandler.Signup)
	r.POST("/auth/token", userHandler.Token)
	r.POST("/auth/token/refresh", userHandler.Refresh)

	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	authorized.GET("/auth/me", userHandler.Me)

	return r, mockRepo, cfg
}

func postJSON(router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	jsonBody, _ := json.Marshal(body)
	req, _ := http.NewRequest("POST", path, bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestSignup_Success(t *testing.T) {
	// Arrange
	router, mockRepo, _ := setupAuthTest()

	mockRepo.On("FindByUsername", mock.Anything, "testuser").Return(nil, nil)
	mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, nil)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	// Act
	resp := postJSON(router, "/auth/signup", handler.SignupRequest{
		Username: "testuser",
		Email:    "test@example.com",
		Password: "TestPass123!",
	})

	// Assert
	assert.Equal(t, http.StatusCreated, resp.Code)

	var response handler.UserResponse
	err := json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.NotEmpty(t, response.ID)
	assert.Equal(t, "testuser", response.Username)
	assert.Equal(t, "test@example.com", response.Email)

	// The password never appears in the response
	assert.NotContains(t, resp.Body.String(), "password")
	assert.NotContains(t, resp.Body.String(), "TestPass123!")

	mockRepo.AssertExpectations(t)
}

func TestSignup_WithoutEmail(t *testing.T) {
	// Arrange
	router, mockRepo, _ := setupAuthTest()

	mockRepo.On("FindByUsername", mock.Anything, "testuser2").Return(nil, nil)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	// Act
	resp := postJSON(router, "/auth/signup", handler.SignupRequest{
		Username: "testuser2",
		Password: "TestPass123!",
	})

	// Assert
	assert.Equal(t, http.StatusCreated, resp.Code)

	var response handler.UserResponse
	err := json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "testuser2", response.Username)
	assert.Equal(t, "", response.Email)

	mockRepo.AssertExpectations(t)
}

func TestSignup_DuplicateUsername(t *testing.T) {
	// Arrange
	router, mockRepo, _ := setupAuthTest()

	existing := &model.User{
		ID:             uuid.New(),
		Username:       "existing",
		HashedPassword: "hashed_password",
	}
	mockRepo.On("FindByUsername", mock.Anything, "existing").Return(existing, nil)

	// Act
	resp := postJSON(router, "/auth/signup", handler.SignupRequest{
		Username: "existing",
		Password: "TestPass123!",
	})

	// Assert
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var response map[string][]string
	err := json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, []string{"A user with that username already exists."}, response["username"])

	// No user row created
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSignup_InvalidUsername(t *testing.T) {
	// Arrange
	router, mockRepo, _ := setupAuthTest()

	// Act
	resp := postJSON(router, "/auth/signup", handler.SignupRequest{
		Username: "not a valid name!",
		Password: "TestPass123!",
	})

	// Assert
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var response map[string][]string
	err := json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Contains(t, response["username"][0], "Enter a valid username.")

	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSignup_UsernameLengthCountsRunes(t *testing.T) {
	// Arrange
	router, mockRepo, _ := setupAuthTest()

	// 100 two-byte runes: within the 150-character limit, so the length
	// check must not fire; the character-set check rejects it instead.
	username := strings.Repeat("ü", 100)

	// Act
	resp := postJSON(router, "/auth/signup", handler.SignupRequest{
		Username: username,
		Password: "TestPass123!",
	})

	// Assert
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var response map[string][]string
	err := json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Contains(t, response["username"][0], "Enter a valid username.")

	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSignup_WeakPassword(t *testing.T) {
	// Arrange
	router, mockRepo, _ := setupAuthTest()

	mockRepo.On("FindByUsername", mock.Anything, "testuser").Return(nil, nil)

	// Act
	resp := postJSON(router, "/auth/signup", handler.SignupRequest{
		Username: "testuser",
		Password: "1234567",
	})

	// Assert
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var response map[string][]string
	err := json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Contains(t, response["password"], "This password is too short. It must contain at least 8 characters.")
	assert.Contains(t, response["password"], "This password is entirely numeric.")

	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestToken_Success(t *testing.T) {
	// Arrange
	router, mockRepo, cfg := setupAuthTest()

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("TestPass123!"), bcrypt.DefaultCost)
	testUser := &model.User{
		ID:             uuid.New(),
		Username:       "testuser",
		HashedPassword: string(hashedPassword),
	}
	mockRepo.On("FindByUsername", mock.Anything, "testuser").Return(testUser, nil)

	// Act
	resp := postJSON(router, "/auth/token", handler.TokenRequest{
		Username: "testuser",
		Password: "TestPass123!",
	})

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)

	var response handler.TokenResponse
	err := json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.NotEmpty(t, response.Access)
	assert.NotEmpty(t, response.Refresh)

	// The access token identifies the user
	userID, err := auth.ParseToken(response.Access, cfg.JWTSecret, auth.TokenTypeAccess)
	assert.NoError(t, err)
	assert.Equal(t, testUser.ID.String(), userID)

	mockRepo.AssertExpectations(t)
}

func TestToken_InvalidCredentials(t *testing.T) {
	// Arrange
	router, mockRepo, _ := setupAuthTest()

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.DefaultCost)
	testUser := &model.User{
		ID:             uuid.New(),
		Username:       "testuser",
		HashedPassword: string(hashedPassword),
	}
	mockRepo.On("FindByUsername", mock.Anything, "testuser").Return(testUser, nil)

	// Act
	resp := postJSON(router, "/auth/token", handler.TokenRequest{
		Username: "testuser",
		Password: "wrong_password",
	})

	// Assert
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), "No active account found with the given credentials")

	mockRepo.AssertExpectations(t)
}

func TestToken_UserNotFound(t *testing.T) {
	// Arrange
	router, mockRepo, _ := setupAuthTest()

	mockRepo.On("FindByUsername", mock.Anything, "ghost").Return(nil, nil)

	// Act
	resp := postJSON(router, "/auth/token", handler.TokenRequest{
		Username: "ghost",
		Password: "TestPass123!",
	})

	// Assert
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), "No active account found with the given credentials")

	mockRepo.AssertExpectations(t)
}

func TestRefresh_Success(t *testing.T) {
	// Arrange
	router, _, cfg := setupAuthTest()

	userID := uuid.New()
	refresh, err := auth.GenerateToken(userID.String(), cfg.JWTSecret, auth.TokenTypeRefresh, 24*time.Hour)
	assert.NoError(t, err)

	// Act
	resp := postJSON(router, "/auth/token/refresh", handler.RefreshRequest{Refresh: refresh})

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)

	var response handler.TokenResponse
	err = json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.NotEmpty(t, response.Access)

	parsedID, err := auth.ParseToken(response.Access, cfg.JWTSecret, auth.TokenTypeAccess)
	assert.NoError(t, err)
	assert.Equal(t, userID.String(), parsedID)
}

func TestRefresh_AccessTokenRejected(t *testing.T) {
	// Arrange: an access token is not accepted at the refresh endpoint
	router, _, cfg := setupAuthTest()

	access, err := auth.GenerateToken(uuid.New().String(), cfg.JWTSecret, auth.TokenTypeAccess, time.Hour)
	assert.NoError(t, err)

	// Act
	resp := postJSON(router, "/auth/token/refresh", handler.RefreshRequest{Refresh: access})

	// Assert
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), "Token is invalid or expired")
}

func TestMe_Success(t *testing.T) {
	// Arrange
	router, mockRepo, cfg := setupAuthTest()

	testUser := &model.User{
		ID:       uuid.New(),
		Username: "testuser",
		Email:    "test@example.com",
	}
	mockRepo.On("GetByID", mock.Anything, testUser.ID).Return(testUser, nil)

	access, err := auth.GenerateToken(testUser.ID.String(), cfg.JWTSecret, auth.TokenTypeAccess, time.Hour)
	assert.NoError(t, err)

	req, _ := http.NewRequest("GET", "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+access)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)

	var response handler.UserResponse
	err = json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, testUser.ID.String(), response.ID)
	assert.Equal(t, "testuser", response.Username)
	assert.Equal(t, "test@example.com", response.Email)

	mockRepo.AssertExpectations(t)
}

func TestMe_Unauthenticated(t *testing.T) {
	// Arrange
	router, _, _ := setupAuthTest()

	req, _ := http.NewRequest("GET", "/auth/me", nil)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
