package handler

import (
	"net/http"
	"regexp"
	"time"
	"unicode/utf8"

	"taskboard/internal/auth"
	"taskboard/internal/config"
	apierrors "taskboard/internal/errors"
	"taskboard/internal/middleware"
	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const MaxUsernameLength = 150

var (
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9@.+_-]+$`)
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

type UserHandler struct {
	repo repository.UserRepositoryInterface
	cfg  *config.Config
}

func NewUserHandler(repo repository.UserRepositoryInterface, cfg *config.Config) *UserHandler {
	return &UserHandler{repo: repo, cfg: cfg}
}

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type TokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// Signup creates a new user account. Validation failures are reported as
// field-keyed messages so the client can attach them to form fields.
func (h *UserHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	errs := apierrors.ValidationErrors{}

	switch {
	case req.Username == "":
		errs.Add("username", "This field is required.")
	case utf8.RuneCountInString(req.Username) > MaxUsernameLength:
		errs.Add("username", "Ensure this field has no more than 150 characters.")
	case !usernameRe.MatchString(req.Username):
		errs.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	default:
		existing, err := h.repo.FindByUsername(c.Request.Context(), req.Username)
		if err != nil {
			apierrors.InternalError(c, "Failed to check username")
			return
		}
		if existing != nil {
			errs.Add("username", "A user with that username already exists.")
		}
	}

	if req.Email != "" {
		if !emailRe.MatchString(req.Email) {
			errs.Add("email", "Enter a valid email address.")
		} else {
			existing, err := h.repo.FindByEmail(c.Request.Context(), req.Email)
			if err != nil {
				apierrors.InternalError(c, "Failed to check email")
				return
			}
			if existing != nil {
				errs.Add("email", "A user with that email already exists.")
			}
		}
	}

	if req.Password == "" {
		errs.Add("password", "This field is required.")
	} else {
		for _, msg := range auth.ValidatePassword(req.Password, req.Username) {
			errs.Add("password", msg)
		}
	}

	if !errs.Empty() {
		errs.Respond(c)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		apierrors.InternalError(c, "Failed to hash password")
		return
	}

	user := &model.User{
		ID:             uuid.New(),
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: string(hash),
	}

	if err := h.repo.Create(c.Request.Context(), user); err != nil {
		apierrors.InternalError(c, "Failed to create user")
		return
	}

	c.JSON(http.StatusCreated, UserResponse{
		ID:       user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
	})
}

// Token exchanges credentials for an access/refresh token pair.
func (h *UserHandler) Token(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	errs := apierrors.ValidationErrors{}
	if req.Username == "" {
		errs.Add("username", "This field is required.")
	}
	if req.Password == "" {
		errs.Add("password", "This field is required.")
	}
	if !errs.Empty() {
		errs.Respond(c)
		return
	}

	user, err := h.repo.FindByUsername(c.Request.Context(), req.Username)
	if err != nil {
		apierrors.InternalError(c, "Failed to look up user")
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)) != nil {
		apierrors.Unauthorized(c, "No active account found with the given credentials")
		return
	}

	access, refresh, err := auth.GenerateTokenPair(
		user.ID.String(),
		h.cfg.JWTSecret,
		time.Duration(h.cfg.AccessTokenMins)*time.Minute,
		time.Duration(h.cfg.RefreshTokenHours)*time.Hour,
	)
	if err != nil {
		apierrors.InternalError(c, "Failed to generate tokens")
		return
	}

	c.JSON(http.StatusOK, TokenResponse{Access: access, Refresh: refresh})
}

// Refresh exchanges a valid refresh token for a new access token.
func (h *UserHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Refresh == "" {
		apierrors.BadRequest(c, "Refresh token is required")
		return
	}

	userID, err := auth.ParseToken(req.Refresh, h.cfg.JWTSecret, auth.TokenTypeRefresh)
	if err != nil {
		apierrors.Unauthorized(c, "Token is invalid or expired")
		return
	}

	access, err := auth.GenerateToken(
		userID,
		h.cfg.JWTSecret,
		auth.TokenTypeAccess,
		time.Duration(h.cfg.AccessTokenMins)*time.Minute,
	)
	if err != nil {
		apierrors.InternalError(c, "Failed to generate token")
		return
	}

	c.JSON(http.StatusOK, TokenResponse{Access: access})
}

// Me returns the authenticated user's profile.
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	user, err := h.repo.GetByID(c.Request.Context(), userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to retrieve user")
		return
	}
	if user == nil {
		apierrors.Unauthorized(c, "User no longer exists")
		return
	}

	c.JSON(http.StatusOK, UserResponse{
		ID:       user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
	})
}

// authenticatedUserID pulls the user ID set by the auth middleware. A
// missing or mistyped value writes the error response and returns false.
func authenticatedUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(middleware.UserIDKey)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return uuid.Nil, false
	}

	userID, ok := value.(uuid.UUID)
	if !ok {
		apierrors.InternalError(c, "Invalid user ID format")
		return uuid.Nil, false
	}

	return userID, true
}
