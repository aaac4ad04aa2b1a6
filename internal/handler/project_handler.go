package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	apierrors "taskboard/internal/errors"
	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const MaxProjectNameLength = 200

type ProjectHandler struct {
	projectRepo *repository.ProjectRepository
	userRepo    repository.UserRepositoryInterface
}

func NewProjectHandler(projectRepo *repository.ProjectRepository, userRepo repository.UserRepositoryInterface) *ProjectHandler {
	return &ProjectHandler{
		projectRepo: projectRepo,
		userRepo:    userRepo,
	}
}

type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type ProjectResponse struct {
	ID          string `json:"id"`
	Owner       string `json:"owner"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

func projectResponse(project *model.Project, ownerUsername string) ProjectResponse {
	return ProjectResponse{
		ID:          project.ID.String(),
		Owner:       ownerUsername,
		Name:        project.Name,
		Description: project.Description,
		CreatedAt:   project.CreatedAt.Format(time.RFC3339),
	}
}

// ownerUsername resolves the caller's username for the read-only owner
// display field. Every visible project is the caller's own.
func (h *ProjectHandler) ownerUsername(c *gin.Context, ownerID uuid.UUID) (string, bool) {
	user, err := h.userRepo.GetByID(c.Request.Context(), ownerID)
	if err != nil || user == nil {
		apierrors.InternalError(c, "Failed to retrieve user information")
		return "", false
	}
	return user.Username, true
}

// Create creates a new project owned by the authenticated user. Any
// caller-supplied owner value is ignored.
func (h *ProjectHandler) Create(c *gin.Context) {
	ownerID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	errs := apierrors.ValidationErrors{}
	if req.Name == "" {
		errs.Add("name", "This field is required.")
	} else if utf8.RuneCountInString(req.Name) > MaxProjectNameLength {
		errs.Add("name", "Ensure this field has no more than 200 characters.")
	}
	if !errs.Empty() {
		errs.Respond(c)
		return
	}

	project := &model.Project{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
	}

	if err := h.projectRepo.Create(c.Request.Context(), project); err != nil {
		apierrors.InternalError(c, "Failed to create project")
		return
	}

	username, ok := h.ownerUsername(c, ownerID)
	if !ok {
		return
	}

	c.JSON(http.StatusCreated, projectResponse(project, username))
}

// List returns the authenticated user's projects, newest first.
func (h *ProjectHandler) List(c *gin.Context) {
	ownerID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	offset, limit := paginationParams(c)
	projects, err := h.projectRepo.GetOwned(c.Request.Context(), ownerID, offset, limit)
	if err != nil {
		apierrors.InternalError(c, "Failed to retrieve projects")
		return
	}

	username, ok := h.ownerUsername(c, ownerID)
	if !ok {
		return
	}

	response := make([]ProjectResponse, len(projects))
	for i := range projects {
		response[i] = projectResponse(&projects[i], username)
	}

	c.JSON(http.StatusOK, response)
}

// GetByID returns a single project. Projects owned by other users are
// reported as not found.
func (h *ProjectHandler) GetByID(c *gin.Context) {
	ownerID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID format")
		return
	}

	project, err := h.projectRepo.GetOwnedByID(c.Request.Context(), projectID, ownerID)
	if err != nil {
		apierrors.InternalError(c, "Failed to retrieve project")
		return
	}
	if project == nil {
		apierrors.NotFound(c, "Project not found")
		return
	}

	username, ok := h.ownerUsername(c, ownerID)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, projectResponse(project, username))
}

// Update modifies a project's name and/or description. Owner and creation
// time are immutable.
func (h *ProjectHandler) Update(c *gin.Context) {
	ownerID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID format")
		return
	}

	project, err := h.projectRepo.GetOwnedByID(c.Request.Context(), projectID, ownerID)
	if err != nil {
		apierrors.InternalError(c, "Failed to retrieve project")
		return
	}
	if project == nil {
		apierrors.NotFound(c, "Project not found")
		return
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	errs := apierrors.ValidationErrors{}
	if req.Name != nil {
		if *req.Name == "" {
			errs.Add("name", "This field may not be blank.")
		} else if utf8.RuneCountInString(*req.Name) > MaxProjectNameLength {
			errs.Add("name", "Ensure this field has no more than 200 characters.")
		}
	}
	if !errs.Empty() {
		errs.Respond(c)
		return
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}

	if err := h.projectRepo.Update(c.Request.Context(), project); err != nil {
		apierrors.InternalError(c, "Failed to update project")
		return
	}

	username, ok := h.ownerUsername(c, ownerID)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, projectResponse(project, username))
}

// Delete removes a project and all its tasks.
func (h *ProjectHandler) Delete(c *gin.Context) {
	ownerID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID format")
		return
	}

	err = h.projectRepo.Delete(c.Request.Context(), projectID, ownerID)
	if errors.Is(err, repository.ErrProjectNotFound) {
		apierrors.NotFound(c, "Project not found")
		return
	}
	if err != nil {
		apierrors.InternalError(c, "Failed to delete project")
		return
	}

	c.Status(http.StatusNoContent)
}

// paginationParams reads optional page/limit query parameters. Without
// them the full result set is returned.
func paginationParams(c *gin.Context) (offset, limit int) {
	offset, limit = -1, -1

	pageStr := c.Query("page")
	limitStr := c.Query("limit")
	if limitStr == "" {
		return offset, limit
	}

	parsedLimit, err := strconv.Atoi(limitStr)
	if err != nil || parsedLimit < 1 {
		return -1, -1
	}
	limit = parsedLimit

	page := 1
	if pageStr != "" {
		if parsedPage, err := strconv.Atoi(pageStr); err == nil && parsedPage > 1 {
			page = parsedPage
		}
	}
	offset = (page - 1) * limit

	return offset, limit
}
