package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	apierrors "taskboard/internal/errors"
	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const MaxTaskTitleLength = 200

// dueDateLayout is the wire format for task due dates.
const dueDateLayout = "2006-01-02"

type TaskHandler struct {
	taskRepo    *repository.TaskRepository
	projectRepo *repository.ProjectRepository
}

func NewTaskHandler(taskRepo *repository.TaskRepository, projectRepo *repository.ProjectRepository) *TaskHandler {
	return &TaskHandler{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
	}
}

type CreateTaskRequest struct {
	Project     string `json:"project"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"`
}

type UpdateTaskRequest struct {
	Project     *string `json:"project"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"due_date"`
}

type TaskResponse struct {
	ID          string  `json:"id"`
	Project     string  `json:"project"`
	ProjectName string  `json:"project_name"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"due_date"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func taskResponse(task *model.Task, projectName string) TaskResponse {
	response := TaskResponse{
		ID:          task.ID.String(),
		Project:     task.ProjectID.String(),
		ProjectName: projectName,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		CreatedAt:   task.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   task.UpdatedAt.Format(time.RFC3339),
	}

	if task.DueDate != nil {
		dueDate := task.DueDate.Format(dueDateLayout)
		response.DueDate = &dueDate
	}

	return response
}

// resolveProject validates the project reference for a task create or
// update. A nonexistent project and a project owned by another user are
// both reported as validation errors on the project field, never as a
// permission error, so no task can be attached to a foreign project.
func (h *TaskHandler) resolveProject(c *gin.Context, projectRef string, ownerID uuid.UUID, errs apierrors.ValidationErrors) *model.Project {
	projectID, err := uuid.Parse(projectRef)
	if err != nil {
		errs.Add("project", fmt.Sprintf("%q is not a valid UUID.", projectRef))
		return nil
	}

	project, err := h.projectRepo.GetByID(c.Request.Context(), projectID)
	if err != nil {
		apierrors.InternalError(c, "Failed to retrieve project")
		c.Abort()
		return nil
	}
	if project == nil {
		errs.Add("project", fmt.Sprintf("Invalid pk %q - object does not exist.", projectRef))
		return nil
	}
	if project.OwnerID != ownerID {
		errs.Add("project", "You can only create tasks for your own projects.")
		return nil
	}

	return project
}

func validateStatus(status string, errs apierrors.ValidationErrors) {
	if !model.ValidStatus(status) {
		errs.Add("status", fmt.Sprintf("%q is not a valid choice.", status))
	}
}

func validatePriority(priority string, errs apierrors.ValidationErrors) {
	if !model.ValidPriority(priority) {
		errs.Add("priority", fmt.Sprintf("%q is not a valid choice.", priority))
	}
}

func parseDueDate(value string, errs apierrors.ValidationErrors) *time.Time {
	parsed, err := time.Parse(dueDateLayout, value)
	if err != nil {
		errs.Add("due_date", "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.")
		return nil
	}
	return &parsed
}

// Create creates a task in one of the caller's projects.
func (h *TaskHandler) Create(c *gin.Context) {
	ownerID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	errs := apierrors.ValidationErrors{}

	var project *model.Project
	if req.Project == "" {
		errs.Add("project", "This field is required.")
	} else {
		project = h.resolveProject(c, req.Project, ownerID, errs)
		if c.IsAborted() {
			return
		}
	}

	if req.Title == "" {
		errs.Add("title", "This field is required.")
	} else if utf8.RuneCountInString(req.Title) > MaxTaskTitleLength {
		errs.Add("title", "Ensure this field has no more than 200 characters.")
	}

	status := req.Status
	if status == "" {
		status = model.StatusTodo
	}
	validateStatus(status, errs)

	priority := req.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	validatePriority(priority, errs)

	var dueDate *time.Time
	if req.DueDate != "" {
		dueDate = parseDueDate(req.DueDate, errs)
	}

	if !errs.Empty() {
		errs.Respond(c)
		return
	}

	task := &model.Task{
		ID:          uuid.New(),
		ProjectID:   project.ID,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     dueDate,
	}

	if err := h.taskRepo.Create(c.Request.Context(), task); err != nil {
		apierrors.InternalError(c, "Failed to create task")
		return
	}

	c.JSON(http.StatusCreated, taskResponse(task, project.Name))
}

// List returns tasks from the caller's projects, filterable by project,
// status and priority, searchable over title/description, and orderable
// by the whitelisted fields.
func (h *TaskHandler) List(c *gin.Context) {
	ownerID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	filter := repository.TaskFilter{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Search:   c.Query("search"),
		Ordering: c.Query("ordering"),
	}
	filter.Offset, filter.Limit = paginationParams(c)

	if projectRef := c.Query("project"); projectRef != "" {
		projectID, err := uuid.Parse(projectRef)
		if err != nil {
			apierrors.BadRequest(c, "Invalid project ID format")
			return
		}
		filter.ProjectID = &projectID
	}

	tasks, err := h.taskRepo.List(c.Request.Context(), ownerID, filter)
	if err != nil {
		apierrors.InternalError(c, "Failed to retrieve tasks")
		return
	}

	response := make([]TaskResponse, len(tasks))
	for i := range tasks {
		response[i] = taskResponse(&tasks[i], tasks[i].Project.Name)
	}

	c.JSON(http.StatusOK, response)
}

// GetByID returns a single task. Tasks in other users' projects are
// reported as not found.
func (h *TaskHandler) GetByID(c *gin.Context) {
	ownerID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID format")
		return
	}

	task, err := h.taskRepo.GetOwnedByID(c.Request.Context(), taskID, ownerID)
	if err != nil {
		apierrors.InternalError(c, "Failed to retrieve task")
		return
	}
	if task == nil {
		apierrors.NotFound(c, "Task not found")
		return
	}

	c.JSON(http.StatusOK, taskResponse(task, task.Project.Name))
}

// Update modifies a task. Moving a task to another project is allowed
// only when the caller owns the target project.
func (h *TaskHandler) Update(c *gin.Context) {
	ownerID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID format")
		return
	}

	task, err := h.taskRepo.GetOwnedByID(c.Request.Context(), taskID, ownerID)
	if err != nil {
		apierrors.InternalError(c, "Failed to retrieve task")
		return
	}
	if task == nil {
		apierrors.NotFound(c, "Task not found")
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	errs := apierrors.ValidationErrors{}

	project := &task.Project
	if req.Project != nil {
		project = h.resolveProject(c, *req.Project, ownerID, errs)
		if c.IsAborted() {
			return
		}
	}

	if req.Title != nil {
		if *req.Title == "" {
			errs.Add("title", "This field may not be blank.")
		} else if utf8.RuneCountInString(*req.Title) > MaxTaskTitleLength {
			errs.Add("title", "Ensure this field has no more than 200 characters.")
		}
	}

	if req.Status != nil {
		validateStatus(*req.Status, errs)
	}
	if req.Priority != nil {
		validatePriority(*req.Priority, errs)
	}

	var dueDate *time.Time
	if req.DueDate != nil && *req.DueDate != "" {
		dueDate = parseDueDate(*req.DueDate, errs)
	}

	if !errs.Empty() {
		errs.Respond(c)
		return
	}

	if req.Project != nil {
		task.ProjectID = project.ID
	}
	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.DueDate != nil {
		task.DueDate = dueDate
	}

	if err := h.taskRepo.Update(c.Request.Context(), task); err != nil {
		apierrors.InternalError(c, "Failed to update task")
		return
	}

	c.JSON(http.StatusOK, taskResponse(task, project.Name))
}

// Delete removes a task.
func (h *TaskHandler) Delete(c *gin.Context) {
	ownerID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID format")
		return
	}

	err = h.taskRepo.Delete(c.Request.Context(), taskID, ownerID)
	if errors.Is(err, repository.ErrTaskNotFound) {
		apierrors.NotFound(c, "Task not found")
		return
	}
	if err != nil {
		apierrors.InternalError(c, "Failed to delete task")
		return
	}

	c.Status(http.StatusNoContent)
}
