package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	taskDTO "github.com/johnquangdev/meeting-whisperer/internal/adapter/dto/task"
	"github.com/johnquangdev/meeting-whisperer/internal/adapter/presenter"
	"github.com/johnquangdev/meeting-whisperer/internal/domain/entities"
	meetingUsecase "github.com/johnquangdev/meeting-whisperer/internal/usecase/meeting"
)

// Task handles task-related HTTP requests
type Task struct {
	svc    meetingUsecase.Tasks
	logger *zap.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(svc meetingUsecase.Tasks, logger *zap.Logger) *Task {
	return &Task{svc: svc, logger: logger}
}

// ListMine handles GET /tasks/mine
// @Summary      List my tasks
// @Description  Gets the tasks assigned to the caller across all meetings
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Status filter (pending/in_progress/completed/cancelled)"
// @Success      200     {object}  task.TaskListResponse  "Assigned tasks"
// @Failure      400     {object}  map[string]interface{}  "Invalid status filter"
// @Failure      401     {object}  map[string]interface{}  "User not authenticated"
// @Router       /tasks/mine [get]
func (h *Task) ListMine(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req taskDTO.ListTasksRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	var status *entities.TaskStatus
	if req.Status != "" {
		s := entities.TaskStatus(req.Status)
		status = &s
	}

	tasks, err := h.svc.ListMine(c.Request().Context(), userID, status)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToTaskListResponse(tasks))
}

// Create handles POST /tasks
// @Summary      Create a task
// @Description  Adds a manual action item to a meeting the caller owns
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      task.CreateTaskRequest  true  "Task creation request"
// @Success      201      {object}  task.TaskResponse  "Task created"
// @Failure      400      {object}  map[string]interface{}  "Invalid request or validation failed"
// @Failure      401      {object}  map[string]interface{}  "User not authenticated"
// @Failure      403      {object}  map[string]interface{}  "Not the meeting owner"
// @Failure      404      {object}  map[string]interface{}  "Meeting or assignee not found"
// @Router       /tasks [post]
func (h *Task) Create(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req taskDTO.CreateTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	meetingID, err := optionalUUID("meeting_id", &req.MeetingID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	assigneeID, err := optionalUUID("assignee_id", req.AssigneeID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	task, err := h.svc.Create(c.Request().Context(), userID, meetingUsecase.CreateTaskInput{
		MeetingID:   *meetingID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		AssigneeID:  assigneeID,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleCreated(h.logger, c, presenter.ToTaskResponse(task))
}

// Update handles PATCH /tasks/:id
// @Summary      Update a task
// @Description  Updates a task as the meeting owner or the assignee; only the owner may reassign it
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                  true  "Task ID"
// @Param        request  body      task.UpdateTaskRequest  true  "Fields to update"
// @Success      200      {object}  task.TaskResponse  "Task updated"
// @Failure      400      {object}  map[string]interface{}  "Invalid request or validation failed"
// @Failure      401      {object}  map[string]interface{}  "User not authenticated"
// @Failure      403      {object}  map[string]interface{}  "Not allowed to update this task"
// @Failure      404      {object}  map[string]interface{}  "Task not found"
// @Router       /tasks/{id} [patch]
func (h *Task) Update(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	taskID, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req taskDTO.UpdateTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	assigneeID, err := optionalUUID("assignee_id", req.AssigneeID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	task, err := h.svc.Update(c.Request().Context(), userID, taskID, meetingUsecase.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		DueDate:     req.DueDate,
		AssigneeID:  assigneeID,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToTaskResponse(task))
}

// Delete handles DELETE /tasks/:id
// @Summary      Delete a task
// @Description  Deletes a task from a meeting the caller owns
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  map[string]interface{}  "Task deleted"
// @Failure      401  {object}  map[string]interface{}  "User not authenticated"
// @Failure      403  {object}  map[string]interface{}  "Not the meeting owner"
// @Failure      404  {object}  map[string]interface{}  "Task not found"
// @Router       /tasks/{id} [delete]
func (h *Task) Delete(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	taskID, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.svc.Delete(c.Request().Context(), userID, taskID); err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, map[string]interface{}{"deleted": taskID.String()})
}
