package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"taskdesk/internal/middleware"
	"taskdesk/internal/model"
	"taskdesk/internal/query"
	"taskdesk/internal/repository"
	"taskdesk/internal/service"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type TaskHandler struct {
	provider repository.Provider
	now      func() time.Time
}

func NewTaskHandler(provider repository.Provider, now func() time.Time) *TaskHandler {
	return &TaskHandler{provider: provider, now: now}
}

// service binds the task service to the caller's store.
func (h *TaskHandler) service(c *gin.Context) *service.TaskService {
	return service.NewTaskService(h.provider.Store(middleware.SessionID(c)), h.now)
}

// TaskRequest is the body for creating or editing a task
type TaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	DueDate     string `json:"due_date" example:"2026-10-23"`
	Importance  string `json:"importance" example:"medium"`
}

// StatusRequest is the body for setting the completion flag
type StatusRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

// DeadlineResponse is the classification of a due date relative to today
type DeadlineResponse struct {
	Status        string `json:"status"`
	DaysRemaining int    `json:"days_remaining"`
	Message       string `json:"message"`
}

// TaskResponse is a task as returned by the API
type TaskResponse struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	DueDate     string           `json:"due_date"`
	Importance  string           `json:"importance"`
	State       string           `json:"state"`
	Completed   bool             `json:"completed"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	Deadline    DeadlineResponse `json:"deadline"`
}

func newTaskResponse(t model.Task, today time.Time) TaskResponse {
	d := query.Classify(t.DueDate, today)
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate.Format(dateLayout),
		Importance:  string(t.Importance),
		State:       string(t.State()),
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		Deadline: DeadlineResponse{
			Status:        string(d.Status),
			DaysRemaining: d.DaysRemaining,
			Message:       d.Message,
		},
	}
}

func (r TaskRequest) input() (service.TaskInput, error) {
	in := service.TaskInput{Title: r.Title, Description: r.Description}
	if r.DueDate != "" {
		due, err := time.Parse(dateLayout, r.DueDate)
		if err != nil {
			return in, errors.New("due_date must be formatted as YYYY-MM-DD")
		}
		in.DueDate = &due
	}
	if r.Importance != "" {
		imp, err := model.ParseImportance(r.Importance)
		if err != nil {
			return in, errors.New("importance must be low, medium or high")
		}
		in.Importance = imp
	}
	return in, nil
}

// respondError maps service and store errors to HTTP responses
func respondError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, query.ErrUnknownSortKey):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	case errors.Is(err, repository.ErrBackendUnavailable):
		log.Printf("❌ Failed to %s: %v", action, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage backend unavailable"})
	default:
		log.Printf("❌ Failed to %s: %v", action, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
	}
}

// Create godoc
// @Summary      Create a task
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        task  body      TaskRequest  true  "Task"
// @Success      201   {object}  TaskResponse
// @Failure      400   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	in, err := req.input()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := h.service(c)
	task, err := svc.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err, "create task")
		return
	}

	c.JSON(http.StatusCreated, newTaskResponse(*task, svc.Today()))
}

// parseFilter reads repeated or comma separated state and importance params
func parseFilter(c *gin.Context) (query.Filter, error) {
	var f query.Filter
	for _, s := range splitParams(c.QueryArray("state")) {
		switch st := model.State(strings.ToLower(s)); st {
		case model.StatePending, model.StateCompleted:
			f.States = append(f.States, st)
		default:
			return f, errors.New("state must be pending or completed")
		}
	}
	for _, s := range splitParams(c.QueryArray("importance")) {
		imp, err := model.ParseImportance(s)
		if err != nil {
			return f, errors.New("importance must be low, medium or high")
		}
		f.Importances = append(f.Importances, imp)
	}
	return f, nil
}

func splitParams(values []string) []string {
	var out []string
	for _, v := range values {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// List godoc
// @Summary      List tasks
// @Description  Filters by state and importance, then sorts. Each item carries its deadline classification.
// @Tags         Tasks
// @Produce      json
// @Param        state       query     []string  false  "pending, completed"  collectionFormat(multi)
// @Param        importance  query     []string  false  "low, medium, high"   collectionFormat(multi)
// @Param        sort        query     string    false  "newest, oldest, deadline, importance"
// @Success      200         {array}   TaskResponse
// @Failure      400         {object}  map[string]string
// @Failure      503         {object}  map[string]string
// @Router       /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	key, err := query.ParseSortKey(c.Query("sort"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := h.service(c)
	tasks, err := svc.List(c.Request.Context(), f, key)
	if err != nil {
		respondError(c, err, "list tasks")
		return
	}

	today := svc.Today()
	response := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		response = append(response, newTaskResponse(t, today))
	}
	c.JSON(http.StatusOK, response)
}

// GetByID godoc
// @Summary      Get a task
// @Tags         Tasks
// @Produce      json
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  TaskResponse
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	svc := h.service(c)
	task, err := svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "retrieve task")
		return
	}
	c.JSON(http.StatusOK, newTaskResponse(*task, svc.Today()))
}

// Update godoc
// @Summary      Edit a task
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        id    path      string       true  "Task ID"
// @Param        task  body      TaskRequest  true  "Task"
// @Success      200   {object}  TaskResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	in, err := req.input()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := h.service(c)
	task, err := svc.Edit(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err, "update task")
		return
	}
	c.JSON(http.StatusOK, newTaskResponse(*task, svc.Today()))
}

// Toggle godoc
// @Summary      Toggle completion
// @Tags         Tasks
// @Produce      json
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  TaskResponse
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id}/toggle [post]
func (h *TaskHandler) Toggle(c *gin.Context) {
	svc := h.service(c)
	task, err := svc.Toggle(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "toggle task")
		return
	}
	c.JSON(http.StatusOK, newTaskResponse(*task, svc.Today()))
}

// SetStatus godoc
// @Summary      Set completion
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        id      path      string         true  "Task ID"
// @Param        status  body      StatusRequest  true  "Status"
// @Success      200     {object}  TaskResponse
// @Failure      400     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Router       /tasks/{id}/status [patch]
func (h *TaskHandler) SetStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	svc := h.service(c)
	task, err := svc.SetStatus(c.Request.Context(), c.Param("id"), *req.Completed)
	if err != nil {
		respondError(c, err, "update task status")
		return
	}
	c.JSON(http.StatusOK, newTaskResponse(*task, svc.Today()))
}

// Delete godoc
// @Summary      Delete a task
// @Description  Deleting an unknown id succeeds.
// @Tags         Tasks
// @Param        id   path  string  true  "Task ID"
// @Success      204
// @Failure      503  {object}  map[string]string
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.service(c).Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "delete task")
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearCompleted godoc
// @Summary      Delete every completed task
// @Tags         Tasks
// @Produce      json
// @Success      200  {object}  map[string]int
// @Router       /tasks/clear-completed [post]
func (h *TaskHandler) ClearCompleted(c *gin.Context) {
	n, err := h.service(c).ClearCompleted(c.Request.Context())
	if err != nil {
		respondError(c, err, "clear completed tasks")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

// DeleteAll godoc
// @Summary      Delete every task
// @Tags         Tasks
// @Produce      json
// @Success      200  {object}  map[string]int
// @Router       /tasks [delete]
func (h *TaskHandler) DeleteAll(c *gin.Context) {
	n, err := h.service(c).DeleteAll(c.Request.Context())
	if err != nil {
		respondError(c, err, "delete tasks")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}
