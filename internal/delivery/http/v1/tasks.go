package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/task-api/internal/models"
	"github.com/adanyl0v/task-api/internal/services"
)

type taskResponse struct {
	ID          int64             `json:"id"`
	Title       string            `json:"title"`
	Description *string           `json:"description"`
	Status      models.TaskStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func newTaskResponse(task *models.Task) taskResponse {
	return taskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

type taskPageResponse struct {
	Items      []taskResponse `json:"items"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

func newTaskPageResponse(page *services.TaskPage) taskPageResponse {
	items := make([]taskResponse, len(page.Items))
	for i, task := range page.Items {
		items[i] = newTaskResponse(task)
	}
	return taskPageResponse{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}
}

type createTaskRequest struct {
	Title       string             `json:"title" binding:"required,max=255"`
	Description *string            `json:"description"`
	Status      *models.TaskStatus `json:"status"`
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	var req createTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Debug().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBindingError(errInvalidRequestBody.Error(), err))
		return
	}

	params := services.CreateTaskParams{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Status != nil {
		params.Status = *req.Status
	}

	task, err := h.tasks.CreateTask(c.Request.Context(), params)
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newTaskResponse(task))
}

type listTasksQuery struct {
	Page     int    `form:"page,default=1" binding:"min=1"`
	PageSize int    `form:"page_size,default=10" binding:"min=1,max=100"`
	Status   string `form:"status" binding:"omitempty,oneof=pending in_progress done"`
}

func (h *handlerImpl) HandleListTasks(c *gin.Context) {
	var query listTasksQuery
	err := c.ShouldBindQuery(&query)
	if err != nil {
		h.logger.Debug().
			Err(err).
			Msg("failed to bind query")
		abort(c, newBindingError(errInvalidQueryParams.Error(), err))
		return
	}

	params := services.ListTasksParams{
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if query.Status != "" {
		status, err := models.ParseTaskStatus(query.Status)
		if err != nil {
			abort(c, newUnprocessableError(errInvalidQueryParams.Error(), []services.FieldError{{
				Field:   "status",
				Message: err.Error(),
			}}))
			return
		}
		params.Status = &status
	}

	page, err := h.tasks.ListTasks(c.Request.Context(), params)
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskPageResponse(page))
}

func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	id, ok := h.taskIDParam(c)
	if !ok {
		return
	}

	task, err := h.tasks.GetTask(c.Request.Context(), id)
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

// Absent fields stay untouched. A null description clears it.
type updateTaskRequest struct {
	Title       models.Optional[string]            `json:"title"`
	Description models.Optional[*string]           `json:"description"`
	Status      models.Optional[models.TaskStatus] `json:"status"`
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	id, ok := h.taskIDParam(c)
	if !ok {
		return
	}

	var req updateTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Debug().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBindingError(errInvalidRequestBody.Error(), err))
		return
	}

	task, err := h.tasks.UpdateTask(c.Request.Context(), id, models.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	id, ok := h.taskIDParam(c)
	if !ok {
		return
	}

	err := h.tasks.DeleteTask(c.Request.Context(), id)
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *handlerImpl) taskIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.logger.Debug().
			Err(err).
			Str("id", c.Param("id")).
			Msg("failed to parse task id")
		abort(c, newUnprocessableError(errInvalidPathParam.Error(), []services.FieldError{{
			Field:   "id",
			Message: "must be an integer",
		}}))
		return 0, false
	}
	return id, true
}
