package v1

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/task-api/internal/auth"
	"github.com/adanyl0v/task-api/internal/services"
)

type Handler interface {
	HandleLogin(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)

	HandleCreateTask(c *gin.Context)
	HandleListTasks(c *gin.Context)
	HandleGetTask(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)

	HandleHealth(c *gin.Context)
}

type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type handlerImpl struct {
	logger zerolog.Logger
	auth   services.AuthService
	tasks  services.TaskService
	tokens TokenValidator
	db     Pinger
}

func New(
	logger zerolog.Logger,
	authService services.AuthService,
	taskService services.TaskService,
	tokens TokenValidator,
	db Pinger,
) Handler {
	useWireFieldNames()
	return &handlerImpl{
		logger: logger,
		auth:   authService,
		tasks:  taskService,
		tokens: tokens,
		db:     db,
	}
}
