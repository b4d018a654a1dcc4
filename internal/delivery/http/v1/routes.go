package v1

import "github.com/gin-gonic/gin"

const BasePath = "/api/v1"

// RegisterRoutes mounts the API on router. loginMiddlewares run in front of
// the login handler only.
func RegisterRoutes(router gin.IRouter, h Handler, loginMiddlewares ...gin.HandlerFunc) {
	router.GET("/health", h.HandleHealth)

	api := router.Group(BasePath)
	api.POST("/auth/login", append(loginMiddlewares, h.HandleLogin)...)

	tasks := api.Group("/tasks", h.HandleAuthMiddleware)
	tasks.POST("", h.HandleCreateTask)
	tasks.GET("", h.HandleListTasks)
	tasks.GET("/:id", h.HandleGetTask)
	tasks.PUT("/:id", h.HandleUpdateTask)
	tasks.DELETE("/:id", h.HandleDeleteTask)
}
