package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mesikahq/patient-registry/internal/auth"
	"github.com/mesikahq/patient-registry/internal/middleware"
	"github.com/mesikahq/patient-registry/internal/respond"
)

type Router struct {
	handler        *Handler
	authMiddleware *auth.Middleware
}

func NewRouter(handler *Handler, authService auth.Service) *Router {
	return &Router{
		handler:        handler,
		authMiddleware: auth.NewMiddleware(authService),
	}
}

func (r *Router) SetupRouter(logger *zap.Logger) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.RequestID(),
		middleware.SecurityHeaders(),
		middleware.Recovery(logger),
		middleware.Logger(logger),
		middleware.RateLimit(rate.Every(time.Second), 30),
		middleware.CORS(),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := router.Group("/api/v1")
	{
		api.POST("/autenticacion/login", r.handler.Login)

		pacientes := api.Group("/pacientes")
		pacientes.Use(r.authMiddleware.RequireAuth())
		{
			pacientes.POST("", r.handler.CreatePatient)
			pacientes.GET("", r.handler.ListPatients)
			pacientes.GET("/:id", r.handler.GetPatient)
			pacientes.PUT("/:id", r.handler.UpdatePatient)
			pacientes.DELETE("/:id", r.handler.DeletePatient)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		respond.JSON(c, respond.Fail(http.StatusNotFound, "Recurso no encontrado", nil))
	})

	return router
}
