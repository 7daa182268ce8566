package routes

import (
	"github.com/gin-gonic/gin"

	"arena-chat-service/internal/api/handlers"
	"arena-chat-service/internal/api/middleware"
	"arena-chat-service/internal/session"
)

type Router struct {
	engine        *gin.Engine
	wsHandler     *handlers.WSHandler
	authHandler   *handlers.AuthHandler
	friendHandler *handlers.FriendHandler
	uploadHandler *handlers.UploadHandler // nil when the object store is disabled
	gate          *session.Gate
}

func NewRouter(
	wsHandler *handlers.WSHandler,
	authHandler *handlers.AuthHandler,
	friendHandler *handlers.FriendHandler,
	uploadHandler *handlers.UploadHandler,
	gate *session.Gate,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS())
	engine.Use(middleware.LogAPI())

	return &Router{
		engine:        engine,
		wsHandler:     wsHandler,
		authHandler:   authHandler,
		friendHandler: friendHandler,
		uploadHandler: uploadHandler,
		gate:          gate,
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.engine.Group("/api/v1")

	// The websocket carries its credential as a query parameter; the
	// handler runs the gate itself before upgrading.
	api.GET("/ws", r.wsHandler.HandleWebSocket)

	// Authenticated routes
	auth := api.Group("/")
	auth.Use(middleware.RequireAuth(r.gate))
	{
		friends := auth.Group("/friends")
		{
			friends.POST("/requests", r.friendHandler.Create)
			friends.PUT("/requests/:id/accept", r.friendHandler.Accept)
			friends.PUT("/requests/:id/reject", r.friendHandler.Reject)
		}

		if r.uploadHandler != nil {
			auth.POST("/uploads", r.uploadHandler.Upload)
		}
	}

	// Public routes (no authentication required)
	public := api.Group("/auth")
	{
		public.POST("/login", r.authHandler.Login)
	}
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
