package server

import (
	"delivery-marketplace/internal/mockbackend"
	handler "delivery-marketplace/services/backend/handler"
	"delivery-marketplace/services/backend/helpers"

	"github.com/gin-gonic/gin"
)

var _ handler.MarketService = (*mockbackend.Backend)(nil)

// SetupRouter serves the mock backend over HTTP under /api. Every request
// works on its own fork of backend, signed in from its bearer token.
func SetupRouter(backend *mockbackend.Backend) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestIDMiddleware)     // correlate with client logs
	router.Use(RequestLoggerMiddleware) // custom request logging

	helpers.RegisterJSONFieldNames()

	backendHandler := handler.NewBackendHandler(func(token string) handler.MarketService {
		session := backend.Fork()
		session.SetSessionFromToken(token)
		return session
	})

	api := router.Group("/api")
	{
		api.GET("/healthz", backendHandler.HealthHandler)
	}

	accounts := api.Group("/accounts")
	{
		accounts.POST("/token/", backendHandler.LoginHandler)
		accounts.POST("/register/", backendHandler.RegisterHandler)
		accounts.GET("/profile/", backendHandler.ProfileHandler)
		accounts.PUT("/profile/", backendHandler.UpdateProfileHandler)
		accounts.PATCH("/profile/", backendHandler.UpdateProfileHandler)
	}
	api.POST("/token/", backendHandler.LoginHandler)

	jobs := api.Group("/jobs")
	{
		jobs.GET("/", backendHandler.ListJobsHandler)
		jobs.POST("/", backendHandler.CreateJobHandler)
		jobs.GET("/:id/", backendHandler.GetJobHandler)
	}

	bids := api.Group("/bids")
	{
		bids.GET("/", backendHandler.ListBidsHandler)
		bids.POST("/", backendHandler.CreateBidHandler)
	}

	messages := api.Group("/messages")
	{
		messages.GET("/", backendHandler.ListMessagesHandler)
		messages.POST("/", backendHandler.CreateMessageHandler)
	}

	return router
}
