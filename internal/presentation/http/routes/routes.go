// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/mycomize/mycomize-go/internal/application/container"
	"github.com/mycomize/mycomize-go/internal/presentation/http/handlers"
	"github.com/mycomize/mycomize-go/internal/presentation/http/middleware"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(c *container.Container) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	authHandlers := handlers.NewAuthHandlers(c.AuthService, c.Logger, c.PerfTracker)
	growHandlers := handlers.NewGrowHandlers(c.GrowService, c.Logger, c.PerfTracker)
	inventoryHandlers := handlers.NewInventoryHandlers(c.InventoryService, c.Logger, c.PerfTracker)
	tekHandlers := handlers.NewTekHandlers(c.TekService, c.Logger, c.PerfTracker)
	templateHandlers := handlers.NewTemplateHandlers(c.TemplateService, c.Logger, c.PerfTracker)
	calendarHandlers := handlers.NewCalendarHandlers(c.CalendarService, c.Logger, c.PerfTracker)
	iotHandlers := handlers.NewIoTHandlers(c.IoTService, c.Logger, c.PerfTracker)
	paymentHandlers := handlers.NewPaymentHandlers(c.PaymentService, c.OrderService, c.WebhookService, c.Logger, c.PerfTracker)
	sseHandlers := handlers.NewSSEHandlers(c.AuthService, c.Broadcaster, c.Logger, c.PerfTracker)

	api := r.Group("/api/v1")

	// Public endpoints.
	api.POST("/auth/register", authHandlers.Register)
	api.POST("/auth/login", authHandlers.Login)
	api.GET("/payments/plans", paymentHandlers.ListPlans)
	api.GET("/payments/config", paymentHandlers.GetConfig)
	api.POST("/payments/webhook", paymentHandlers.StripeWebhook)

	// The SSE stream authenticates via query parameter inside the handler
	// because EventSource cannot set an Authorization header.
	api.GET("/payments/stream", sseHandlers.StreamPaymentStatus)
	api.GET("/payments/stream/health", sseHandlers.Health)

	// Authenticated endpoints.
	authed := api.Group("")
	authed.Use(middleware.BearerAuthMiddleware(c.AuthService))
	{
		authed.GET("/auth/me", authHandlers.GetProfile)

		authed.GET("/grows", growHandlers.ListGrows)
		authed.POST("/grows", growHandlers.CreateGrow)
		authed.GET("/grows/:id", growHandlers.GetGrow)
		authed.PUT("/grows/:id", growHandlers.UpdateGrow)
		authed.DELETE("/grows/:id", growHandlers.DeleteGrow)
		authed.POST("/grows/:id/inventory/:itemId", growHandlers.AssignInventory)

		authed.GET("/inventory", inventoryHandlers.ListItems)
		authed.GET("/inventory/available", inventoryHandlers.ListAvailable)
		authed.POST("/inventory", inventoryHandlers.CreateItem)
		authed.GET("/inventory/:id", inventoryHandlers.GetItem)
		authed.PUT("/inventory/:id", inventoryHandlers.UpdateItem)
		authed.DELETE("/inventory/:id", inventoryHandlers.DeleteItem)

		authed.GET("/teks", tekHandlers.ListTeks)
		authed.POST("/teks", tekHandlers.CreateTek)
		authed.GET("/teks/:id", tekHandlers.GetTek)
		authed.PUT("/teks/:id", tekHandlers.UpdateTek)
		authed.DELETE("/teks/:id", tekHandlers.DeleteTek)
		authed.POST("/teks/:id/import", tekHandlers.ImportTek)

		authed.GET("/templates", templateHandlers.ListTemplates)
		authed.POST("/templates", templateHandlers.CreateTemplate)
		authed.GET("/templates/:id", templateHandlers.GetTemplate)
		authed.PUT("/templates/:id", templateHandlers.UpdateTemplate)
		authed.DELETE("/templates/:id", templateHandlers.DeleteTemplate)
		authed.POST("/templates/:id/grows", templateHandlers.InstantiateGrow)
		authed.POST("/templates/from-grow/:growId", templateHandlers.CreateFromGrow)

		authed.GET("/calendar/tasks", calendarHandlers.ListTasks)
		authed.POST("/calendar/tasks", calendarHandlers.CreateTask)
		authed.POST("/calendar/tasks/batch", calendarHandlers.CreateTaskBatch)
		authed.PUT("/calendar/tasks/:id", calendarHandlers.UpdateTask)
		authed.DELETE("/calendar/tasks/:id", calendarHandlers.DeleteTask)
		authed.DELETE("/calendar/tasks/parent/:parentTaskId", calendarHandlers.DeleteByParentTask)

		authed.GET("/iot-gateways", iotHandlers.ListGateways)
		authed.POST("/iot-gateways", iotHandlers.CreateGateway)
		authed.GET("/iot-gateways/:id", iotHandlers.GetGateway)
		authed.PUT("/iot-gateways/:id", iotHandlers.UpdateGateway)
		authed.DELETE("/iot-gateways/:id", iotHandlers.DeleteGateway)
		authed.GET("/iot-gateways/:id/entities", iotHandlers.ListEntities)
		authed.POST("/iot-gateways/:id/entities", iotHandlers.CreateEntity)
		authed.PUT("/iot-gateways/:id/entities/:entityId", iotHandlers.UpdateEntity)
		authed.DELETE("/iot-gateways/:id/entities/:entityId", iotHandlers.DeleteEntity)
		authed.POST("/iot-gateways/:id/entities/:entityId/link", iotHandlers.LinkEntity)
		authed.DELETE("/iot-gateways/:id/entities/:entityId/link", iotHandlers.UnlinkEntity)

		authed.POST("/payments/intent", paymentHandlers.CreateIntent)
		authed.GET("/payments/status", paymentHandlers.GetStatus)
		authed.GET("/orders", paymentHandlers.ListOrders)
	}

	return r
}
