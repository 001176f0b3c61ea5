package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/auth"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/handlers"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/middleware"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/models"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/repositories"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	employeeHandler *handlers.EmployeeHandler,
	leaveHandler *handlers.LeaveHandler,
	holidayHandler *handlers.HolidayHandler,
	taskHandler *handlers.TaskHandler,
	tokenManager *auth.TokenManager,
	employeeRepo *repositories.EmployeeRepository,
	revokeRepo *repositories.TokenRevocationRepository,
) {
	authRateLimit := middleware.DefaultAuthRateLimit()
	apiRateLimit := middleware.DefaultAPIRateLimit()

	// Public routes
	router.With(middleware.RateLimitByIP(authRateLimit)).Post("/auth/login", authHandler.Login)
	router.With(middleware.RateLimitByIP(authRateLimit)).Post("/auth/refresh", authHandler.RefreshToken)

	// Protected routes
	router.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware(tokenManager, revokeRepo))
		r.Use(middleware.RateLimitByEmployee(apiRateLimit))

		// Session management
		r.Post("/auth/logout", authHandler.Logout)
		r.Post("/auth/change-password", authHandler.ChangePassword)
		r.Post("/auth/totp/setup", authHandler.SetupTOTP)
		r.Post("/auth/totp/verify", authHandler.VerifyTOTP)

		// Any authenticated employee
		r.Get("/me", employeeHandler.Me)
		r.Get("/employees/{id}", employeeHandler.Get)
		r.Get("/employees", employeeHandler.List)
		r.Get("/departments", employeeHandler.ListDepartments)
		r.Get("/positions", employeeHandler.ListPositions)
		r.Get("/holidays", holidayHandler.List)

		// Leave workflow: employees manage their own requests
		r.Post("/leave", leaveHandler.Create)
		r.Get("/leave", leaveHandler.List)
		r.Get("/leave/summary", leaveHandler.Summary)
		r.Get("/leave/{id}", leaveHandler.Get)
		r.Put("/leave/{id}", leaveHandler.Update)
		r.Delete("/leave/{id}", leaveHandler.Delete)

		// Kanban board
		r.Get("/tasks", taskHandler.Board)
		r.Post("/tasks", taskHandler.Create)
		r.Put("/tasks/{id}", taskHandler.Update)
		r.Post("/tasks/{id}/move", taskHandler.Move)
		r.Delete("/tasks/{id}", taskHandler.Delete)

		// Manager and above: leave decisions and statistics
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(employeeRepo, models.RoleManager))
			r.Post("/leave/{id}/approve", leaveHandler.Approve)
			r.Post("/leave/{id}/reject", leaveHandler.Reject)
			r.Get("/leave/{id}/statistics", leaveHandler.Statistics)
		})

		// HR and above: employee updates and holiday calendar
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(employeeRepo, models.RoleHR))
			r.Put("/employees/{id}", employeeHandler.Update)
			r.Post("/holidays", holidayHandler.Create)
			r.Put("/holidays/{id}/active", holidayHandler.SetActive)
			r.Delete("/holidays/{id}", holidayHandler.Delete)
		})

		// Admin only: employee lifecycle and org structure
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(employeeRepo, models.RoleAdmin))
			r.Post("/employees", employeeHandler.Create)
			r.Delete("/employees/{id}", employeeHandler.Delete)
			r.Post("/departments", employeeHandler.CreateDepartment)
			r.Delete("/departments/{id}", employeeHandler.DeleteDepartment)
			r.Post("/positions", employeeHandler.CreatePosition)
			r.Delete("/positions/{id}", employeeHandler.DeletePosition)
		})
	})
}
