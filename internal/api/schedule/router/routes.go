// Package router đăng ký các route thuộc domain Schedule: auto-schedule,
// chỉnh lịch trực tiếp và scheduling session.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	apirouter "content_forge/internal/api/router"
	schedulehdl "content_forge/internal/api/schedule/handler"
)

// Register đăng ký tất cả route schedule lên v1. Không có route CRUD nên
// không dùng đến Router.
func Register(v1 fiber.Router, _ *apirouter.Router) error {
	scheduleHandler, err := schedulehdl.NewScheduleHandler()
	if err != nil {
		return fmt.Errorf("create schedule handler: %w", err)
	}

	// Thao tác ghi lịch trực tiếp (không qua session)
	apirouter.RegisterRouteWithMiddleware(v1, "/schedule", "POST", "/content/:contentId/auto", nil, scheduleHandler.AutoSchedule)
	apirouter.RegisterRouteWithMiddleware(v1, "/schedule", "POST", "/content/:contentId/reset", nil, scheduleHandler.ResetContent)
	apirouter.RegisterRouteWithMiddleware(v1, "/schedule", "PUT", "/assets/:id", nil, scheduleHandler.UpdateSchedule)

	// Vòng đời scheduling session
	apirouter.RegisterRouteWithMiddleware(v1, "/schedule", "POST", "/sessions", nil, scheduleHandler.OpenSession)
	apirouter.RegisterRouteWithMiddleware(v1, "/schedule", "GET", "/sessions/:id", nil, scheduleHandler.GetSession)
	apirouter.RegisterRouteWithMiddleware(v1, "/schedule", "GET", "/sessions/:id/calendar", nil, scheduleHandler.Calendar)
	apirouter.RegisterRouteWithMiddleware(v1, "/schedule", "POST", "/sessions/:id/stage", nil, scheduleHandler.Stage)
	apirouter.RegisterRouteWithMiddleware(v1, "/schedule", "POST", "/sessions/:id/commit", nil, scheduleHandler.Commit)
	apirouter.RegisterRouteWithMiddleware(v1, "/schedule", "POST", "/sessions/:id/reset-pending", nil, scheduleHandler.ResetPending)
	apirouter.RegisterRouteWithMiddleware(v1, "/schedule", "DELETE", "/sessions/:id", nil, scheduleHandler.CloseSession)

	return nil
}
