// Package router đăng ký các route thuộc domain Content: items và assets.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	contenthdl "content_forge/internal/api/content/handler"
	apirouter "content_forge/internal/api/router"
)

// Register đăng ký tất cả route content lên v1.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	contentItemHandler, err := contenthdl.NewContentItemHandler()
	if err != nil {
		return fmt.Errorf("create content item handler: %w", err)
	}
	r.RegisterCRUDRoutes(v1, "/content/items", contentItemHandler, apirouter.ReadWriteConfig)

	contentAssetHandler, err := contenthdl.NewContentAssetHandler()
	if err != nil {
		return fmt.Errorf("create content asset handler: %w", err)
	}
	// business-window phải đăng ký TRƯỚC CRUD để không bị route /:id nuốt mất
	apirouter.RegisterRouteWithMiddleware(v1, "/content/assets", "GET", "/business-window", nil, contentAssetHandler.BusinessWindow)
	r.RegisterCRUDRoutes(v1, "/content/assets", contentAssetHandler, apirouter.ReadWriteConfig)
	apirouter.RegisterRouteWithMiddleware(v1, "/content/assets", "POST", "/:id/approve", nil, contentAssetHandler.Approve)
	apirouter.RegisterRouteWithMiddleware(v1, "/content/assets", "POST", "/:id/unapprove", nil, contentAssetHandler.Unapprove)

	return nil
}
