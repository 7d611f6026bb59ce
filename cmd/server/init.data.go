package main

import (
	"context"

	"content_forge/internal/api/initsvc"
	"content_forge/internal/global"
	"content_forge/internal/logger"
)

// InitDefaultData seed dữ liệu mẫu khi server chạy ở INITMODE.
func InitDefaultData() {
	log := logger.GetAppLogger()

	if !global.MongoDB_ServerConfig.InitMode {
		log.Info("INITMODE tắt, bỏ qua seed dữ liệu mẫu")
		return
	}

	log.Info("🔄 [INIT] Starting InitDefaultData...")
	initService, err := initsvc.NewInitService()
	if err != nil {
		log.Fatalf("Failed to initialize init service: %v", err)
	}

	if err := initService.InitSampleData(context.Background()); err != nil {
		log.WithError(err).Error("❌ [INIT] Failed to seed sample data")
		return
	}
	log.Info("✅ [INIT] InitDefaultData completed successfully")
}
