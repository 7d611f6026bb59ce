// Package database - Index bổ sung cho content/schedule (compound) không thể định nghĩa qua model tags.
package database

import (
	"context"
	"strings"

	"content_forge/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateContentAdditionalIndexes tạo các index bổ sung cho content/schedule (compound phức tạp).
// Gọi sau CreateIndexes cho từng collection.
func CreateContentAdditionalIndexes(ctx context.Context, db *mongo.Database) error {
	// content_assets: (contentId, contentType) unique — mỗi content item chỉ có một asset/loại
	contentAssets := db.Collection(global.MongoDB_ColNames.ContentAssets)
	if _, err := contentAssets.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "contentId", Value: 1},
			{Key: "contentType", Value: 1},
		},
		Options: options.Index().SetName("content_asset_content_type").SetUnique(true),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// content_assets: (businessId, scheduledAt) sparse — query cửa sổ lịch của business
	if _, err := contentAssets.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "businessId", Value: 1},
			{Key: "scheduledAt", Value: 1},
		},
		Options: options.Index().SetName("content_asset_business_scheduled").SetSparse(true),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// content_assets: (businessId, approved) — lọc asset đã duyệt khi auto-sequencing
	if _, err := contentAssets.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "businessId", Value: 1},
			{Key: "approved", Value: 1},
		},
		Options: options.Index().SetName("content_asset_business_approved"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// content_items: (businessId, createdAt) — liệt kê content item theo business
	contentItems := db.Collection(global.MongoDB_ColNames.ContentItems)
	if _, err := contentItems.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "businessId", Value: 1},
			{Key: "createdAt", Value: -1},
		},
		Options: options.Index().SetName("content_item_business_created"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	return nil
}

func isIndexExistsError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "already exists") || strings.Contains(s, "duplicate")
}
