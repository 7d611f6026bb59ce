package contenthdl

import (
	"fmt"
	"time"

	basehdl "content_forge/internal/api/base/handler"
	businesssvc "content_forge/internal/api/business/service"
	contentdto "content_forge/internal/api/content/dto"
	contentmodels "content_forge/internal/api/content/models"
	contentsvc "content_forge/internal/api/content/service"
	"content_forge/internal/common"
	"content_forge/internal/utility"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContentAssetHandler xử lý các request liên quan đến Content Asset
type ContentAssetHandler struct {
	*basehdl.BaseHandler[contentmodels.ContentAsset, contentdto.ContentAssetCreateInput, contentdto.ContentAssetUpdateInput]
	ContentAssetService *contentsvc.ContentAssetService
	ContentItemService  *contentsvc.ContentItemService
	BusinessService     *businesssvc.BusinessService
}

// NewContentAssetHandler tạo mới ContentAssetHandler
func NewContentAssetHandler() (*ContentAssetHandler, error) {
	contentAssetService, err := contentsvc.NewContentAssetService()
	if err != nil {
		return nil, fmt.Errorf("failed to create content asset service: %v", err)
	}
	contentItemService, err := contentsvc.NewContentItemService()
	if err != nil {
		return nil, fmt.Errorf("failed to create content item service: %v", err)
	}
	businessService, err := businesssvc.NewBusinessService()
	if err != nil {
		return nil, fmt.Errorf("failed to create business service: %v", err)
	}
	hdl := &ContentAssetHandler{
		ContentAssetService: contentAssetService,
		ContentItemService:  contentItemService,
		BusinessService:     businessService,
	}
	hdl.BaseHandler = basehdl.NewBaseHandler[contentmodels.ContentAsset, contentdto.ContentAssetCreateInput, contentdto.ContentAssetUpdateInput](contentAssetService.BaseServiceMongoImpl)
	hdl.SetFilterOptions(basehdl.FilterOptions{
		DeniedFields:     []string{"password", "token", "secret", "key", "hash"},
		AllowedOperators: []string{"$eq", "$gt", "$gte", "$lt", "$lte", "$in", "$nin", "$exists"},
		MaxFields:        10,
	})
	return hdl, nil
}

// Approve duyệt nội dung một asset. Chỉ asset đã duyệt mới được lên lịch.
func (h *ContentAssetHandler) Approve(c fiber.Ctx) error {
	return h.setApproved(c, true)
}

// Unapprove gỡ duyệt một asset. Lịch hiện tại của asset (nếu có) giữ nguyên.
func (h *ContentAssetHandler) Unapprove(c fiber.Ctx) error {
	return h.setApproved(c, false)
}

func (h *ContentAssetHandler) setApproved(c fiber.Ctx, approved bool) error {
	return h.SafeHandler(c, func() error {
		var params contentdto.ContentAssetIDParams
		if err := h.ParseRequestParams(c, &params); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if !primitive.IsValidObjectID(params.ID) {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("ID '%s' không đúng định dạng MongoDB ObjectID (phải là chuỗi hex 24 ký tự)", params.ID),
				common.StatusBadRequest,
				nil,
			))
			return nil
		}

		asset, err := h.ContentAssetService.SetApproved(c.Context(), utility.String2ObjectID(params.ID), approved)
		h.HandleResponse(c, asset, err)
		return nil
	})
}

// BusinessWindow trả về các asset đã lên lịch của business trong một khoảng
// calendar, loại trừ content item đang mở. Khoảng ngày nhận dạng YYYY-MM-DD
// và được hiểu theo timezone của business.
func (h *ContentAssetHandler) BusinessWindow(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var query contentdto.BusinessWindowQuery
		if err := c.Bind().Query(&query); err != nil {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationFormat, common.MsgValidationError, common.StatusBadRequest, err))
			return nil
		}
		if err := h.ValidateInput(&query); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if !primitive.IsValidObjectID(query.BusinessID) {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("businessId '%s' không đúng định dạng MongoDB ObjectID", query.BusinessID),
				common.StatusBadRequest,
				nil,
			))
			return nil
		}
		businessID := utility.String2ObjectID(query.BusinessID)

		tz, err := h.BusinessService.GetTimezone(c.Context(), businessID)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		loc, err := time.LoadLocation(tz)
		if err != nil {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeScheduleTimezone,
				fmt.Sprintf("Timezone '%s' của business không hợp lệ: %v", tz, err),
				common.StatusInternalServerError,
				err,
			))
			return nil
		}

		startDate, err := time.ParseInLocation("2006-01-02", query.StartDateISO, loc)
		if err != nil {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("startDate '%s' không đúng định dạng YYYY-MM-DD", query.StartDateISO),
				common.StatusBadRequest,
				err,
			))
			return nil
		}
		endDate, err := time.ParseInLocation("2006-01-02", query.EndDateISO, loc)
		if err != nil {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("endDate '%s' không đúng định dạng YYYY-MM-DD", query.EndDateISO),
				common.StatusBadRequest,
				err,
			))
			return nil
		}

		// Khoảng nửa mở [start 00:00, end+1d 00:00) theo giờ business
		startUTC := startDate.UnixMilli()
		endUTC := endDate.AddDate(0, 0, 1).UnixMilli()

		var excludeContentID *primitive.ObjectID
		if query.ExcludeContentID != "" {
			if !primitive.IsValidObjectID(query.ExcludeContentID) {
				h.HandleResponse(c, nil, common.NewError(
					common.ErrCodeValidationFormat,
					fmt.Sprintf("excludeContentId '%s' không đúng định dạng MongoDB ObjectID", query.ExcludeContentID),
					common.StatusBadRequest,
					nil,
				))
				return nil
			}
			id := utility.String2ObjectID(query.ExcludeContentID)
			excludeContentID = &id
		}

		assets, err := h.ContentAssetService.BusinessWindow(c.Context(), businessID, startUTC, endUTC, excludeContentID)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		foreign, err := h.buildForeignAssets(c, assets)
		h.HandleResponse(c, foreign, err)
		return nil
	})
}

// buildForeignAssets gắn tiêu đề content cha vào từng asset trong window.
func (h *ContentAssetHandler) buildForeignAssets(c fiber.Ctx, assets []contentmodels.ContentAsset) ([]contentdto.ForeignAsset, error) {
	contentIDSet := make(map[primitive.ObjectID]bool)
	for _, asset := range assets {
		contentIDSet[asset.ContentID] = true
	}
	contentIDs := make([]primitive.ObjectID, 0, len(contentIDSet))
	for id := range contentIDSet {
		contentIDs = append(contentIDs, id)
	}

	titles, err := h.ContentItemService.TitlesByIds(c.Context(), contentIDs)
	if err != nil {
		return nil, err
	}

	foreign := make([]contentdto.ForeignAsset, 0, len(assets))
	for _, asset := range assets {
		if asset.ScheduledAt == nil {
			continue
		}
		foreign = append(foreign, contentdto.ForeignAsset{
			ID:           asset.ID.Hex(),
			ContentID:    asset.ContentID.Hex(),
			ContentTitle: titles[asset.ContentID],
			ContentType:  asset.ContentType,
			ScheduledAt:  *asset.ScheduledAt,
		})
	}
	return foreign, nil
}
