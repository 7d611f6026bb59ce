package schedulehdl

import (
	"fmt"
	"time"

	basehdl "content_forge/internal/api/base/handler"
	contentdto "content_forge/internal/api/content/dto"
	contentmodels "content_forge/internal/api/content/models"
	contentsvc "content_forge/internal/api/content/service"
	scheduledto "content_forge/internal/api/schedule/dto"
	schedulesvc "content_forge/internal/api/schedule/service"
	"content_forge/internal/common"
	"content_forge/internal/logger"
	"content_forge/internal/utility"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScheduleHandler xử lý các request lập lịch: auto-schedule, chỉnh lịch trực
// tiếp và vòng đời scheduling session (open/calendar/stage/commit/reset/close).
type ScheduleHandler struct {
	*basehdl.BaseHandler[contentmodels.ContentAsset, scheduledto.AutoScheduleInput, scheduledto.UpdateScheduleInput]
	SessionService      *schedulesvc.ScheduleSessionService
	ContentAssetService *contentsvc.ContentAssetService
	ContentItemService  *contentsvc.ContentItemService
}

// NewScheduleHandler tạo mới ScheduleHandler
func NewScheduleHandler() (*ScheduleHandler, error) {
	sessionService, err := schedulesvc.GetScheduleSessionService()
	if err != nil {
		return nil, fmt.Errorf("failed to create schedule session service: %v", err)
	}
	contentAssetService, err := contentsvc.NewContentAssetService()
	if err != nil {
		return nil, fmt.Errorf("failed to create content asset service: %v", err)
	}
	contentItemService, err := contentsvc.NewContentItemService()
	if err != nil {
		return nil, fmt.Errorf("failed to create content item service: %v", err)
	}
	hdl := &ScheduleHandler{
		SessionService:      sessionService,
		ContentAssetService: contentAssetService,
		ContentItemService:  contentItemService,
	}
	hdl.BaseHandler = basehdl.NewBaseHandler[contentmodels.ContentAsset, scheduledto.AutoScheduleInput, scheduledto.UpdateScheduleInput](contentAssetService.BaseServiceMongoImpl)
	return hdl, nil
}

// parseObjectID validate và convert một hex id, trả về lỗi chuẩn khi sai định dạng.
func parseObjectID(name, value string) (primitive.ObjectID, error) {
	if !primitive.IsValidObjectID(value) {
		return primitive.NilObjectID, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("%s '%s' không đúng định dạng MongoDB ObjectID (phải là chuỗi hex 24 ký tự)", name, value),
			common.StatusBadRequest,
			nil,
		)
	}
	return utility.String2ObjectID(value), nil
}

// AutoSchedule lên lịch tự động toàn bộ asset đã duyệt của một content item
// theo bảng trình tự. Body tùy chọn: startDate (YYYY-MM-DD, mặc định ngày mai
// theo giờ business) và timezone override.
func (h *ScheduleHandler) AutoSchedule(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var params scheduledto.ContentIDParams
		if err := h.ParseRequestParams(c, &params); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		contentID, err := parseObjectID("contentId", params.ContentID)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input scheduledto.AutoScheduleInput
		if len(c.Body()) > 0 {
			if err := h.ParseRequestBody(c, &input); err != nil {
				h.HandleResponse(c, nil, err)
				return nil
			}
			if err := h.ValidateInput(&input); err != nil {
				h.HandleResponse(c, nil, err)
				return nil
			}
		}

		result, err := h.SessionService.ScheduleAll(c.Context(), contentID, input.StartDateISO, input.Timezone, time.Now())
		if err == nil {
			logger.LogScheduleMutation("auto", params.ContentID, c, map[string]interface{}{
				"scheduled": result.Scheduled,
				"failed":    len(result.FailedIDs),
			})
		}
		h.HandleResponse(c, result, err)
		return nil
	})
}

// UpdateSchedule đổi lịch một asset trực tiếp, không qua session. Thời điểm
// mới dạng RFC3339 và được lưu dưới dạng UTC.
func (h *ScheduleHandler) UpdateSchedule(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var params scheduledto.AssetIDParams
		if err := h.ParseRequestParams(c, &params); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		assetID, err := parseObjectID("id", params.ID)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input scheduledto.UpdateScheduleInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		newTime, err := time.Parse(time.RFC3339, input.NewDateTimeISO)
		if err != nil {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("newDateTime '%s' không đúng định dạng RFC3339", input.NewDateTimeISO),
				common.StatusBadRequest,
				err,
			))
			return nil
		}

		asset, err := h.SessionService.UpdateOne(c.Context(), assetID, newTime.UTC())
		if err == nil {
			logger.LogScheduleMutation("update", asset.ContentID.Hex(), c, map[string]interface{}{
				"asset_id": params.ID,
			})
		}
		h.HandleResponse(c, asset, err)
		return nil
	})
}

// ResetContent gỡ lịch toàn bộ asset của content item. Không cần session;
// nếu client gửi kèm sessionId qua query thì ledger của session đó cũng
// được xóa và khôi phục khi store fail.
func (h *ScheduleHandler) ResetContent(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var params scheduledto.ContentIDParams
		if err := h.ParseRequestParams(c, &params); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		contentID, err := parseObjectID("contentId", params.ContentID)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var session *schedulesvc.ScheduleSession
		if sessionID := c.Query("sessionId"); sessionID != "" {
			session, err = h.SessionService.Get(sessionID)
			if err != nil {
				h.HandleResponse(c, nil, err)
				return nil
			}
		}

		count, err := h.SessionService.ResetSchedule(c.Context(), contentID, session)
		if err == nil {
			logger.LogScheduleMutation("reset", params.ContentID, c, map[string]interface{}{
				"cleared": count,
			})
		}
		h.HandleResponse(c, fiber.Map{"cleared": count}, err)
		return nil
	})
}

// OpenSession mở một scheduling session cho content item.
func (h *ScheduleHandler) OpenSession(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input scheduledto.SessionOpenInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		contentID, err := parseObjectID("contentId", input.ContentID)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		session, err := h.SessionService.Open(c.Context(), contentID)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		h.HandleResponse(c, sessionResponse(session), nil)
		return nil
	})
}

// GetSession trả về trạng thái session (dirty, số thay đổi đang chờ).
func (h *ScheduleHandler) GetSession(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		session, err := h.sessionFromParams(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		h.HandleResponse(c, sessionResponse(session), nil)
		return nil
	})
}

// Calendar chiếu session ra danh sách calendar entry: asset của content đang
// mở (đã áp ledger) cộng với asset đã lên lịch của các content khác trong
// cùng business nếu client gửi khoảng startDate/endDate.
func (h *ScheduleHandler) Calendar(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		session, err := h.sessionFromParams(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var query scheduledto.CalendarQuery
		if err := c.Bind().Query(&query); err != nil {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationFormat, common.MsgValidationError, common.StatusBadRequest, err))
			return nil
		}
		if err := h.ValidateInput(&query); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		if err := h.SessionService.RefreshIfStale(c.Context(), session); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		foreign, err := h.foreignAssetsForWindow(c, session, query)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		entries, err := schedulesvc.Project(session.EffectiveAssets(), foreign, session.Ledger, session.Timezone, session.Ledger.Dirty())
		h.HandleResponse(c, entries, err)
		return nil
	})
}

// Stage stage một thao tác kéo-thả vào ledger của session: asset chuyển sang
// ngày mới (YYYY-MM-DD giờ business), giữ nguyên giờ trong ngày.
func (h *ScheduleHandler) Stage(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		session, err := h.sessionFromParams(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input scheduledto.StageInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		assetID, err := parseObjectID("assetId", input.AssetID)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		loc, err := schedulesvc.LoadBusinessLocation(session.Timezone)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		newDate, err := time.ParseInLocation("2006-01-02", input.NewDateISO, loc)
		if err != nil {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("newDate '%s' không đúng định dạng YYYY-MM-DD", input.NewDateISO),
				common.StatusBadRequest,
				err,
			))
			return nil
		}

		staged, err := h.SessionService.StageDrop(session, assetID, newDate, time.Now())
		h.HandleResponse(c, staged, err)
		return nil
	})
}

// Commit lưu toàn bộ ledger của session. Thành công một phần trả warning,
// các entry fail ở lại ledger để thử lại.
func (h *ScheduleHandler) Commit(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		session, err := h.sessionFromParams(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		result, err := h.SessionService.CommitBatch(c.Context(), session)
		if err == nil {
			logger.LogScheduleMutation("commit", session.ContentID.Hex(), c, map[string]interface{}{
				"session_id": session.ID,
				"scheduled":  result.Scheduled,
				"failed":     len(result.FailedIDs),
			})
		}
		h.HandleResponse(c, result, err)
		return nil
	})
}

// ResetPending vứt toàn bộ thay đổi chưa lưu của session, giữ nguyên lịch đã lưu.
func (h *ScheduleHandler) ResetPending(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		session, err := h.sessionFromParams(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		discarded := session.Ledger.Len()
		session.Ledger.Reset()
		session.Touch()
		h.HandleResponse(c, fiber.Map{"discarded": discarded}, nil)
		return nil
	})
}

// CloseSession đóng session. Session còn thay đổi chưa lưu cần force=true.
func (h *ScheduleHandler) CloseSession(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var params scheduledto.SessionIDParams
		if err := h.ParseRequestParams(c, &params); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		var query scheduledto.CloseQuery
		if err := c.Bind().Query(&query); err != nil {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationFormat, common.MsgValidationError, common.StatusBadRequest, err))
			return nil
		}

		err := h.SessionService.Close(params.ID, query.Force)
		h.HandleResponse(c, fiber.Map{"closed": err == nil}, err)
		return nil
	})
}

// sessionFromParams lấy session từ URI param :id.
func (h *ScheduleHandler) sessionFromParams(c fiber.Ctx) (*schedulesvc.ScheduleSession, error) {
	var params scheduledto.SessionIDParams
	if err := h.ParseRequestParams(c, &params); err != nil {
		return nil, err
	}
	return h.SessionService.Get(params.ID)
}

// foreignAssetsForWindow load các asset đã lên lịch của business trong khoảng
// calendar, loại trừ content của session, và gắn tiêu đề content cha.
func (h *ScheduleHandler) foreignAssetsForWindow(c fiber.Ctx, session *schedulesvc.ScheduleSession, query scheduledto.CalendarQuery) ([]contentdto.ForeignAsset, error) {
	if query.StartDateISO == "" || query.EndDateISO == "" {
		return nil, nil
	}

	loc, err := schedulesvc.LoadBusinessLocation(session.Timezone)
	if err != nil {
		return nil, err
	}
	startDate, err := time.ParseInLocation("2006-01-02", query.StartDateISO, loc)
	if err != nil {
		return nil, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("startDate '%s' không đúng định dạng YYYY-MM-DD", query.StartDateISO),
			common.StatusBadRequest,
			err,
		)
	}
	endDate, err := time.ParseInLocation("2006-01-02", query.EndDateISO, loc)
	if err != nil {
		return nil, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("endDate '%s' không đúng định dạng YYYY-MM-DD", query.EndDateISO),
			common.StatusBadRequest,
			err,
		)
	}

	// Khoảng nửa mở [start 00:00, end+1d 00:00) theo giờ business
	contentID := session.ContentID
	assets, err := h.ContentAssetService.BusinessWindow(
		c.Context(),
		session.BusinessID,
		startDate.UnixMilli(),
		endDate.AddDate(0, 0, 1).UnixMilli(),
		&contentID,
	)
	if err != nil {
		return nil, err
	}

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

// sessionResponse dựng payload trạng thái session trả về cho client.
func sessionResponse(session *schedulesvc.ScheduleSession) scheduledto.SessionResponse {
	return scheduledto.SessionResponse{
		ID:          session.ID,
		ContentID:   session.ContentID.Hex(),
		BusinessID:  session.BusinessID.Hex(),
		Timezone:    session.Timezone,
		PublishHour: session.PublishHour,
		Dirty:       session.Ledger.Dirty(),
		Pending:     session.Ledger.Len(),
	}
}
