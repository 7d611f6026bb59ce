package contenthdl

import (
	"fmt"

	basehdl "content_forge/internal/api/base/handler"
	contentdto "content_forge/internal/api/content/dto"
	contentmodels "content_forge/internal/api/content/models"
	contentsvc "content_forge/internal/api/content/service"
)

// ContentItemHandler xử lý các request liên quan đến Content Item
type ContentItemHandler struct {
	*basehdl.BaseHandler[contentmodels.ContentItem, contentdto.ContentItemCreateInput, contentdto.ContentItemUpdateInput]
	ContentItemService *contentsvc.ContentItemService
}

// NewContentItemHandler tạo mới ContentItemHandler
func NewContentItemHandler() (*ContentItemHandler, error) {
	contentItemService, err := contentsvc.NewContentItemService()
	if err != nil {
		return nil, fmt.Errorf("failed to create content item service: %v", err)
	}
	hdl := &ContentItemHandler{
		ContentItemService: contentItemService,
	}
	hdl.BaseHandler = basehdl.NewBaseHandler[contentmodels.ContentItem, contentdto.ContentItemCreateInput, contentdto.ContentItemUpdateInput](contentItemService.BaseServiceMongoImpl)
	hdl.SetFilterOptions(basehdl.FilterOptions{
		DeniedFields:     []string{"password", "token", "secret", "key", "hash"},
		AllowedOperators: []string{"$eq", "$gt", "$gte", "$lt", "$lte", "$in", "$nin", "$exists"},
		MaxFields:        10,
	})
	return hdl, nil
}
