package businesshdl

import (
	"fmt"

	businessdto "content_forge/internal/api/business/dto"
	businessmodels "content_forge/internal/api/business/models"
	businesssvc "content_forge/internal/api/business/service"
	basehdl "content_forge/internal/api/base/handler"
)

// BusinessHandler xử lý các request liên quan đến Business
type BusinessHandler struct {
	*basehdl.BaseHandler[businessmodels.Business, businessdto.BusinessCreateInput, businessdto.BusinessUpdateInput]
	BusinessService *businesssvc.BusinessService
}

// NewBusinessHandler tạo mới BusinessHandler
func NewBusinessHandler() (*BusinessHandler, error) {
	businessService, err := businesssvc.NewBusinessService()
	if err != nil {
		return nil, fmt.Errorf("failed to create business service: %v", err)
	}
	hdl := &BusinessHandler{
		BusinessService: businessService,
	}
	hdl.BaseHandler = basehdl.NewBaseHandler[businessmodels.Business, businessdto.BusinessCreateInput, businessdto.BusinessUpdateInput](businessService.BaseServiceMongoImpl)
	hdl.SetFilterOptions(basehdl.FilterOptions{
		DeniedFields:     []string{"password", "token", "secret", "key", "hash"},
		AllowedOperators: []string{"$eq", "$gt", "$gte", "$lt", "$lte", "$in", "$nin", "$exists"},
		MaxFields:        10,
	})
	return hdl, nil
}
