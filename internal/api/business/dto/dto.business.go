package businessdto

// BusinessCreateInput dữ liệu đầu vào khi tạo business
type BusinessCreateInput struct {
	Name               string `json:"name" validate:"required" maxLength:"200"`
	OwnerEmail         string `json:"ownerEmail,omitempty" validate:"omitempty,email"`
	Timezone           string `json:"timezone,omitempty" validate:"omitempty,iana_timezone"`
	DefaultPublishHour int    `json:"defaultPublishHour,omitempty" validate:"omitempty,min=0,max=23"`
}

// BusinessUpdateInput dữ liệu đầu vào khi cập nhật business
type BusinessUpdateInput struct {
	Name               string `json:"name,omitempty" maxLength:"200"`
	OwnerEmail         string `json:"ownerEmail,omitempty" validate:"omitempty,email"`
	Timezone           string `json:"timezone,omitempty" validate:"omitempty,iana_timezone"`
	DefaultPublishHour int    `json:"defaultPublishHour,omitempty" validate:"omitempty,min=0,max=23"`
}
