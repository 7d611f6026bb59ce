package logger

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// AuditAction log một hành động audit
type AuditAction struct {
	Action       string                 `json:"action"`        // Tên hành động (ví dụ: "schedule_commit", "schedule_reset")
	ResourceID   string                 `json:"resource_id"`   // ID tài nguyên bị ảnh hưởng
	ResourceType string                 `json:"resource_type"` // Loại tài nguyên (ví dụ: "content_asset", "schedule_session")
	IP           string                 `json:"ip"`            // IP address
	UserAgent    string                 `json:"user_agent"`    // User agent
	Details      map[string]interface{} `json:"details"`       // Chi tiết bổ sung
	Timestamp    time.Time              `json:"timestamp"`     // Thời gian
}

// LogAction log một hành động audit
func LogAction(action string, c fiber.Ctx, details map[string]interface{}) {
	auditLogger := GetAuditLogger()

	audit := AuditAction{
		Action:    action,
		IP:        c.IP(),
		UserAgent: c.Get("User-Agent"),
		Details:   details,
		Timestamp: time.Now(),
	}

	auditLogger.WithFields(logrus.Fields{
		"action":     audit.Action,
		"ip":         audit.IP,
		"user_agent": audit.UserAgent,
		"details":    audit.Details,
		"timestamp":  audit.Timestamp.Format(time.RFC3339),
	}).Info("Audit action")
}

// LogScheduleMutation log một thao tác lập lịch làm thay đổi dữ liệu
// (auto-schedule, batch commit, reset). Gọi từ handler sau khi thao tác thành công.
func LogScheduleMutation(operation string, contentID string, c fiber.Ctx, details map[string]interface{}) {
	if details == nil {
		details = map[string]interface{}{}
	}
	details["content_id"] = contentID

	LogAction("schedule_"+operation, c, details)
}
