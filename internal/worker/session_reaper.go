// Package worker - SessionReaperWorker dọn các scheduling session bị bỏ rơi
// theo chu kỳ. Session còn thay đổi chưa lưu được một nhịp grace trước khi đóng.
package worker

import (
	"time"

	"github.com/robfig/cron/v3"

	schedulesvc "content_forge/internal/api/schedule/service"
	"content_forge/internal/logger"
	"content_forge/internal/utility"
)

// SessionReaperWorker worker đóng các scheduling session không hoạt động quá TTL.
//
// Chạy theo cron spec (mặc định "@every 5m"). Session thường bị bỏ rơi do
// client đóng tab mà không gọi DELETE /sessions/:id; nếu không dọn, registry
// giữ tham chiếu đến chúng vô thời hạn.
type SessionReaperWorker struct {
	sessionService *schedulesvc.ScheduleSessionService
	spec           string        // Cron spec (vd: "@every 5m")
	ttl            time.Duration // Session không được dùng quá ttl thì bị đóng
	cron           *cron.Cron
}

// NewSessionReaperWorker tạo worker mới.
//
// Tham số:
//   - sessionService: Service quản lý scheduling session
//   - spec: Cron spec cho chu kỳ reap (rỗng → "@every 5m")
//   - ttlMinutes: TTL của session không hoạt động (phút, <= 0 → 120)
func NewSessionReaperWorker(sessionService *schedulesvc.ScheduleSessionService, spec string, ttlMinutes int) *SessionReaperWorker {
	if spec == "" {
		spec = "@every 5m"
	}
	if ttlMinutes <= 0 {
		ttlMinutes = 120
	}
	return &SessionReaperWorker{
		sessionService: sessionService,
		spec:           spec,
		ttl:            time.Duration(ttlMinutes) * time.Minute,
	}
}

// Start đăng ký job và chạy cron scheduler trong background.
func (w *SessionReaperWorker) Start() error {
	log := logger.GetAppLogger()

	w.cron = cron.New()
	_, err := w.cron.AddFunc(w.spec, func() {
		utility.GoProtect(func() {
			closed := w.sessionService.ReapStale(w.ttl)
			if closed > 0 {
				log.WithFields(map[string]interface{}{
					"closed": closed,
					"live":   w.sessionService.LiveSessions(),
				}).Info("🧹 [SESSION_REAPER] Đã đóng các session hết hạn")
			}
		})
	})
	if err != nil {
		return err
	}

	log.WithFields(map[string]interface{}{
		"spec": w.spec,
		"ttl":  w.ttl.String(),
	}).Info("🧹 [SESSION_REAPER] Starting Session Reaper Worker...")

	w.cron.Start()
	return nil
}

// Stop dừng cron scheduler, chờ job đang chạy kết thúc.
func (w *SessionReaperWorker) Stop() {
	if w.cron != nil {
		ctx := w.cron.Stop()
		<-ctx.Done()
		logger.GetAppLogger().Info("🧹 [SESSION_REAPER] Session Reaper Worker stopped")
	}
}
