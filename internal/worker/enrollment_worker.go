// Package worker - EnrollmentWorker quét các workflow enrollment đã đến hạn
// (nextStepAt <= now) và advance từng enrollment một bước theo chu kỳ.
package worker

import (
	"context"
	"time"

	wfsvc "cornerstone_crm/internal/api/workflow/service"
	"cornerstone_crm/internal/logger"
)

// EnrollmentWorker là scheduler nền của workflow engine.
//
// Mỗi tick: lấy một batch enrollment active có nextStepAt đã trôi qua
// (sắp theo hạn tăng dần) rồi gọi engine xử lý từng enrollment. Engine tự
// bảo đảm an toàn at-least-once bằng conditional update, nên nhiều instance
// worker chạy song song cũng không thực thi trùng step.
type EnrollmentWorker struct {
	engine    *wfsvc.Engine
	interval  time.Duration // Khoảng thời gian giữa các lần quét (vd: 15s)
	batchSize int64         // Số enrollment tối đa mỗi lần (vd: 100)
}

// NewEnrollmentWorker tạo worker mới.
//
// Tham số:
//   - interval: Khoảng cách giữa các lần quét (mặc định: 15s)
//   - batchSize: Số enrollment tối đa mỗi batch (mặc định: 100)
func NewEnrollmentWorker(engine *wfsvc.Engine, interval time.Duration, batchSize int64) *EnrollmentWorker {
	if interval < time.Second {
		interval = 15 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &EnrollmentWorker{
		engine:    engine,
		interval:  interval,
		batchSize: batchSize,
	}
}

// Start chạy worker trong vòng lặp.
func (w *EnrollmentWorker) Start(ctx context.Context) {
	log := logger.GetAppLogger()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.WithFields(map[string]interface{}{
		"interval":  w.interval.String(),
		"batchSize": w.batchSize,
	}).Info("⚙️ [WF_ENROLLMENT] Starting Enrollment Worker...")

	for {
		select {
		case <-ctx.Done():
			log.Info("⚙️ [WF_ENROLLMENT] Enrollment Worker stopped")
			return
		case <-ticker.C:
			w.runBatch(ctx)
		}
	}
}

// runBatch xử lý một đợt enrollment đến hạn.
func (w *EnrollmentWorker) runBatch(ctx context.Context) {
	log := logger.GetAppLogger()
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(map[string]interface{}{
				"panic": r,
			}).Error("⚙️ [WF_ENROLLMENT] Panic khi xử lý, sẽ tiếp tục lần chạy tiếp theo")
		}
	}()

	processed, err := w.engine.ProcessDue(ctx, w.batchSize)
	if err != nil {
		log.WithError(err).Error("⚙️ [WF_ENROLLMENT] Lỗi lấy danh sách enrollment đến hạn")
		return
	}
	if processed > 0 {
		log.WithFields(map[string]interface{}{
			"processed": processed,
		}).Info("⚙️ [WF_ENROLLMENT] Đã advance các enrollment đến hạn")
	}
}
