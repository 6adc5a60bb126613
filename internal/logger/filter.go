package logger

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// FilterHook lọc log entries theo module, collection và log level.
// Entry bị filter được đánh dấu qua field "_filtered"; AsyncHook kiểm tra
// field này và bỏ qua entry thay vì ghi ra writers.
type FilterHook struct {
	// Các filter sets (map[string]bool để lookup nhanh)
	// Map rỗng hoặc chứa "*" nghĩa là cho phép tất cả
	allowedModules     map[string]bool
	allowedCollections map[string]bool
	allowedLogTypes    map[string]bool

	hasModuleFilter     bool
	hasCollectionFilter bool
	hasLogTypeFilter    bool

	mu sync.RWMutex
}

// NewFilterHook tạo một filter hook mới với cấu hình
func NewFilterHook(cfg *LogConfig) *FilterHook {
	hook := &FilterHook{}
	hook.UpdateFilters(cfg)
	return hook
}

// UpdateFilters cập nhật filters từ config (có thể gọi runtime)
func (h *FilterHook) UpdateFilters(cfg *LogConfig) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.allowedModules = parseFilter(cfg.FilterModules)
	h.hasModuleFilter = !h.allowedModules["*"]

	h.allowedCollections = parseFilter(cfg.FilterCollections)
	h.hasCollectionFilter = !h.allowedCollections["*"]

	h.allowedLogTypes = parseFilter(cfg.FilterLogTypes)
	h.hasLogTypeFilter = !h.allowedLogTypes["*"]
}

// parseFilter parse filter string thành map.
// Format: "value1,value2" hoặc "*" (hoặc rỗng) cho tất cả.
func parseFilter(filterStr string) map[string]bool {
	result := make(map[string]bool)

	if filterStr == "" || filterStr == "*" {
		result["*"] = true
		return result
	}

	for _, v := range strings.Split(filterStr, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			result[strings.ToLower(v)] = true
		}
	}

	return result
}

// Levels trả về các log levels mà hook này xử lý
func (h *FilterHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire được gọi mỗi khi có log entry mới.
// Entry không khớp filter được đánh dấu "_filtered" = true.
func (h *FilterHook) Fire(entry *logrus.Entry) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.hasLogTypeFilter {
		levelStr := strings.ToLower(entry.Level.String())
		if !h.allowedLogTypes[levelStr] {
			entry.Data["_filtered"] = true
			return nil
		}
	}

	if h.hasModuleFilter {
		// Entry không có field module vẫn được ghi
		if module, ok := entry.Data["module"].(string); ok && module != "" {
			if !h.allowedModules[strings.ToLower(module)] {
				entry.Data["_filtered"] = true
				return nil
			}
		}
	}

	if h.hasCollectionFilter {
		if collection, ok := entry.Data["collection"].(string); ok && collection != "" {
			if !h.allowedCollections[strings.ToLower(collection)] {
				entry.Data["_filtered"] = true
				return nil
			}
		}
	}

	return nil
}
