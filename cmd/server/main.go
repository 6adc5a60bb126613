package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v3"

	wfsvc "cornerstone_crm/internal/api/workflow/service"
	"cornerstone_crm/internal/delivery/channels"
	"cornerstone_crm/internal/global"
	"cornerstone_crm/internal/logger"
	"cornerstone_crm/internal/worker"
)

// initLogger khởi tạo và cấu hình logger cho toàn bộ ứng dụng
func initLogger() {
	// Khởi tạo logger với cấu hình mặc định
	// Logger sẽ tự động đọc environment variables để cấu hình
	if err := logger.Init(nil); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	// Log thông tin khởi tạo bằng logger mới
	log := logger.GetAppLogger()
	log.Info("Logger system initialized successfully")
}

// main_thread khởi tạo và chạy Fiber server
func main_thread(engine *wfsvc.Engine) {
	log := logger.GetAppLogger()

	// Khởi tạo app với cấu hình
	app, err := InitFiberApp(engine)
	if err != nil {
		log.Fatalf("Failed to initialize Fiber app: %v", err)
	}

	// Khởi động server với cấu hình listen
	cfg := global.ServerConfig
	address := ":" + cfg.Address

	log.Info("Starting Fiber server...")

	// Helper function để resolve đường dẫn từ thư mục gốc dự án
	resolvePath := func(path string) string {
		if filepath.IsAbs(path) {
			return path
		}
		currentDir, err := os.Getwd()
		if err != nil {
			return path
		}
		for {
			envDir := filepath.Join(currentDir, "config", "env")
			if _, err := os.Stat(envDir); err == nil {
				return filepath.Join(currentDir, path)
			}
			parentDir := filepath.Dir(currentDir)
			if parentDir == currentDir {
				return path
			}
			currentDir = parentDir
		}
	}

	// Kiểm tra xem có bật TLS không
	if cfg.EnableTLS && cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		// Resolve đường dẫn certificate và key
		certPath := resolvePath(cfg.TLSCertFile)
		keyPath := resolvePath(cfg.TLSKeyFile)

		// Kiểm tra file certificate và key tồn tại
		if _, err := os.Stat(certPath); os.IsNotExist(err) {
			log.Fatalf("TLS certificate file not found: %s (resolved from: %s)", certPath, cfg.TLSCertFile)
		}
		if _, err := os.Stat(keyPath); os.IsNotExist(err) {
			log.Fatalf("TLS key file not found: %s (resolved from: %s)", keyPath, cfg.TLSKeyFile)
		}

		// Load certificate và key
		cert, err := tls.LoadX509KeyPair(certPath, keyPath)
		if err != nil {
			log.Fatalf("Error loading TLS certificate: %v", err)
		}

		// Tạo listener với TLS
		ln, err := net.Listen("tcp", address)
		if err != nil {
			log.Fatalf("Error creating listener: %v", err)
		}

		tlsConfig := &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
		tlsListener := tls.NewListener(ln, tlsConfig)

		log.WithFields(map[string]interface{}{
			"address": address,
			"cert":    certPath,
			"key":     keyPath,
		}).Info("Starting server with HTTPS/TLS")

		if err := app.Listener(tlsListener); err != nil {
			log.Fatalf("Error in Fiber Listener with TLS: %v", err)
		}
	} else {
		// Khởi động server HTTP thông thường
		log.WithFields(map[string]interface{}{
			"address":  address,
			"protocol": "HTTP",
		}).Info("Starting server with HTTP")

		listenConfig := fiber.ListenConfig{}
		if err := app.Listen(address, listenConfig); err != nil {
			log.Fatalf("Error in Fiber Listen: %v", err)
		}
	}
}

// Hàm main
func main() {
	// Khởi tạo logger
	initLogger()

	// Khởi tạo các biến toàn cục
	InitGlobal()

	// Khởi tạo registry
	InitRegistry()

	// Khởi tạo dữ liệu mặc định
	InitDefaultData()

	log := logger.GetAppLogger()
	cfg := global.ServerConfig

	// Khởi tạo workflow engine: persistence port + các delivery channel
	store, err := wfsvc.NewMongoEngineStore()
	if err != nil {
		log.Fatalf("Failed to create workflow engine store: %v", err)
	}
	engine := wfsvc.NewEngine(store, channels.NewMailer(cfg), channels.NewSmsSender())

	// Nối engine vào các nguồn sự kiện CRM (event bus + hook tường minh)
	wfsvc.RegisterTriggerHooks(engine)

	// Chạy Enrollment Worker (background) quét enrollment đến hạn
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	enrollmentWorker := worker.NewEnrollmentWorker(engine,
		time.Duration(cfg.EnrollmentWorkerInterval)*time.Second,
		int64(cfg.EnrollmentWorkerBatchSize))
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(map[string]interface{}{
					"panic": r,
				}).Error("⚙️ [WF_ENROLLMENT] Worker goroutine panic")
			}
		}()
		enrollmentWorker.Start(ctx)
	}()
	log.Info("⚙️ [WF_ENROLLMENT] Enrollment Worker started successfully")

	// Chạy Fiber server trên main thread
	main_thread(engine)
}
