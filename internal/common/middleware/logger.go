package middleware

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

// ============================================================
// Logger Middleware
// ============================================================

// Logger returns the shared request logging middleware. Body sizes
// are logged on both sides, plan uploads and model downloads are
// the routes that matter here.
func Logger() fiber.Handler {
	return logger.New(logger.Config{
		Format:     "[${time}] ${status} ${latency} ${method} ${path} | in=${bytesReceived} out=${bytesSent}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	})
}
