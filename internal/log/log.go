package log

import (
	"io"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Setup configures the process logger. format "console" gives human
// readable output; anything else is JSON lines. A non-empty file is
// appended to alongside stdout.
func Setup(level, format string, file string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var out io.Writer = os.Stdout
	if format == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	var ferr error
	if file != "" {
		f, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			ferr = err
		} else {
			out = zerolog.MultiLevelWriter(out, f)
		}
	}
	logger = zerolog.New(out).With().Timestamp().Logger()
	return ferr
}

// SetOutput redirects JSON output to w and returns a func restoring the
// previous logger.
func SetOutput(w io.Writer) (restore func()) {
	old := logger
	logger = zerolog.New(w).With().Timestamp().Logger()
	return func() { logger = old }
}

// Logger returns the process logger for code that has no request context.
func Logger() *zerolog.Logger { return &logger }

func write(ev *zerolog.Event, c *fiber.Ctx, category, action string, fields map[string]any) {
	if c != nil {
		ev = ev.Str("ip", c.IP()).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode())
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			ev = ev.Str("req_id", rid)
		}
		if uid, ok := c.Locals("user_id").(int64); ok {
			ev = ev.Int64("user_id", uid)
		}
	}
	if category != "" {
		ev = ev.Str("category", category)
	}
	if len(fields) > 0 {
		ev = ev.Interface("fields", fields)
	}
	ev.Str("action", action).Send()
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	write(logger.Info(), c, "", action, fields)
}

func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	write(logger.Info(), c, "audit", action, fields)
}

func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write(logger.Warn(), c, "security", action, fields)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write(logger.Error().Err(err), c, "", action, fields)
}

// Access logs one line per request with its latency.
func Access() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		// Run the error handler now so the logged status is the final one.
		if err := c.Next(); err != nil {
			if herr := c.App().Config().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		write(logger.Info().Int64("latency_ms", time.Since(start).Milliseconds()), c, "access", "http.request", nil)
		return nil
	}
}
