package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

type HandlerConfig struct {
	Level         slog.Level
	Service       ServiceInfo
	Environment   Environment
	GCPProjectID  string
	DefaultModule Module
}

// ContextHandler decorates records with the request id, module and trace
// fields carried by the context.
type ContextHandler struct {
	inner         slog.Handler
	projectID     string
	defaultModule Module
}

func NewHandler(w io.Writer, cfg HandlerConfig) *ContextHandler {
	inner := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.Level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				a.Key = "severity"
			}
			if a.Key == slog.MessageKey {
				a.Key = "message"
			}

			return a
		},
	})

	service := []any{slog.String("name", cfg.Service.Name)}
	if cfg.Service.Version != "" {
		service = append(service, slog.String("version", cfg.Service.Version))
	}
	if cfg.Service.Revision != "" {
		service = append(service, slog.String("revision", cfg.Service.Revision))
	}

	return &ContextHandler{
		inner: inner.WithAttrs([]slog.Attr{
			slog.Group("service", service...),
			slog.String("env", string(cfg.Environment)),
		}),
		projectID:     cfg.GCPProjectID,
		defaultModule: cfg.DefaultModule,
	}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := RequestID(ctx); id != "" {
		r.AddAttrs(slog.String("request_id", id))
	}

	module := ModuleFrom(ctx)
	if module == "" {
		module = h.defaultModule
	}
	if module != "" {
		r.AddAttrs(slog.String("module", string(module)))
	}

	r.AddAttrs(traceAttrs(ctx, h.projectID)...)

	return h.inner.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{inner: h.inner.WithAttrs(attrs), projectID: h.projectID, defaultModule: h.defaultModule}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{inner: h.inner.WithGroup(name), projectID: h.projectID, defaultModule: h.defaultModule}
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
