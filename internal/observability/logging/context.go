package logging

import (
	"context"
	"regexp"

	"github.com/google/uuid"
)

type Module string

type Environment string

const (
	EnvDev  Environment = "dev"
	EnvProd Environment = "prod"
)

type ServiceInfo struct {
	Name     string
	Version  string
	Revision string
}

type ctxKey int

const (
	requestIDKey ctxKey = iota
	moduleKey
)

var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,128}$`)

// ValidateAndExtractRequestID returns the incoming id when it is safe to log,
// otherwise a freshly generated one.
func ValidateAndExtractRequestID(raw string) string {
	if requestIDPattern.MatchString(raw) {
		return raw
	}

	return uuid.NewString()
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)

	return v
}

func WithModule(ctx context.Context, module Module) context.Context {
	return context.WithValue(ctx, moduleKey, module)
}

func ModuleFrom(ctx context.Context) Module {
	v, _ := ctx.Value(moduleKey).(Module)

	return v
}
