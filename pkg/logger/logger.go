// Package logger configures logrus and carries request scoped fields through a context.
package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type fieldsKey struct{}

const (
	RequestIDField = "request_id"
	// RequestIDHeader carries the request id between services
	RequestIDHeader = "X-Request-ID"
)

var base = logrus.New()

func init() {
	base.SetOutput(os.Stdout)
	base.SetFormatter(&logrus.JSONFormatter{})
	base.SetLevel(logrus.InfoLevel)
}

// Init applies the level and format from configuration. Unknown levels fall back to info.
func Init(level, format string) {
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	base.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "text":
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		base.SetFormatter(&logrus.JSONFormatter{})
	}
}

// SetOutput redirects log output, mostly useful in tests
func SetOutput(w io.Writer) {
	base.SetOutput(w)
}

// Base returns the root logger
func Base() *logrus.Logger {
	return base
}

// Logger returns an entry carrying every field stored in ctx
func Logger(ctx context.Context) *logrus.Entry {
	if ctx == nil {
		return logrus.NewEntry(base)
	}
	fields, ok := ctx.Value(fieldsKey{}).(logrus.Fields)
	if !ok {
		return logrus.NewEntry(base)
	}
	return base.WithFields(fields)
}

// WithFields returns a context whose logger includes fields on top of any already present
func WithFields(ctx context.Context, fields logrus.Fields) context.Context {
	merged := logrus.Fields{}
	if existing, ok := ctx.Value(fieldsKey{}).(logrus.Fields); ok {
		for k, v := range existing {
			merged[k] = v
		}
	}
	for k, v := range fields {
		merged[k] = v
	}
	return context.WithValue(ctx, fieldsKey{}, merged)
}

// WithRequestID tags the context with a request id, generating one when id is empty
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = NewRequestID()
	}
	return WithFields(ctx, logrus.Fields{RequestIDField: id})
}

// RequestID returns the request id stored in ctx, if any
func RequestID(ctx context.Context) string {
	if fields, ok := ctx.Value(fieldsKey{}).(logrus.Fields); ok {
		if id, ok := fields[RequestIDField].(string); ok {
			return id
		}
	}
	return ""
}

func NewRequestID() string {
	return uuid.NewString()
}
