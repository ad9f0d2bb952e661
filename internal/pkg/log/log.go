package log

import (
	"context"
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
)

type contextKey string

const (
	contextKeyRequestID contextKey = "request_id"
	contextKeyProjectID contextKey = "project_id"
)

// WithRequestID adds request ID to context for logging
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, requestID)
}

// WithProjectID tags the context with the project a request runs against.
func WithProjectID(ctx context.Context, projectID string) context.Context {
	return context.WithValue(ctx, contextKeyProjectID, projectID)
}

// RequestID returns the request ID stored on ctx, if any.
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(contextKeyRequestID).(string); ok {
		return id
	}
	return ""
}

func projectID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(contextKeyProjectID).(string); ok {
		return id
	}
	return ""
}

// formatLog formats log message with the request and project labels present on ctx
func formatLog(ctx context.Context, format string, a ...interface{}) string {
	msg := fmt.Sprintf(format, a...)
	var labels []string
	if id := RequestID(ctx); id != "" {
		labels = append(labels, fmt.Sprintf("[req_id=%s]", id))
	}
	if id := projectID(ctx); id != "" {
		labels = append(labels, fmt.Sprintf("[project=%s]", id))
	}
	if len(labels) == 0 {
		return msg
	}
	return strings.Join(labels, " ") + " " + msg
}

// Info log information
func Info(format string, a ...interface{}) {
	InfoWithContext(context.Background(), format, a...)
}

// InfoWithContext logs information with context (includes request ID if available)
func InfoWithContext(ctx context.Context, format string, a ...interface{}) {
	info := color.New(color.FgWhite, color.BgGreen).SprintFunc()
	fmt.Printf("%s ", info("[INFO] "))
	fmt.Println(formatLog(ctx, format, a...))
}

// Warn log warning
func Warn(format string, a ...interface{}) {
	WarnWithContext(context.Background(), format, a...)
}

// WarnWithContext logs warning with context (includes request ID if available)
func WarnWithContext(ctx context.Context, format string, a ...interface{}) {
	warn := color.New(color.FgWhite, color.BgYellow).SprintFunc()
	fmt.Printf("%s ", warn("[WARN] "))
	fmt.Println(formatLog(ctx, format, a...))
}

// Error log error
func Error(format string, a ...interface{}) {
	ErrorWithContext(context.Background(), format, a...)
}

// ErrorWithContext logs error with context (includes request ID if available)
func ErrorWithContext(ctx context.Context, format string, a ...interface{}) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Printf("%s ", red("[Error]"))
	fmt.Println(formatLog(ctx, format, a...))
}

// Dump renders values for debug output, e.g. a compiled pipeline.
func Dump(a ...interface{}) string {
	return spew.Sdump(a...)
}
