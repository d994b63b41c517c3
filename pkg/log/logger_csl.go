package log

import (
	"context"
	"io"
	"log"
	"os"
)

type CslLogger struct {
	out *log.Logger
}

func NewCslLogger() (*CslLogger, error) {
	return &CslLogger{
		out: log.New(os.Stderr, "", log.LstdFlags),
	}, nil
}

// NewCslLoggerWithWriter dùng cho test để bắt output của logger
func NewCslLoggerWithWriter(w io.Writer) (*CslLogger, error) {
	return &CslLogger{
		out: log.New(w, "", log.LstdFlags),
	}, nil
}

func (l *CslLogger) Info(ctx context.Context, format string, args ...interface{}) {
	l.out.Printf("[INFO] "+format, args...)
}

func (l *CslLogger) Warn(ctx context.Context, format string, args ...interface{}) {
	l.out.Printf("[WARN] "+format, args...)
}

func (l *CslLogger) Error(ctx context.Context, format string, args ...interface{}) {
	l.out.Printf("[ERROR] "+format, args...)
}

func (l *CslLogger) Debug(ctx context.Context, format string, args ...interface{}) {
	l.out.Printf("[DEBUG] "+format, args...)
}

func (l *CslLogger) Notice(ctx context.Context, format string, args ...interface{}) {
	l.out.Printf("[NOTICE] "+format, args...)
}

func (l *CslLogger) Critical(ctx context.Context, format string, args ...interface{}) {
	l.out.Printf("[CRITICAL] "+format, args...)
}
