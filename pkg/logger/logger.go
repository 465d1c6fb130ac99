// Package logger предоставляет тонкую обёртку над log/slog с printf-подобным интерфейсом.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// callerSkipFrames: getCaller -> log -> Infof/Warnf/... -> вызывающий код
const callerSkipFrames = 3

// Logger описывает логгер, который принимают все слои приложения.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(err error, format string, args ...any)
}

// SlogLogger реализует Logger поверх slog.
type SlogLogger struct {
	logger *slog.Logger
	level  *slog.LevelVar
}

// NewSlogLogger создаёт JSON-логгер, пишущий в stdout с уровнем info.
func NewSlogLogger() *SlogLogger {
	return New(os.Stdout, slog.LevelInfo)
}

// New создаёт логгер, пишущий в w с заданным уровнем.
func New(w io.Writer, level slog.Level) *SlogLogger {
	lv := &slog.LevelVar{}
	lv.Set(level)

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lv})

	return &SlogLogger{
		logger: slog.New(h),
		level:  lv,
	}
}

// With возвращает логгер с дополнительными атрибутами.
func (l *SlogLogger) With(args ...any) *SlogLogger {
	return &SlogLogger{logger: l.logger.With(args...), level: l.level}
}

func (l *SlogLogger) Debugf(format string, args ...any) {
	l.log(slog.LevelDebug, nil, format, args...)
}

func (l *SlogLogger) Infof(format string, args ...any) {
	l.log(slog.LevelInfo, nil, format, args...)
}

func (l *SlogLogger) Warnf(format string, args ...any) {
	l.log(slog.LevelWarn, nil, format, args...)
}

func (l *SlogLogger) Errorf(err error, format string, args ...any) {
	l.log(slog.LevelError, err, format, args...)
}

func (l *SlogLogger) log(level slog.Level, err error, format string, args ...any) {
	ctx := context.Background()
	if !l.logger.Enabled(ctx, level) {
		return
	}

	attrs := []slog.Attr{slog.String("source", getCaller())}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}

	l.logger.LogAttrs(ctx, level, fmt.Sprintf(format, args...), attrs...)
}

// SetLevelString разбирает и устанавливает уровень логирования.
// Принимает: debug, info, warn/warning, error (без учёта регистра).
func (l *SlogLogger) SetLevelString(level string) error {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		l.level.Set(slog.LevelDebug)
	case "", "info":
		l.level.Set(slog.LevelInfo)
	case "warn", "warning":
		l.level.Set(slog.LevelWarn)
	case "error":
		l.level.Set(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level: %s", level)
	}
	return nil
}

// getCaller возвращает место вызова в формате dir/file.go:line.
func getCaller() string {
	_, file, line, ok := runtime.Caller(callerSkipFrames)
	if !ok {
		return "unknown:0"
	}

	return fmt.Sprintf("%s/%s:%d", filepath.Base(filepath.Dir(file)), filepath.Base(file), line)
}

// Nop — логгер, который ничего не пишет. Используется в тестах.
type Nop struct{}

func NewNop() Nop { return Nop{} }

func (Nop) Debugf(string, ...any)        {}
func (Nop) Infof(string, ...any)         {}
func (Nop) Warnf(string, ...any)         {}
func (Nop) Errorf(error, string, ...any) {}
