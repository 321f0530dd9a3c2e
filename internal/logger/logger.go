package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"log/slog"
)

var (
	levelVar   slog.LevelVar
	loggerMu   sync.RWMutex
	baseLogger *slog.Logger
)

func init() {
	levelVar.Set(slog.LevelInfo)
	baseLogger = newLogger(os.Stdout)
}

func newLogger(w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: &levelVar})
	return slog.New(handler)
}

// SetOutput 替换全局输出目标，已创建的 Named 句柄同样生效。
func SetOutput(w io.Writer) {
	loggerMu.Lock()
	baseLogger = newLogger(w)
	loggerMu.Unlock()
}

func SetLevel(level string) {
	levelVar.Set(ParseLevel(level))
}

// ParseLevel 将配置中的级别字符串映射为 slog.Level，未知值回落到 info。
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func Enabled(level slog.Level) bool {
	return levelVar.Level() <= level
}

func activeLogger() *slog.Logger {
	loggerMu.RLock()
	l := baseLogger
	loggerMu.RUnlock()
	if l != nil {
		return l
	}
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if baseLogger == nil {
		baseLogger = newLogger(os.Stdout)
	}
	return baseLogger
}

func Debugf(format string, v ...any) {
	activeLogger().Debug(fmt.Sprintf(format, v...))
}

func Infof(format string, v ...any) {
	activeLogger().Info(fmt.Sprintf(format, v...))
}

func Warnf(format string, v ...any) {
	activeLogger().Warn(fmt.Sprintf(format, v...))
}

func Errorf(format string, v ...any) {
	activeLogger().Error(fmt.Sprintf(format, v...))
}

// Logger 是按组件命名的日志句柄，由调用方显式注入。
type Logger struct {
	component string
	attrs     []any
}

// Named 创建带 component 属性的句柄。
func Named(component string) *Logger {
	return &Logger{component: strings.TrimSpace(component)}
}

// With 返回附加了额外属性的副本。
func (l *Logger) With(args ...any) *Logger {
	if l == nil {
		return &Logger{attrs: append([]any(nil), args...)}
	}
	attrs := make([]any, 0, len(l.attrs)+len(args))
	attrs = append(attrs, l.attrs...)
	attrs = append(attrs, args...)
	return &Logger{component: l.component, attrs: attrs}
}

func (l *Logger) Component() string {
	if l == nil {
		return ""
	}
	return l.component
}

func (l *Logger) slog() *slog.Logger {
	base := activeLogger()
	if l == nil {
		return base
	}
	if l.component != "" {
		base = base.With("component", l.component)
	}
	if len(l.attrs) > 0 {
		base = base.With(l.attrs...)
	}
	return base
}

func (l *Logger) Debugf(format string, v ...any) {
	if !Enabled(slog.LevelDebug) {
		return
	}
	l.slog().Debug(fmt.Sprintf(format, v...))
}

func (l *Logger) Infof(format string, v ...any) {
	l.slog().Info(fmt.Sprintf(format, v...))
}

func (l *Logger) Warnf(format string, v ...any) {
	l.slog().Warn(fmt.Sprintf(format, v...))
}

func (l *Logger) Errorf(format string, v ...any) {
	l.slog().Error(fmt.Sprintf(format, v...))
}
