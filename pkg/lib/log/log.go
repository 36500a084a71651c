// Package log 提供 IBMesh 统一日志接口
//
// 基于 Go 标准库 log/slog 封装，提供简洁的日志 API。
// 直接使用，无需抽象接口。
package log

import (
	"io"
	"log/slog"
	"os"
)

// 日志级别常量（从 slog 导出，方便使用）
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// SetDefault 设置默认 logger
func SetDefault(l *slog.Logger) {
	slog.SetDefault(l)
}

// New 创建新的文本格式 logger
func New(w io.Writer, opts *slog.HandlerOptions) *slog.Logger {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// SetOutput 将默认 logger 的输出重定向到指定 Writer
func SetOutput(w io.Writer) {
	SetOutputWithLevel(w, slog.LevelInfo)
}

// SetOutputWithLevel 同时设置日志输出目标和级别
func SetOutputWithLevel(w io.Writer, level slog.Level) {
	slog.SetDefault(New(w, &slog.HandlerOptions{Level: level}))
}

// SetLevel 设置默认 logger 的日志级别
func SetLevel(level slog.Level) {
	SetOutputWithLevel(os.Stderr, level)
}

// ============================================================================
//                              LazyLogger
// ============================================================================

// LazyLogger 懒加载 logger
//
// 每次日志调用时都从 slog.Default() 获取最新的 handler，
// 支持在运行时动态切换日志输出目标。
//
// 使用方式：
//
//	var logger = log.Logger("core/cm")
//	logger.Info("interface created", "max", 32)
type LazyLogger struct {
	component string
}

// Logger 返回带组件名的 LazyLogger
func Logger(component string) *LazyLogger {
	return &LazyLogger{component: component}
}

// Debug 输出 Debug 级别日志
func (l *LazyLogger) Debug(msg string, args ...any) {
	slog.Default().With("component", l.component).Debug(msg, args...)
}

// Info 输出 Info 级别日志
func (l *LazyLogger) Info(msg string, args ...any) {
	slog.Default().With("component", l.component).Info(msg, args...)
}

// Warn 输出 Warn 级别日志
func (l *LazyLogger) Warn(msg string, args ...any) {
	slog.Default().With("component", l.component).Warn(msg, args...)
}

// Error 输出 Error 级别日志
func (l *LazyLogger) Error(msg string, args ...any) {
	slog.Default().With("component", l.component).Error(msg, args...)
}

// With 添加额外的属性
func (l *LazyLogger) With(args ...any) *slog.Logger {
	return slog.Default().With("component", l.component).With(args...)
}

func init() {
	slog.SetDefault(New(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
