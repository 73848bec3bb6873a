package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Level = zerolog.Level

const (
	// TraceLevel 跟踪级别
	TraceLevel = zerolog.TraceLevel
	// DebugLevel 调试级别
	DebugLevel = zerolog.DebugLevel
	// InfoLevel 信息级别
	InfoLevel = zerolog.InfoLevel
	// WarnLevel 警告级别
	WarnLevel = zerolog.WarnLevel
	// ErrorLevel 错误级别
	ErrorLevel = zerolog.ErrorLevel
	// FatalLevel 致命错误级别
	FatalLevel = zerolog.FatalLevel
	// Disabled 禁用日志
	Disabled = zerolog.Disabled
)

// Logger 日志记录器
type Logger struct {
	l zerolog.Logger
}

func init() {
	zerolog.TimeFieldFormat = time.DateTime
	zerolog.LevelFieldName = "level"
	zerolog.MessageFieldName = "message"
	zerolog.TimestampFieldName = "time"
}

// NewConsoleWriter 创建终端输出格式
func NewConsoleWriter(out io.Writer) zerolog.ConsoleWriter {
	console := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.TimeOnly,
	}
	console.FormatTimestamp = func(i interface{}) string {
		return fmt.Sprintf("[%s] ", i)
	}
	console.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	console.FormatMessage = func(i interface{}) string {
		if i == nil {
			return ""
		}
		return fmt.Sprintf(" %s", i)
	}
	console.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf(" %s=", i)
	}
	console.FormatFieldValue = func(i interface{}) string {
		return fmt.Sprintf("%v", i)
	}
	return console
}

// NewLogger 创建新的日志记录器，默认输出到标准错误
func NewLogger(ops ...LoggerOption) *Logger {
	l := zerolog.New(NewConsoleWriter(os.Stderr)).With().Timestamp().Logger()
	for _, o := range ops {
		l = o(l)
	}
	return &Logger{l: l}
}

// ParseLevel 解析日志级别字符串，无法识别时返回InfoLevel
func ParseLevel(level string) Level {
	lv, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lv == zerolog.NoLevel {
		return InfoLevel
	}
	return lv
}

// SetLevel 设置日志级别
func (my *Logger) SetLevel(level Level) {
	my.l = my.l.Level(level)
}

// GetLevel 当前日志级别
func (my *Logger) GetLevel() Level {
	return my.l.GetLevel()
}

// With 返回一个带有上下文字段的新Logger
func (my *Logger) With() zerolog.Context {
	return my.l.With()
}

// Zerolog 返回底层zerolog实例，供第三方中间件使用
func (my *Logger) Zerolog() *zerolog.Logger {
	return &my.l
}

func (my *Logger) Trace() *zerolog.Event { return my.l.Trace() }
func (my *Logger) Debug() *zerolog.Event { return my.l.Debug() }
func (my *Logger) Info() *zerolog.Event  { return my.l.Info() }
func (my *Logger) Warn() *zerolog.Event  { return my.l.Warn() }
func (my *Logger) Error() *zerolog.Event { return my.l.Error() }
func (my *Logger) Fatal() *zerolog.Event { return my.l.Fatal() }

// 全局默认logger实例
var std = NewLogger(WithLevel(InfoLevel))

// Default 返回默认logger实例
func Default() *Logger { return std }

// SetDefault 设置默认logger实例
func SetDefault(l *Logger) {
	if l != nil {
		std = l
	}
}

// SetLevel 设置默认logger的日志级别
func SetLevel(level Level) { std.SetLevel(level) }

// 全局方法
func Trace() *zerolog.Event { return std.Trace() }
func Debug() *zerolog.Event { return std.Debug() }
func Info() *zerolog.Event  { return std.Info() }
func Warn() *zerolog.Event  { return std.Warn() }
func Error() *zerolog.Event { return std.Error() }
func Fatal() *zerolog.Event { return std.Fatal() }
