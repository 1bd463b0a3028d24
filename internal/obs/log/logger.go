package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents log levels. Kept as our own enum (rather than zapcore.Level
// directly) so call sites don't take a zap import just to pick a level.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Logger wraps a zap.Logger. The scope/msg/fields call shape matches the
// caller conventions used throughout the run loop: Info(scope, msg, fields).
type Logger struct {
	zap     *zap.Logger
	service string
}

var globalLogger *Logger

// Init initializes the global logger. Logs go to logPath only; if the
// directory or file can't be opened, it falls back to stderr so a turn
// never fails because of a logging problem. Events are never rendered
// through the logger — turn output is exclusively the event stream.
func Init(logPath string, level Level, serviceName string) error {
	logDir := filepath.Dir(logPath)
	if logDir != "." {
		if err := os.MkdirAll(logDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to create log directory %s: %v\n", logDir, err)
			globalLogger = newZapLogger(os.Stderr, level, serviceName)
			return nil
		}
	}

	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to open log file %s: %v\n", logPath, err)
		globalLogger = newZapLogger(os.Stderr, level, serviceName)
		return nil
	}

	globalLogger = newZapLogger(file, level, serviceName)
	return nil
}

func newZapLogger(w *os.File, level Level, serviceName string) *Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(w),
		zap.NewAtomicLevelAt(level.zapLevel()),
	)
	z := zap.New(core).With(zap.String("service", serviceName))
	return &Logger{zap: z, service: serviceName}
}

func (l *Logger) log(level Level, scope string, msg string, ctx map[string]interface{}) {
	_, file, line, ok := runtime.Caller(2)
	caller := "unknown:0"
	if ok {
		if root, err := os.Getwd(); err == nil {
			if rel, err := filepath.Rel(root, file); err == nil {
				caller = fmt.Sprintf("%s:%d", rel, line)
			} else {
				caller = fmt.Sprintf("%s:%d", filepath.Base(file), line)
			}
		} else {
			caller = fmt.Sprintf("%s:%d", filepath.Base(file), line)
		}
	}

	fields := make([]zap.Field, 0, len(ctx)+2)
	fields = append(fields, zap.String("scope", scope), zap.String("caller", caller))
	for k, v := range ctx {
		fields = append(fields, zap.Any(k, v))
	}

	switch level {
	case DEBUG:
		l.zap.Debug(msg, fields...)
	case WARN:
		l.zap.Warn(msg, fields...)
	case ERROR:
		l.zap.Error(msg, fields...)
	default:
		l.zap.Info(msg, fields...)
	}
}

// Global functions

func Info(scope string, msg string, args ...map[string]interface{}) {
	if globalLogger == nil {
		return
	}
	globalLogger.log(INFO, scope, msg, getCtx(args))
}

func Error(scope string, msg string, args ...map[string]interface{}) {
	if globalLogger == nil {
		return
	}
	globalLogger.log(ERROR, scope, msg, getCtx(args))
}

func Debug(scope string, msg string, args ...map[string]interface{}) {
	if globalLogger == nil {
		return
	}
	globalLogger.log(DEBUG, scope, msg, getCtx(args))
}

func Warn(scope string, msg string, args ...map[string]interface{}) {
	if globalLogger == nil {
		return
	}
	globalLogger.log(WARN, scope, msg, getCtx(args))
}

// Sync flushes any buffered log entries. Safe to call even if Init was
// never called.
func Sync() error {
	if globalLogger == nil {
		return nil
	}
	return globalLogger.zap.Sync()
}

func getCtx(args []map[string]interface{}) map[string]interface{} {
	if len(args) > 0 {
		return args[0]
	}
	return nil
}
