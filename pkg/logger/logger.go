package logger

import (
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"auroramall/config"
)

// Logger 封装zap日志库
type Logger struct {
	*zap.Logger
	fileLogger *lumberjack.Logger
}

// NewLogger 创建一个新的日志记录器
func NewLogger(level string) *Logger {
	return NewLoggerWithConfig(level, config.LogFileConfig{})
}

// NewLoggerWithConfig 使用配置创建一个新的日志记录器
func NewLoggerWithConfig(level string, fileCfg config.LogFileConfig) *Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	enabler := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapLevel
	})

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.Lock(os.Stdout), enabler),
	}

	var fileLogger *lumberjack.Logger
	if fileCfg.Enabled && fileCfg.Path != "" {
		logDir := filepath.Dir(fileCfg.Path)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			panic(err)
		}

		fileLogger = &lumberjack.Logger{
			Filename:   filepath.Join(logDir, time.Now().Format("2006-01-02")+".log"),
			MaxSize:    fileCfg.MaxSize,
			MaxBackups: fileCfg.MaxBackups,
			MaxAge:     fileCfg.MaxAge,
			Compress:   fileCfg.Compress,
			LocalTime:  true,
		}

		// 每天零点切换日志文件名并轮转
		go func() {
			for {
				now := time.Now()
				next := now.Add(24 * time.Hour)
				next = time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, next.Location())
				timer := time.NewTimer(next.Sub(now))
				<-timer.C

				fileLogger.Filename = filepath.Join(logDir, time.Now().Format("2006-01-02")+".log")
				fileLogger.Rotate()
			}
		}()

		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(fileLogger), enabler))
	}

	zapLogger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
	return &Logger{Logger: zapLogger, fileLogger: fileLogger}
}

// Info 记录信息级别日志
func (l *Logger) Info(msg string, fields ...interface{}) {
	l.Logger.Info(msg, fieldsToZapFields(fields...)...)
}

// Debug 记录调试级别日志
func (l *Logger) Debug(msg string, fields ...interface{}) {
	l.Logger.Debug(msg, fieldsToZapFields(fields...)...)
}

// Warn 记录警告级别日志
func (l *Logger) Warn(msg string, fields ...interface{}) {
	l.Logger.Warn(msg, fieldsToZapFields(fields...)...)
}

// Error 记录错误级别日志
func (l *Logger) Error(msg string, fields ...interface{}) {
	l.Logger.Error(msg, fieldsToZapFields(fields...)...)
}

// Fatal 记录致命错误日志并退出程序
func (l *Logger) Fatal(msg string, fields ...interface{}) {
	l.Logger.Fatal(msg, fieldsToZapFields(fields...)...)
}

// 将通用接口转换为zap字段
func fieldsToZapFields(fields ...interface{}) []zap.Field {
	zapFields := make([]zap.Field, 0, len(fields))
	for i := 0; i < len(fields); i++ {
		switch f := fields[i].(type) {
		case error:
			zapFields = append(zapFields, zap.Error(f))
		case string:
			if i+1 < len(fields) {
				zapFields = append(zapFields, zap.Any(f, fields[i+1]))
				i++
			}
		default:
			zapFields = append(zapFields, zap.Any("field", f))
		}
	}
	return zapFields
}
