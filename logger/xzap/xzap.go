package xzap

import (
	"context"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Config 日志配置
type Config struct {
	ServiceName string `toml:"service_name" mapstructure:"service_name" json:"service_name"` // 服务名，作为固定字段输出
	Mode        string `toml:"mode" mapstructure:"mode" json:"mode"`                         // console / file
	Path        string `toml:"path" mapstructure:"path" json:"path"`                         // 日志文件路径 (file 模式)
	Level       string `toml:"level" mapstructure:"level" json:"level"`                      // debug / info / warn / error
	Compress    bool   `toml:"compress" mapstructure:"compress" json:"compress"`             // 是否压缩轮转出的旧日志
	KeepDays    int    `toml:"keep_days" mapstructure:"keep_days" json:"keep_days"`          // 旧日志保留天数
	MaxSize     int    `toml:"max_size" mapstructure:"max_size" json:"max_size"`             // 单个日志文件大小上限 (MB)
	MaxBackups  int    `toml:"max_backups" mapstructure:"max_backups" json:"max_backups"`    // 旧日志文件个数上限
}

var (
	mu     sync.RWMutex
	global = zap.NewNop()
)

// SetUp 按配置初始化全局 logger，后续通过 WithContext 获取
func SetUp(c Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if err := level.UnmarshalText([]byte(c.Level)); err != nil && c.Level != "" {
		return nil, err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var ws zapcore.WriteSyncer
	var enc zapcore.Encoder
	if c.Mode == "file" && c.Path != "" {
		ws = zapcore.AddSync(&lumberjack.Logger{
			Filename:   c.Path,
			MaxSize:    c.MaxSize,
			MaxAge:     c.KeepDays,
			MaxBackups: c.MaxBackups,
			Compress:   c.Compress,
		})
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		ws = zapcore.AddSync(os.Stdout)
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	logger := zap.New(zapcore.NewCore(enc, ws, level), zap.AddCaller())
	if c.ServiceName != "" {
		logger = logger.With(zap.String("service", c.ServiceName))
	}

	mu.Lock()
	global = logger
	mu.Unlock()

	return logger, nil
}

// WithContext 返回绑定了 context 的 logger
// 目前 context 仅作为调用习惯保留，未注入额外字段
func WithContext(_ context.Context) *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}
