package providers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"signalkit/internal/structures"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	v.SetDefault("persistence.saveInterval", "30s")
	v.SetDefault("site.cookiePath", "/")
	v.SetDefault("cache.ttl", 5)
	v.SetDefault("rateLimit.perMinute", 60)
	v.SetDefault("rateLimit.burst", 20)
	v.SetDefault("rateLimit.idleTTL", "10m")

	_ = v.BindEnv("logger.level", "SIGNALKIT_LOG_LEVEL")
	_ = v.BindEnv("persistence.saveInterval", "SIGNALKIT_SAVE_INTERVAL")
	_ = v.BindEnv("site.secret", "SIGNALKIT_SECRET")
	_ = v.BindEnv("admin.token", "SIGNALKIT_ADMIN_TOKEN")
	_ = v.BindEnv("cache.enabled", "SIGNALKIT_CACHE_ENABLED")
	_ = v.BindEnv("cache.size", "SIGNALKIT_CACHE_SIZE")
	_ = v.BindEnv("rateLimit.trustProxy", "SIGNALKIT_TRUST_PROXY")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "SignalKit"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
