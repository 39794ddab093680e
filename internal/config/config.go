// Package config loads the dispatcher process's configuration with
// spf13/viper, covering the single service type this binary runs (one
// dispatcher process rather than several per-node-type services).
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config is the whole process's settings, loaded from one file plus
// environment overrides.
type Config struct {
	ID       string `mapstructure:"id"`
	HTTPPort int    `mapstructure:"httpPort"`
	Log      LogConf
	Database DatabaseConf `mapstructure:"database"`
	JWT      JWTConf      `mapstructure:"jwt"`
	Nats     NatsConf     `mapstructure:"nats"`
	AI       AIConf       `mapstructure:"ai"`
}

type LogConf struct {
	Level string `mapstructure:"level"`
}

type DatabaseConf struct {
	Mongo MongoConf `mapstructure:"mongo"`
	Redis RedisConf `mapstructure:"redis"`
}

type MongoConf struct {
	URL         string `mapstructure:"url"`
	DB          string `mapstructure:"db"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	MinPoolSize int    `mapstructure:"minPoolSize"`
	MaxPoolSize int    `mapstructure:"maxPoolSize"`
}

type RedisConf struct {
	Addr         string `mapstructure:"addr"`
	Password     string `mapstructure:"password"`
	PoolSize     int    `mapstructure:"poolSize"`
	MinIdleConns int    `mapstructure:"minIdleConns"`
}

type JWTConf struct {
	Secret string `mapstructure:"secret"`
	Expire int    `mapstructure:"expire"`
}

type NatsConf struct {
	URL string `mapstructure:"url"`
}

// AIConf mirrors the per-game AI flags of the rules, as process-wide
// defaults applied to every game at creation.
type AIConf struct {
	CanPassTurn           bool `mapstructure:"canPassTurn"`
	CanDrawRound          bool `mapstructure:"canDrawRound"`
	DrawTileForRealPlayer bool `mapstructure:"drawTileForRealPlayer"`
	SortOnDraw            bool `mapstructure:"sortOnDraw"`
	WithDeadWall          bool `mapstructure:"withDeadWall"`
}

// Load reads configFile with viper, applies environment overrides (dots
// become underscores, e.g. DATABASE_MONGO_URL), and, when onChange is
// non-nil, watches the file for hot reload, invoking onChange with the
// freshly-parsed Config.
func Load(configFile string, onChange func(Config)) (Config, error) {
	v := viper.New()
	v.SetConfigFile(configFile)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", configFile, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if nodeID := os.Getenv("NODE_ID"); nodeID != "" {
		cfg.ID = nodeID
	}

	if onChange != nil {
		v.WatchConfig()
		v.OnConfigChange(func(_ fsnotify.Event) {
			var next Config
			if err := v.Unmarshal(&next); err != nil {
				return
			}
			onChange(next)
		})
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("httpPort", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("ai.canPassTurn", true)
	v.SetDefault("ai.canDrawRound", true)
	v.SetDefault("ai.drawTileForRealPlayer", false)
	v.SetDefault("ai.sortOnDraw", true)
	v.SetDefault("ai.withDeadWall", true)
}
