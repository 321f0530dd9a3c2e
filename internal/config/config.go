package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// EnvPrefix 是单个配置项环境变量覆盖的前缀，例如 RLSIGNAL_POLICY_CONFIDENCE。
const EnvPrefix = "RLSIGNAL"

var envKeys = []string{
	"app.env", "app.log_level", "app.log_path", "app.http_addr",
	"schema.path", "schema.name", "schema.coerce_numeric_strings", "schema.watch",
	"policy.action", "policy.confidence",
	"processor.workers",
}

// Load 读取配置文件（含 include），叠加环境变量后应用默认值并校验。
func Load(path string) (*Config, error) {
	files, err := newIncludeResolver().resolve(path)
	if err != nil {
		return nil, err
	}
	v := newViper()
	for _, file := range files {
		if err := mergeConfigFile(v, file); err != nil {
			return nil, fmt.Errorf("reading config file failed (%s): %w", file, err)
		}
	}
	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	resolveRelativePaths(cfg, files[len(files)-1])
	return cfg, nil
}

// Default 返回只由默认值和环境变量构成的配置，用于没有配置文件的场景。
func Default() (*Config, error) {
	return decode(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "toml"
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	cfg.applyDefaults(explicitKeys(v))
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// explicitKeys 收集文件或环境变量中显式出现的配置项，默认值只补未出现的键。
func explicitKeys(v *viper.Viper) keySet {
	keys := make(keySet)
	for _, key := range v.AllKeys() {
		if v.IsSet(key) {
			keys.mark(key)
		}
	}
	return keys
}

// resolveRelativePaths 让 schema.path 相对于主配置文件所在目录解析。
func resolveRelativePaths(cfg *Config, mainFile string) {
	if cfg.Schema.UsesBuiltin() || filepath.IsAbs(cfg.Schema.Path) {
		return
	}
	cfg.Schema.Path = filepath.Join(filepath.Dir(mainFile), cfg.Schema.Path)
}
