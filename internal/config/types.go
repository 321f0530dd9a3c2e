package config

import "strings"

// Config 是 rlsignal 的主配置载体。
type Config struct {
	App       AppConfig       `toml:"app"`
	Schema    SchemaConfig    `toml:"schema"`
	Policy    PolicyConfig    `toml:"policy"`
	Processor ProcessorConfig `toml:"processor"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	LogPath  string `toml:"log_path"`
	HTTPAddr string `toml:"http_addr"`
}

// SchemaConfig 指定消息契约的来源。Path 为空时使用内置 market_data schema。
type SchemaConfig struct {
	Path                 string `toml:"path"`
	Name                 string `toml:"name"`
	CoerceNumericStrings bool   `toml:"coerce_numeric_strings"`
	Watch                bool   `toml:"watch"`
}

// UsesBuiltin 表示未配置 schema 文件。
func (s SchemaConfig) UsesBuiltin() bool {
	return strings.TrimSpace(s.Path) == ""
}

// PolicyConfig 描述常量策略输出。
type PolicyConfig struct {
	Action     string  `toml:"action"`
	Confidence float64 `toml:"confidence"`
}

type ProcessorConfig struct {
	Workers int `toml:"workers"`
}

// keySet 用于追踪配置文件中显式设置的字段路径。
type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return false
	}
	_, ok := k[path]
	return ok
}

// fieldDefault 描述单个字段的默认值设置规则。
type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
