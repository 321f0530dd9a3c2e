package config

import "strings"

// 默认值常量
const (
	defaultAppEnv           = "dev"
	defaultAppLogLevel      = "info"
	defaultAppHTTPAddr      = ":9992"
	defaultSchemaName       = "market_data"
	defaultPolicyAction     = "BUY"
	defaultPolicyConfidence = 0.82
	defaultProcessorWorkers = 4
)

// applyDefaults 为所有子配置应用默认值。
func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Schema.applyDefaults(keys)
	c.Policy.applyDefaults(keys)
	c.Processor.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.http_addr", &a.HTTPAddr, defaultAppHTTPAddr),
	)
	a.LogPath = strings.TrimSpace(a.LogPath)
}

func (s *SchemaConfig) applyDefaults(keys keySet) {
	if s == nil {
		return
	}
	s.Path = strings.TrimSpace(s.Path)
	applyFieldDefaults(keys,
		stringFieldDefault("schema.name", &s.Name, defaultSchemaName),
	)
	s.Name = strings.TrimSpace(s.Name)
}

func (p *PolicyConfig) applyDefaults(keys keySet) {
	if p == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("policy.action", &p.Action, defaultPolicyAction),
		// 0 是合法的置信度，只有未显式设置时才补默认值。
		floatFieldDefault("policy.confidence", &p.Confidence, defaultPolicyConfidence),
	)
	p.Action = strings.ToUpper(strings.TrimSpace(p.Action))
}

func (p *ProcessorConfig) applyDefaults(keys keySet) {
	if p == nil {
		return
	}
	applyFieldDefaults(keys,
		intFieldDefault("processor.workers", &p.Workers, defaultProcessorWorkers),
	)
}

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func intFieldDefault(key string, target *int, def int) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil && *target <= 0 },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func floatFieldDefault(key string, target *float64, def float64) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}
