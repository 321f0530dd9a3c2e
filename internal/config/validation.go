package config

import (
	"fmt"
	"strings"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "warning": true, "error": true,
}

var validActions = map[string]bool{
	"BUY": true, "SELL": true, "HOLD": true,
}

// Validate 重新校验配置，供命令行覆盖字段后调用。
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("nil config")
	}
	return validate(c)
}

// validate 对配置进行基础校验。
func validate(c *Config) error {
	if err := c.App.validate(); err != nil {
		return err
	}
	if err := c.Schema.validate(); err != nil {
		return err
	}
	if err := c.Policy.validate(); err != nil {
		return err
	}
	if err := c.Processor.validate(); err != nil {
		return err
	}
	return nil
}

func (a *AppConfig) validate() error {
	if !validLogLevels[strings.ToLower(strings.TrimSpace(a.LogLevel))] {
		return fmt.Errorf("app.log_level unsupported: %s", a.LogLevel)
	}
	return nil
}

func (s *SchemaConfig) validate() error {
	if s.Name == "" {
		return fmt.Errorf("schema.name cannot be empty")
	}
	if s.Watch && s.UsesBuiltin() {
		return fmt.Errorf("schema.watch requires schema.path")
	}
	return nil
}

func (p *PolicyConfig) validate() error {
	if !validActions[p.Action] {
		return fmt.Errorf("policy.action must be one of BUY/SELL/HOLD, got %q", p.Action)
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		return fmt.Errorf("policy.confidence must be within [0,1], got %v", p.Confidence)
	}
	return nil
}

func (p *ProcessorConfig) validate() error {
	if p.Workers < 1 {
		return fmt.Errorf("processor.workers must be >= 1")
	}
	return nil
}
