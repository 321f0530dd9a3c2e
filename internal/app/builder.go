package app

import (
	"fmt"

	"rlsignal/internal/config"
	"rlsignal/internal/logger"
	"rlsignal/internal/processor"
	"rlsignal/internal/schema"
	"rlsignal/internal/signal"
	signalhttp "rlsignal/internal/transport/http/signal"
	"rlsignal/internal/validate"
)

func provideRegistry(cfg *config.Config) (*schema.Registry, error) {
	opts := schema.RegistryOptions{
		Watch:                cfg.Schema.Watch,
		CoerceNumericStrings: cfg.Schema.CoerceNumericStrings,
	}
	if cfg.Schema.UsesBuiltin() {
		return schema.NewDefaultRegistry(opts)
	}
	reg, err := schema.NewRegistry(cfg.Schema.Path, opts)
	if err != nil {
		return nil, err
	}
	if _, ok := reg.Template(cfg.Schema.Name); !ok {
		return nil, fmt.Errorf("schema %q not found in %s (available: %v)",
			cfg.Schema.Name, cfg.Schema.Path, reg.Snapshot().Names())
	}
	if cfg.Schema.Watch {
		reg.OnChange(func(snap schema.Snapshot) {
			if _, ok := snap.Templates[cfg.Schema.Name]; !ok {
				logger.Warnf("schema %q missing after reload v%d, all messages will be rejected", cfg.Schema.Name, snap.Version)
			}
		})
	}
	return reg, nil
}

func provideChecker(cfg *config.Config, reg *schema.Registry) schema.Checker {
	return reg.Checker(cfg.Schema.Name)
}

func provideValidator(checker schema.Checker) (*validate.Validator, error) {
	return validate.New(checker, logger.Named("validator"))
}

func providePolicy(cfg *config.Config) (signal.Policy, error) {
	policy, err := signal.NewConstantPolicy(cfg.Policy.Action, cfg.Policy.Confidence)
	if err != nil {
		return nil, fmt.Errorf("build policy failed: %w", err)
	}
	return policy, nil
}

func provideGenerator(policy signal.Policy) *signal.Generator {
	return signal.NewGenerator(policy, logger.Named("signal"))
}

func provideProcessor(cfg *config.Config, v *validate.Validator, g *signal.Generator) (*processor.Processor, error) {
	return processor.New(processor.Options{
		Validator: v,
		Generator: g,
		Workers:   cfg.Processor.Workers,
		Logger:    logger.Named("processor"),
	})
}

func provideHTTPServer(cfg *config.Config, p *processor.Processor, reg *schema.Registry) (*signalhttp.Server, error) {
	return signalhttp.NewServer(signalhttp.ServerConfig{
		Addr:          cfg.App.HTTPAddr,
		Processor:     p,
		SchemaVersion: reg.Version,
		Logger:        logger.Named("http"),
	})
}
