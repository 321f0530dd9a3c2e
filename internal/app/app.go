package app

import (
	"context"
	"fmt"

	"rlsignal/internal/config"
	"rlsignal/internal/logger"
	"rlsignal/internal/processor"
	"rlsignal/internal/schema"
	signalhttp "rlsignal/internal/transport/http/signal"

	"golang.org/x/sync/errgroup"
)

// App 负责应用级编排：配置 → schema registry → 处理链 → HTTP 服务。
type App struct {
	cfg       *config.Config
	registry  *schema.Registry
	processor *processor.Processor
	http      *signalhttp.Server
	Summary   *StartupSummary
}

// NewApp 根据配置构建应用对象（不启动）。
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(cfg)
}

func newApp(cfg *config.Config, registry *schema.Registry, proc *processor.Processor, srv *signalhttp.Server) *App {
	return &App{
		cfg:       cfg,
		registry:  registry,
		processor: proc,
		http:      srv,
		Summary:   newStartupSummary(cfg, registry),
	}
}

// Processor 返回校验 + 信号生成处理链。
func (a *App) Processor() *processor.Processor {
	if a == nil {
		return nil
	}
	return a.processor
}

// Registry 返回当前使用的 schema registry。
func (a *App) Registry() *schema.Registry {
	if a == nil {
		return nil
	}
	return a.registry
}

// Serve 启动 HTTP 服务，直到 ctx 取消。
func (a *App) Serve(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.http == nil {
		return fmt.Errorf("http server not initialized")
	}
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Infof("signal http server listening on %s", a.http.Addr())
		if err := a.http.Start(ctx); err != nil {
			return fmt.Errorf("signal http server error: %w", err)
		}
		return nil
	})
	return group.Wait()
}
