package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"rlsignal/internal/app"
	"rlsignal/internal/config"
	"rlsignal/internal/logger"

	"github.com/spf13/cobra"
)

const defaultConfigPath = "configs/config.yaml"

type rootOptions struct {
	configPath string
	logLevel   string
	httpAddr   string
	quiet      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "rlsignal",
		Short:         "Validate market data messages and attach RL signals",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (env RLSIGNAL_CONFIG, default "+defaultConfigPath+")")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override app.log_level")
	root.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "do not print the startup summary")

	root.AddCommand(newProcessCmd(opts), newServeCmd(opts))
	return root
}

// loadConfig 按 --config、RLSIGNAL_CONFIG、默认路径的顺序查找配置；
// 只有默认路径不存在时才回落到内置默认值。
func loadConfig(opts *rootOptions) (*config.Config, error) {
	path := strings.TrimSpace(opts.configPath)
	if path == "" {
		path = strings.TrimSpace(os.Getenv("RLSIGNAL_CONFIG"))
	}
	var (
		cfg *config.Config
		err error
	)
	switch {
	case path != "":
		cfg, err = config.Load(path)
	case fileExists(defaultConfigPath):
		cfg, err = config.Load(defaultConfigPath)
	default:
		cfg, err = config.Default()
	}
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.App.LogLevel = opts.logLevel
	}
	if opts.httpAddr != "" {
		cfg.App.HTTPAddr = opts.httpAddr
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// bootstrap 加载配置、初始化日志并构建 App。返回的 closer 必须在退出前调用。
func bootstrap(opts *rootOptions, logOut io.Writer) (*app.App, func(), error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, err
	}
	logFile, err := setupLogOutput(cfg.App.LogPath, logOut)
	if err != nil {
		return nil, nil, err
	}
	closer := func() {
		if logFile != nil {
			_ = logFile.Close()
		}
	}
	logger.SetLevel(cfg.App.LogLevel)
	a, err := app.NewApp(cfg)
	if err != nil {
		closer()
		return nil, nil, err
	}
	if !opts.quiet {
		a.Summary.Print(os.Stderr)
	}
	return a, closer, nil
}

func setupLogOutput(path string, console io.Writer) (*os.File, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		log.SetOutput(console)
		logger.SetOutput(console)
		return nil, nil
	}
	dir := filepath.Dir(trimmed)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	mw := io.MultiWriter(console, file)
	log.SetOutput(mw)
	logger.SetOutput(mw)
	return file, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
