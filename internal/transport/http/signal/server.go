package signalhttp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"rlsignal/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultAddr     = ":9992"
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// Server 对外暴露信号生成接口。
type Server struct {
	addr   string
	router *gin.Engine
}

// ServerConfig 描述 HTTP 服务依赖。
type ServerConfig struct {
	Addr      string
	Processor Processor
	// SchemaVersion 用于 /healthz 展示当前 schema 快照版本，可为空。
	SchemaVersion func() int64
	Logger        *logger.Logger
	// MaxBodyBytes 限制请求体大小，<=0 时使用 1MiB。
	MaxBodyBytes int64
}

// NewServer 构建 HTTP server。
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Processor == nil {
		return nil, errors.New("signal http server requires a processor")
	}
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Named("http")
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger(cfg.Logger))

	router.GET("/healthz", func(c *gin.Context) {
		resp := gin.H{"status": "ok"}
		if cfg.SchemaVersion != nil {
			resp["schema_version"] = cfg.SchemaVersion()
		}
		c.JSON(http.StatusOK, resp)
	})
	h := &handler{processor: cfg.Processor, logger: cfg.Logger, maxBody: cfg.MaxBodyBytes}
	h.Register(router.Group("/api"))

	return &Server{addr: cfg.Addr, router: router}, nil
}

// Handler 暴露底层 http.Handler，便于测试或挂载到其他 server。
func (s *Server) Handler() http.Handler {
	if s == nil {
		return nil
	}
	return s.router
}

// Addr 返回监听地址。
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Start 启动 HTTP 服务，直到 ctx 取消或出现错误。
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debugf("HTTP %s %s status=%d ip=%s dur=%s id=%s",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), c.ClientIP(), time.Since(start), c.GetString(requestIDKey))
	}
}
