// Package httpapi 通过 HTTP 暴露已注册的命令
//
//	GET  /commands                 命令列表
//	POST /commands/:name/run       验证并执行
//	POST /commands/:name/validate  只验证
//
// 请求体是 JSON 对象，作为命令输入。
package httpapi

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"katydid-common-command/pkg/mutation/core"
	"katydid-common-command/pkg/mutation/registry"
	"katydid-common-command/pkg/runid"
)

// HeaderRequestID 请求编号响应头
const HeaderRequestID = "X-Request-ID"

// Handler 命令 HTTP 处理器
type Handler struct {
	registry     *registry.Registry
	logger       *zap.Logger
	raiseOnError bool
	ids          *runid.Generator
}

// Option 处理器选项
type Option func(*Handler)

// WithLogger 设置日志记录器
func WithLogger(logger *zap.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithRaiseOnError 验证失败以 FailedValidationError 形式处理
func WithRaiseOnError(raise bool) Option {
	return func(h *Handler) {
		h.raiseOnError = raise
	}
}

// WithRequestIDs 为每个请求生成编号
func WithRequestIDs(ids *runid.Generator) Option {
	return func(h *Handler) {
		h.ids = ids
	}
}

// NewHandler 创建处理器
func NewHandler(reg *registry.Registry, opts ...Option) *Handler {
	h := &Handler{registry: reg}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	return h
}

// NewRouter 创建 gin 路由
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.logger, h.ids))
	h.Register(r)
	return r
}

// Register 注册路由
func (h *Handler) Register(r gin.IRouter) {
	g := r.Group("/commands")
	g.GET("", h.list)
	g.POST("/:name/run", h.run)
	g.POST("/:name/validate", h.validate)
}

func (h *Handler) list(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"commands": h.registry.Names()})
}

func (h *Handler) run(c *gin.Context) {
	cmd, inputs, ok := h.prepare(c)
	if !ok {
		return
	}

	result, err := cmd.Run(c.Request.Context(), inputs, h.runOptions()...)
	if err != nil {
		h.fail(c, cmd.Name(), err)
		return
	}

	if !result.Success {
		c.JSON(http.StatusUnprocessableEntity, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) validate(c *gin.Context) {
	cmd, inputs, ok := h.prepare(c)
	if !ok {
		return
	}

	result, err := cmd.Validate(c.Request.Context(), inputs, h.runOptions()...)
	if err != nil {
		h.fail(c, cmd.Name(), err)
		return
	}

	if !result.IsValid {
		c.JSON(http.StatusUnprocessableEntity, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// prepare 查找命令并解析输入
func (h *Handler) prepare(c *gin.Context) (core.Command, core.Inputs, bool) {
	name := c.Param("name")
	cmd, ok := h.registry.Get(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "command not found", "command": name})
		return nil, nil, false
	}

	inputs := core.Inputs{}
	if err := c.ShouldBindJSON(&inputs); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "detail": err.Error()})
		return nil, nil, false
	}

	return cmd, inputs, true
}

func (h *Handler) runOptions() []core.RunOption {
	if h.raiseOnError {
		return []core.RunOption{core.RaiseOnError()}
	}
	return nil
}

// fail 生命周期错误返回 500，显式要求的验证失败错误返回 422
func (h *Handler) fail(c *gin.Context, name string, err error) {
	var failed *core.FailedValidationError
	if errors.As(err, &failed) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": failed.Error(), "errors": failed.Errors})
		return
	}

	var domain *core.ValidationError
	if errors.As(err, &domain) {
		c.JSON(http.StatusConflict, gin.H{"error": domain.Error(), "code": domain.Code})
		return
	}

	h.logger.Error("command failed", zap.String("mutation", name), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// requestLogger 请求日志中间件，ids 不为空时附加请求编号
func requestLogger(logger *zap.Logger, ids *runid.Generator) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		fields := make([]zap.Field, 0, 5)
		if ids != nil {
			if id, err := ids.NextString(); err == nil {
				c.Header(HeaderRequestID, id)
				fields = append(fields, zap.String("request_id", id))
			}
		}

		c.Next()

		fields = append(fields,
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
		logger.Info("request", fields...)
	}
}
