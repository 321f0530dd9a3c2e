package signalhttp

import (
	"context"
	"errors"
	"io"
	"net/http"

	"rlsignal/internal/logger"
	"rlsignal/internal/message"
	"rlsignal/internal/processor"
	"rlsignal/internal/validate"

	"github.com/gin-gonic/gin"
)

// Processor 是 HTTP 层依赖的处理能力，*processor.Processor 实现它。
type Processor interface {
	Process(message.RawMessage) (message.EnrichedMessage, error)
	ProcessBatch(context.Context, []message.RawMessage) []processor.Result
}

type handler struct {
	processor Processor
	logger    *logger.Logger
	maxBody   int64
}

type batchItem struct {
	Index  int                     `json:"index"`
	Result message.EnrichedMessage `json:"result,omitempty"`
	Error  string                  `json:"error,omitempty"`
}

func (h *handler) Register(rg *gin.RouterGroup) {
	rg.POST("/signal", h.handleSignal)
	rg.POST("/signal/batch", h.handleBatch)
}

func (h *handler) handleSignal(c *gin.Context) {
	body, ok := h.readBody(c)
	if !ok {
		return
	}
	msg, err := message.Decode(body)
	if err != nil {
		h.fail(c, err)
		return
	}
	out, err := h.processor.Process(msg)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *handler) handleBatch(c *gin.Context) {
	body, ok := h.readBody(c)
	if !ok {
		return
	}
	msgs, err := message.DecodeBatch(body)
	if err != nil {
		h.fail(c, err)
		return
	}
	results := h.processor.ProcessBatch(c.Request.Context(), msgs)
	items := make([]batchItem, len(results))
	for i, res := range results {
		items[i] = batchItem{Index: res.Index, Result: res.Output}
		if res.Err != nil {
			items[i].Error = res.Err.Error()
		}
	}
	c.JSON(http.StatusOK, items)
}

func (h *handler) readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		status := http.StatusBadRequest
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, gin.H{"error": err.Error(), "request_id": c.GetString(requestIDKey)})
		return nil, false
	}
	return body, true
}

func (h *handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	h.logger.With("request_id", c.GetString(requestIDKey)).Warnf("signal request rejected status=%d: %v", status, err)
	c.JSON(status, gin.H{"error": err.Error(), "request_id": c.GetString(requestIDKey)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, message.ErrUndecodable):
		return http.StatusBadRequest
	case errors.Is(err, validate.ErrInvalidMessage):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
