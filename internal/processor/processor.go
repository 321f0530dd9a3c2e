// Package processor 串联校验与信号生成两个阶段。
package processor

import (
	"context"
	"errors"
	"fmt"

	"rlsignal/internal/logger"
	"rlsignal/internal/message"
	"rlsignal/internal/signal"
	"rlsignal/internal/validate"

	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 4

// MessageValidator 是校验阶段的能力接口，*validate.Validator 实现它。
type MessageValidator interface {
	Validate(message.RawMessage) (message.ValidatedMessage, error)
}

// SignalGenerator 是增强阶段的能力接口，*signal.Generator 实现它。
type SignalGenerator interface {
	Generate(message.ValidatedMessage) message.EnrichedMessage
}

var (
	_ MessageValidator = (*validate.Validator)(nil)
	_ SignalGenerator  = (*signal.Generator)(nil)
)

// Processor 先校验再生成信号，两步均无共享状态。
type Processor struct {
	validator MessageValidator
	generator SignalGenerator
	workers   int
	logger    *logger.Logger
}

// Options 描述 Processor 的依赖。
type Options struct {
	Validator MessageValidator
	Generator SignalGenerator
	// Workers 是批处理的最大并发数，<=0 时使用默认值。
	Workers int
	Logger  *logger.Logger
}

func New(opts Options) (*Processor, error) {
	if opts.Validator == nil {
		return nil, errors.New("processor requires a validator")
	}
	if opts.Generator == nil {
		return nil, errors.New("processor requires a signal generator")
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.Logger == nil {
		opts.Logger = logger.Named("processor")
	}
	return &Processor{
		validator: opts.Validator,
		generator: opts.Generator,
		workers:   opts.Workers,
		logger:    opts.Logger,
	}, nil
}

// Process 校验并增强单条消息。校验失败时不产生任何输出。
func (p *Processor) Process(msg message.RawMessage) (message.EnrichedMessage, error) {
	validated, err := p.validator.Validate(msg)
	if err != nil {
		return nil, err
	}
	return p.generator.Generate(validated), nil
}

// ProcessJSON 解码一条 JSON 消息，处理后重新编码。
func (p *Processor) ProcessJSON(raw []byte) ([]byte, error) {
	msg, err := message.Decode(raw)
	if err != nil {
		return nil, err
	}
	out, err := p.Process(msg)
	if err != nil {
		return nil, err
	}
	return message.Encode(out)
}

// Result 是批处理中单条消息的结果。
type Result struct {
	Index  int
	Output message.EnrichedMessage
	Err    error
}

// ProcessBatch 以有限并发处理一批消息，结果与输入一一对应。
// 单条失败不会影响其他消息；ctx 取消后尚未开始的消息以 ctx.Err() 结束。
func (p *Processor) ProcessBatch(ctx context.Context, msgs []message.RawMessage) []Result {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]Result, len(msgs))
	if len(msgs) == 0 {
		return results
	}
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.workers)
	for i := range msgs {
		i := i
		results[i].Index = i
		if err := groupCtx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Output, results[i].Err = p.processSafe(msgs[i])
			return nil
		})
	}
	_ = group.Wait()

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	p.logger.Infof("batch processed total=%d failed=%d", len(msgs), failed)
	return results
}

func (p *Processor) processSafe(msg message.RawMessage) (out message.EnrichedMessage, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			p.logger.Errorf("processor panic: %v", rec)
			err = fmt.Errorf("processor panic: %v", rec)
		}
	}()
	return p.Process(msg)
}
