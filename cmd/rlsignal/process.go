package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"rlsignal/internal/logger"
	"rlsignal/internal/message"
	"rlsignal/internal/processor"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const maxLineBytes = 4 << 20

func newProcessCmd(opts *rootOptions) *cobra.Command {
	var chunk int
	cmd := &cobra.Command{
		Use:   "process [file]",
		Short: "Read JSON lines, write enriched JSON lines to stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closer, err := bootstrap(opts, os.Stderr)
			if err != nil {
				return err
			}
			defer closer()

			in := io.Reader(os.Stdin)
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			ctx, cancel := signalContext()
			defer cancel()

			stats, err := runProcess(ctx, a.Processor(), in, cmd.OutOrStdout(), chunk)
			logger.Infof("process finished total=%d ok=%d failed=%d", stats.total, stats.ok, stats.failed)
			if err != nil {
				return err
			}
			if stats.failed > 0 {
				return fmt.Errorf("%d of %d messages failed", stats.failed, stats.total)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&chunk, "chunk", 64, "messages processed concurrently per chunk")
	return cmd
}

type processStats struct {
	total  int
	ok     int
	failed int
}

type pendingLine struct {
	lineNo  int
	traceID string
	msg     message.RawMessage
}

type batchProcessor interface {
	ProcessBatch(context.Context, []message.RawMessage) []processor.Result
}

// runProcess 逐行解码，按 chunk 分批处理，输出顺序与输入一致。
// 失败的行只记录日志，不写入 out。
func runProcess(ctx context.Context, p batchProcessor, in io.Reader, out io.Writer, chunk int) (processStats, error) {
	if chunk <= 0 {
		chunk = 1
	}
	var stats processStats
	w := bufio.NewWriter(out)
	defer w.Flush()

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	pending := make([]pendingLine, 0, chunk)
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		msgs := make([]message.RawMessage, len(pending))
		for i, pl := range pending {
			msgs[i] = pl.msg
		}
		for i, res := range p.ProcessBatch(ctx, msgs) {
			pl := pending[i]
			if res.Err != nil {
				stats.failed++
				logger.Named("cli").With("trace_id", pl.traceID).Errorf("line %d rejected: %v", pl.lineNo, res.Err)
				continue
			}
			buf, err := message.Encode(res.Output)
			if err != nil {
				stats.failed++
				logger.Named("cli").With("trace_id", pl.traceID).Errorf("line %d encode failed: %v", pl.lineNo, err)
				continue
			}
			stats.ok++
			if _, err := w.Write(append(buf, '\n')); err != nil {
				return err
			}
		}
		pending = pending[:0]
		return w.Flush()
	}

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		stats.total++
		traceID := uuid.NewString()
		msg, err := message.Decode(line)
		if err != nil {
			stats.failed++
			logger.Named("cli").With("trace_id", traceID).Errorf("line %d undecodable: %v", lineNo, err)
			continue
		}
		pending = append(pending, pendingLine{lineNo: lineNo, traceID: traceID, msg: msg})
		if len(pending) >= chunk {
			if err := flush(); err != nil {
				return stats, err
			}
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("read input failed: %w", err)
	}
	return stats, flush()
}
