package app

import (
	"fmt"
	"io"
	"strings"

	"rlsignal/internal/config"
	"rlsignal/internal/schema"
)

type StartupSummary struct {
	Env        string
	SchemaFile string
	SchemaName string
	Schemas    []string
	Version    int64
	Coerce     bool
	Watch      bool
	Action     string
	Confidence float64
	Workers    int
	HTTPAddr   string
}

func newStartupSummary(cfg *config.Config, reg *schema.Registry) *StartupSummary {
	s := &StartupSummary{
		Env:        cfg.App.Env,
		SchemaFile: cfg.Schema.Path,
		SchemaName: cfg.Schema.Name,
		Coerce:     cfg.Schema.CoerceNumericStrings,
		Watch:      cfg.Schema.Watch,
		Action:     cfg.Policy.Action,
		Confidence: cfg.Policy.Confidence,
		Workers:    cfg.Processor.Workers,
		HTTPAddr:   cfg.App.HTTPAddr,
	}
	if reg != nil {
		snap := reg.Snapshot()
		s.Schemas = snap.Names()
		s.Version = snap.Version
	}
	return s
}

// Print 把启动摘要写到 w；CLI 使用 stderr，保证 stdout 只输出消息。
func (s *StartupSummary) Print(w io.Writer) {
	if s == nil || w == nil {
		return
	}
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintln(w, "STARTUP SUMMARY")
	fmt.Fprintln(w, strings.Repeat("=", 60))

	fmt.Fprintln(w, "[SCHEMA]")
	fmt.Fprintf(w, "  source:   %s\n", orDash(s.SchemaFile, "(built-in)"))
	fmt.Fprintf(w, "  active:   %s (registry v%d)\n", s.SchemaName, s.Version)
	fmt.Fprintf(w, "  loaded:   %s\n", formatList(s.Schemas))
	fmt.Fprintf(w, "  coerce:   %t  watch: %t\n", s.Coerce, s.Watch)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[POLICY]")
	fmt.Fprintf(w, "  constant: %s @ %.2f\n", s.Action, s.Confidence)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[RUNTIME]")
	fmt.Fprintf(w, "  env:      %s\n", orDash(s.Env, "-"))
	fmt.Fprintf(w, "  workers:  %d\n", s.Workers)
	fmt.Fprintf(w, "  http:     %s\n", orDash(s.HTTPAddr, "-"))
	fmt.Fprintln(w, strings.Repeat("=", 60))
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

func orDash(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
