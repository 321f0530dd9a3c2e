package schema

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"rlsignal/internal/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Template 描述 schema 文件中的单个条目。
type Template struct {
	Name                 string         `mapstructure:"name" yaml:"name"`
	Description          string         `mapstructure:"description" yaml:"description"`
	Version              int            `mapstructure:"version" yaml:"version"`
	CoerceNumericStrings bool           `mapstructure:"coerce_numeric_strings" yaml:"coerce_numeric_strings"`
	Document             map[string]any `mapstructure:"document" yaml:"document"`

	compiled *JSONSchema
}

// FileConfig 映射 schema 文件的根节点。
type FileConfig struct {
	Schemas map[string]Template `mapstructure:"schemas" yaml:"schemas"`
}

// Snapshot 是 registry 某一版本的只读视图。
type Snapshot struct {
	Version   int64
	LoadedAt  time.Time
	Templates map[string]Template
}

// Names 按字母序返回快照中的 schema 名称。
func (s Snapshot) Names() []string {
	out := make([]string, 0, len(s.Templates))
	for name := range s.Templates {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ChangeListener 在 registry 重载成功后触发。
type ChangeListener func(Snapshot)

// RegistryOptions 控制 registry 的加载行为。
type RegistryOptions struct {
	// Watch 为 true 时通过 viper/fsnotify 监听文件变更并自动重载。
	Watch bool
	// CoerceNumericStrings 对所有条目生效，条目自身的设置可以再打开它。
	CoerceNumericStrings bool
}

// Registry 管理命名 schema，支持热更新。
type Registry struct {
	path   string
	opts   RegistryOptions
	v      *viper.Viper
	logger *logger.Logger

	mu        sync.RWMutex
	snapshot  Snapshot
	listeners []ChangeListener
}

// NewRegistry 读取 schema 文件；opts.Watch 打开时监听后续变更。
func NewRegistry(path string, opts RegistryOptions) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("schema registry requires path")
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read schema file failed: %w", err)
	}
	r := &Registry{path: path, opts: opts, v: v, logger: logger.Named("schema")}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	if opts.Watch {
		v.OnConfigChange(func(evt fsnotify.Event) {
			if evt.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				return
			}
			if err := r.Reload(); err != nil {
				r.logger.Errorf("schema reload failed, keeping version %d: %v", r.Version(), err)
				return
			}
			r.notifyListeners()
		})
		v.WatchConfig()
	}
	return r, nil
}

// NewStaticRegistry 用内存中的模板构建 registry，不关联文件。
func NewStaticRegistry(templates map[string]Template, opts RegistryOptions) (*Registry, error) {
	r := &Registry{opts: opts, logger: logger.Named("schema")}
	compiled, err := compileTemplates(templates, opts)
	if err != nil {
		return nil, err
	}
	r.install(compiled)
	return r, nil
}

// NewDefaultRegistry 只包含内置的 market_data schema。
func NewDefaultRegistry(opts RegistryOptions) (*Registry, error) {
	return NewStaticRegistry(map[string]Template{
		DefaultName: {
			Description: "built-in market data message",
			Version:     1,
			Document:    DefaultDocument(),
		},
	}, opts)
}

// Reload 重新读取文件。任一条目编译失败时整个快照被拒绝，旧版本继续生效。
func (r *Registry) Reload() error {
	if r.path == "" {
		return fmt.Errorf("schema registry has no backing file")
	}
	cfg, err := readSchemaFile(r.path)
	if err != nil {
		return err
	}
	compiled, err := compileTemplates(cfg.Schemas, r.opts)
	if err != nil {
		return err
	}
	version := r.install(compiled)
	r.logger.Infof("schema registry v%d loaded %d schemas from %s", version, len(compiled), filepath.Base(r.path))
	return nil
}

func (r *Registry) install(templates map[string]Template) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshot = Snapshot{
		Version:   r.snapshot.Version + 1,
		LoadedAt:  time.Now(),
		Templates: templates,
	}
	return r.snapshot.Version
}

// OnChange 注册重载回调。
func (r *Registry) OnChange(fn ChangeListener) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

// Snapshot 返回当前模板集的副本。
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneSnapshot(r.snapshot)
}

func (r *Registry) Version() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot.Version
}

// Template 返回指定名称的模板。
func (r *Registry) Template(name string) (Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tpl, ok := r.snapshot.Templates[strings.TrimSpace(name)]
	return tpl, ok
}

// Validate 使用指定 schema 校验消息，返回具体失败原因。
func (r *Registry) Validate(name string, msg map[string]any) error {
	tpl, ok := r.Template(name)
	if !ok {
		return fmt.Errorf("unknown schema: %s", name)
	}
	return tpl.compiled.Explain(msg)
}

// Checker 返回绑定到指定名称的 Checker，每次检查都读取最新快照。
func (r *Registry) Checker(name string) Checker {
	return &registryChecker{registry: r, name: strings.TrimSpace(name)}
}

type registryChecker struct {
	registry *Registry
	name     string
}

func (c *registryChecker) Check(msg map[string]any) bool {
	return c.registry.Validate(c.name, msg) == nil
}

func (c *registryChecker) Explain(msg map[string]any) error {
	return c.registry.Validate(c.name, msg)
}

func (r *Registry) notifyListeners() {
	r.mu.RLock()
	snap := cloneSnapshot(r.snapshot)
	listeners := append([]ChangeListener(nil), r.listeners...)
	r.mu.RUnlock()
	for _, fn := range listeners {
		go func(cb ChangeListener) {
			defer r.safeRecover("schema listener")
			cb(snap)
		}(fn)
	}
}

func (r *Registry) safeRecover(tag string) {
	if rec := recover(); rec != nil {
		r.logger.Errorf("%s panic: %v", tag, rec)
	}
}

func compileTemplates(src map[string]Template, opts RegistryOptions) (map[string]Template, error) {
	if len(src) == 0 {
		return nil, fmt.Errorf("schema registry: no schemas defined")
	}
	out := make(map[string]Template, len(src))
	for key, tpl := range src {
		norm := normalizeTemplate(key, tpl)
		compiled, err := Compile(norm.Name, norm.Document,
			WithNumericStrings(opts.CoerceNumericStrings || norm.CoerceNumericStrings))
		if err != nil {
			return nil, err
		}
		norm.compiled = compiled
		if _, dup := out[norm.Name]; dup {
			return nil, fmt.Errorf("schema registry: duplicate schema name %s", norm.Name)
		}
		out[norm.Name] = norm
	}
	return out, nil
}

func normalizeTemplate(key string, tpl Template) Template {
	tpl.Name = strings.TrimSpace(tpl.Name)
	if tpl.Name == "" {
		tpl.Name = strings.TrimSpace(key)
	}
	if tpl.Version <= 0 {
		tpl.Version = 1
	}
	tpl.Description = strings.TrimSpace(tpl.Description)
	return tpl
}

func cloneSnapshot(src Snapshot) Snapshot {
	dst := Snapshot{
		Version:   src.Version,
		LoadedAt:  src.LoadedAt,
		Templates: make(map[string]Template, len(src.Templates)),
	}
	for name, tpl := range src.Templates {
		dst.Templates[name] = tpl
	}
	return dst
}

func readSchemaFile(path string) (FileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("read schema file failed: %w", err)
	}
	var cfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return FileConfig{}, fmt.Errorf("parse schema file failed: %w", err)
	}
	return cfg, nil
}
