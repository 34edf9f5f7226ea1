package timers

import (
	"sort"
	"sync"

	"github.com/vnykmshr/ticktask/pkg/metrics"
)

// Registry is a keyed cache of named Scheduler instances: the first Get for
// a name creates the scheduler, later Gets return the same one. When
// metrics are enabled, all schedulers in the registry share one set of
// metric vectors, distinguished by their scheduler label.
type Registry struct {
	cfg Config

	mu sync.Mutex
	m  map[string]*Scheduler
}

// NewRegistry creates a registry whose schedulers are built from cfg. The
// Name field of cfg is ignored; each scheduler is named by its Get key.
func NewRegistry(cfg Config) *Registry {
	if cfg.Metrics.Enabled && cfg.reg == nil {
		if cfg.Metrics.Registry == nil {
			cfg.reg = metrics.DefaultRegistry
		} else {
			cfg.reg = metrics.NewRegistry(cfg.Metrics.Registry)
		}
	}
	return &Registry{
		cfg: cfg,
		m:   make(map[string]*Scheduler),
	}
}

// Get returns the scheduler registered under name, creating it on first use.
func (g *Registry) Get(name string) *Scheduler {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, ok := g.m[name]
	if !ok {
		cfg := g.cfg
		cfg.Name = name
		s = NewWithConfig(cfg)
		g.m[name] = s
	}
	return s
}

// Names returns the names of all schedulers created so far, sorted.
func (g *Registry) Names() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	names := make([]string, 0, len(g.m))
	for name := range g.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ClearAll clears every scheduler created so far.
func (g *Registry) ClearAll() {
	g.mu.Lock()
	schedulers := make([]*Scheduler, 0, len(g.m))
	for _, s := range g.m {
		schedulers = append(schedulers, s)
	}
	g.mu.Unlock()

	for _, s := range schedulers {
		s.Clear()
	}
}
