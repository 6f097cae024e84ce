package inference

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"medassist/api/internal/flow"
)

// Engine is anything that can answer both endpoint contracts.
type Engine interface {
	Name() string
	flow.Predictor
	flow.Recognizer
}

type Engines struct {
	byName map[string]Engine
	def    string
}

// NewEngines registers engines under their Name(); the first one is the default.
func NewEngines(engines ...Engine) *Engines {
	e := &Engines{byName: make(map[string]Engine, len(engines))}
	for _, eng := range engines {
		if eng == nil {
			continue
		}
		if e.def == "" {
			e.def = eng.Name()
		}
		e.byName[eng.Name()] = eng
	}
	return e
}

func (e *Engines) GetEngine(name string) (Engine, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = e.def
	}
	if eng, ok := e.byName[name]; ok {
		return eng, nil
	}
	return nil, fmt.Errorf("unknown engine %q (available: %s)", name, strings.Join(e.Names(), " | "))
}

func (e *Engines) Default() Engine { return e.byName[e.def] }

func (e *Engines) Names() []string {
	out := make([]string, 0, len(e.byName))
	for n := range e.byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Manager remembers which engine each chat picked.
type Manager struct {
	def Engine
	m   sync.Map // chatID -> Engine
}

func NewManager(defaultEngine Engine) *Manager {
	return &Manager{def: defaultEngine}
}

func (m *Manager) Get(chatID int64) Engine {
	if v, ok := m.m.Load(chatID); ok {
		return v.(Engine)
	}
	return m.def
}

func (m *Manager) Set(chatID int64, e Engine) {
	m.m.Store(chatID, e)
}
