package bot

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

var (
	// ErrDuplicateModule is returned when two modules register under one name.
	ErrDuplicateModule = errors.New("module already registered")

	// ErrDuplicateCommand is returned when two modules claim the same slash command.
	ErrDuplicateCommand = errors.New("command already claimed")
)

// Registry holds modules in registration order.
type Registry struct {
	mu      sync.RWMutex
	modules []Module
}

// NewRegistry creates a new module registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends m. A second module with the same name is rejected.
func (r *Registry) Register(m Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.modules {
		if existing.Name() == m.Name() {
			return fmt.Errorf("%w: %s", ErrDuplicateModule, m.Name())
		}
	}
	r.modules = append(r.modules, m)
	return nil
}

// Modules returns a snapshot of the registered modules in init order.
func (r *Registry) Modules() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.modules)
}

// Routes binds every slash command of modules to the module that owns it.
func Routes(modules []Module) (map[string]Route, error) {
	routes := make(map[string]Route)
	for _, mod := range modules {
		for command, handler := range mod.CommandHandlers() {
			if owner, ok := routes[command]; ok {
				return nil, fmt.Errorf(
					"%w: /%s by %s and %s",
					ErrDuplicateCommand, command, owner.Module, mod.Name(),
				)
			}
			routes[command] = Route{Module: mod.Name(), Handler: handler}
		}
	}
	return routes, nil
}

var globalRegistry = NewRegistry()

// Register adds a module to the global registry from the module's init func.
// It panics on a duplicate name since both modules are linked into the binary.
func Register(m Module) {
	if err := globalRegistry.Register(m); err != nil {
		panic(err)
	}
}

// Modules returns all modules from the global registry.
func Modules() []Module {
	return globalRegistry.Modules()
}

// ResetGlobalRegistry empties the global registry. Tests only.
func ResetGlobalRegistry() {
	globalRegistry = NewRegistry()
}
