package usecase

import (
	"context"
	"fmt"
	"sync"
)

// CommandHandler executes a named command with an arbitrary payload.
type CommandHandler func(ctx context.Context, payload interface{}) (interface{}, error)

// Dispatcher routes named commands to registered handlers.
type Dispatcher struct {
	cmdHandlers map[string]CommandHandler
	mu          sync.RWMutex
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		cmdHandlers: make(map[string]CommandHandler),
	}
}

func (d *Dispatcher) RegisterCommand(name string, handler CommandHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cmdHandlers[name] = handler
}

// HasCommand reports whether a handler is registered under name.
func (d *Dispatcher) HasCommand(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.cmdHandlers[name]
	return ok
}

func (d *Dispatcher) ExecuteCommand(ctx context.Context, name string, payload interface{}) (interface{}, error) {
	d.mu.RLock()
	handler, ok := d.cmdHandlers[name]
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("command handler %s not registered", name)
	}
	return handler(ctx, payload)
}
