package cmd

import (
	"errors"
	"fmt"
	"sort"
)

// ErrDuplicateCommand is returned by Register when the name is already taken.
var ErrDuplicateCommand = errors.New("duplicate command name")

// Registry maps command names to commands. It is filled once at startup and
// only read afterwards, so it carries no lock.
type Registry struct {
	commands map[string]Command
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds c under c.Name(). A second command with the same name is
// rejected instead of replacing the first one.
func (r *Registry) Register(c Command) error {
	name := c.Name()
	if name == "" {
		return errors.New("command has no name")
	}
	if _, exists := r.commands[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateCommand, name)
	}
	r.commands[name] = c
	return nil
}

// Get returns the command registered under name.
func (r *Registry) Get(name string) (Command, bool) {
	c, ok := r.commands[name]
	return c, ok
}

// All returns every registered command sorted by name.
func (r *Registry) All() []Command {
	list := make([]Command, 0, len(r.commands))
	for _, c := range r.commands {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name() < list[j].Name()
	})
	return list
}

// Len reports how many commands are registered.
func (r *Registry) Len() int { return len(r.commands) }
