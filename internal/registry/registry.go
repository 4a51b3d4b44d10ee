// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package registry

import (
	"sort"
	"time"

	"github.com/vk/hookhost/internal/handlers"
	"github.com/vk/hookhost/internal/model"
)

// Command is a loaded command unit.
type Command struct {
	Spec        model.CommandSpec
	HandlerName string
	Handler     handlers.CommandFunc
	Source      string
}

// Snapshot is an immutable mapping from command identifier to Command. A
// nil Snapshot is empty.
type Snapshot struct {
	commands map[string]*Command
	loadedAt time.Time
}

// NewSnapshot builds a snapshot from cmds. When two commands share an
// identifier the later one wins.
func NewSnapshot(cmds ...*Command) *Snapshot {
	s := &Snapshot{
		commands: make(map[string]*Command, len(cmds)),
		loadedAt: time.Now(),
	}
	for _, c := range cmds {
		s.commands[c.Spec.Name] = c
	}
	return s
}

// Get returns the command registered under name.
func (s *Snapshot) Get(name string) (*Command, bool) {
	if s == nil {
		return nil, false
	}
	c, ok := s.commands[name]
	return c, ok
}

// Len returns the number of commands.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.commands)
}

// Names returns the sorted command identifiers.
func (s *Snapshot) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Specs returns the command specifications ordered by identifier.
func (s *Snapshot) Specs() []model.CommandSpec {
	names := s.Names()
	specs := make([]model.CommandSpec, 0, len(names))
	for _, name := range names {
		specs = append(specs, s.commands[name].Spec)
	}
	return specs
}

// LoadedAt returns when the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.loadedAt
}

// Diff compares the identifier sets of two snapshots.
func Diff(prev, next *Snapshot) (added, removed, kept []string) {
	for _, name := range next.Names() {
		if _, ok := prev.Get(name); ok {
			kept = append(kept, name)
		} else {
			added = append(added, name)
		}
	}
	for _, name := range prev.Names() {
		if _, ok := next.Get(name); !ok {
			removed = append(removed, name)
		}
	}
	return added, removed, kept
}
