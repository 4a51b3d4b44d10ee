package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vk/hookhost/internal/model"
)

func cmd(name, desc string) *Command {
	return &Command{Spec: model.CommandSpec{Name: name, Description: desc}}
}

func TestNewSnapshot_LastWins(t *testing.T) {
	s := NewSnapshot(cmd("ping", "first"), cmd("test", ""), cmd("ping", "second"))

	assert.Equal(t, 2, s.Len())
	c, ok := s.Get("ping")
	assert.True(t, ok)
	assert.Equal(t, "second", c.Spec.Description)
	assert.Equal(t, []string{"ping", "test"}, s.Names())
	assert.Equal(t, "ping", s.Specs()[0].Name)
	assert.False(t, s.LoadedAt().IsZero())
}

func TestSnapshot_NilIsEmpty(t *testing.T) {
	var s *Snapshot
	_, ok := s.Get("ping")
	assert.False(t, ok)
	assert.Zero(t, s.Len())
	assert.Empty(t, s.Specs())
	assert.True(t, s.LoadedAt().IsZero())
}

func TestDiff(t *testing.T) {
	prev := NewSnapshot(cmd("ping", ""), cmd("old", ""))
	next := NewSnapshot(cmd("ping", ""), cmd("new", ""))

	added, removed, kept := Diff(prev, next)
	assert.Equal(t, []string{"new"}, added)
	assert.Equal(t, []string{"old"}, removed)
	assert.Equal(t, []string{"ping"}, kept)

	added, removed, kept = Diff(nil, next)
	assert.Equal(t, []string{"new", "ping"}, added)
	assert.Empty(t, removed)
	assert.Empty(t, kept)
}
