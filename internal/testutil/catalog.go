package testutil

import (
	"context"
	"sync"

	"github.com/vk/hookhost/internal/model"
)

// RecordingCatalog records every catalog replacement as the list of
// command names it carried.
type RecordingCatalog struct {
	mu    sync.Mutex
	calls [][]string
	Err   error
}

func (c *RecordingCatalog) ReplaceCommands(_ context.Context, specs []model.CommandSpec) error {
	names := make([]string, 0, len(specs))
	for _, s := range specs {
		names = append(names, s.Name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, names)
	return c.Err
}

// Calls returns a copy of the recorded calls.
func (c *RecordingCatalog) Calls() [][]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]string(nil), c.calls...)
}
