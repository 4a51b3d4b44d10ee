// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package registry

import (
	"fmt"

	"github.com/vk/hookhost/internal/handlers"
	"github.com/vk/hookhost/internal/model"
)

// bind checks that the manifest names a registered, invocable Go handler
// and returns the resulting Command.
func bind(h *handlers.Handlers, m *model.CommandManifest) (*Command, error) {
	fn, ok := h.Command(m.Handler)
	if !ok {
		return nil, fmt.Errorf("command %q: handler %q is not registered (available: %v)", m.Spec.Name, m.Handler, h.CommandNames())
	}
	return &Command{
		Spec:        m.Spec,
		HandlerName: m.Handler,
		Handler:     fn,
		Source:      m.FSInformation.Name(),
	}, nil
}
