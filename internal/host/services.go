// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package host

import "context"

type servicesKey struct{}

// WithServices returns a copy of ctx carrying s. Command handlers read it
// back with ServicesFrom.
func WithServices(ctx context.Context, s Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom returns the services carried by ctx, or the zero value.
func ServicesFrom(ctx context.Context) Services {
	s, _ := ctx.Value(servicesKey{}).(Services)
	return s
}
