//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/cory-johannsen/rollcontext/internal/config"
)

func initializeApp(ctx context.Context, cfg config.Config, opts Options) (*App, func(), error) {
	wire.Build(providerSet)
	return nil, nil, nil
}
