// Package app wires the relay services into a dependency container. It is the
// single place that decides which concrete implementation backs each service.
package app

import (
	"fmt"

	"github.com/samber/do/v2"
	"github.com/spf13/afero"

	"github.com/nfrund/roomrelay/internal/config"
	"github.com/nfrund/roomrelay/internal/gateway"
	"github.com/nfrund/roomrelay/internal/moderation"
	"github.com/nfrund/roomrelay/internal/pubsub"
	"github.com/nfrund/roomrelay/internal/relay"
	"github.com/nfrund/roomrelay/internal/rooms"
	"github.com/nfrund/roomrelay/internal/server"
)

// NewContainer registers every service provider. Services are built lazily on
// first Invoke. fs backs the profanity word list file.
func NewContainer(cfg *config.Config, fs afero.Fs) *do.RootScope {
	i := do.New()

	do.ProvideValue(i, cfg)
	do.ProvideValue(i, fs)

	do.Provide(i, func(i do.Injector) (*moderation.ReloadableFilter, error) {
		return moderation.NewReloadableFilter(do.MustInvoke[afero.Fs](i), do.MustInvoke[*config.Config](i).ProfanityWordsFile)
	})
	do.Provide(i, func(do.Injector) (*rooms.Registry, error) {
		return rooms.NewRegistry(), nil
	})
	do.Provide(i, func(do.Injector) (*pubsub.WatermillBridge, error) {
		return pubsub.NewWatermillBridge(), nil
	})
	do.Provide(i, func(i do.Injector) (*gateway.Gateway, error) {
		bus := do.MustInvoke[*pubsub.WatermillBridge](i)
		return gateway.New(gateway.Dependencies{Publisher: bus, Subscriber: bus}), nil
	})
	do.Provide(i, func(i do.Injector) (*relay.Handlers, error) {
		filter, err := do.Invoke[*moderation.ReloadableFilter](i)
		if err != nil {
			return nil, err
		}
		return relay.NewHandlers(relay.Dependencies{
			Registry:   do.MustInvoke[*rooms.Registry](i),
			Emitter:    do.MustInvoke[*gateway.Gateway](i),
			Classifier: filter,
		}), nil
	})
	do.Provide(i, func(i do.Injector) (*server.Server, error) {
		h, err := do.Invoke[*relay.Handlers](i)
		if err != nil {
			return nil, err
		}
		return server.New(server.Dependencies{
			Config:   do.MustInvoke[*config.Config](i),
			Gateway:  do.MustInvoke[*gateway.Gateway](i),
			Handlers: h,
			Registry: do.MustInvoke[*rooms.Registry](i),
			Filter:   do.MustInvoke[*moderation.ReloadableFilter](i),
			Bus:      do.MustInvoke[*pubsub.WatermillBridge](i),
		}), nil
	})

	return i
}

// NewServer builds a ready to run server from cfg using the OS filesystem.
func NewServer(cfg *config.Config) (*server.Server, error) {
	s, err := do.Invoke[*server.Server](NewContainer(cfg, afero.NewOsFs()))
	if err != nil {
		return nil, fmt.Errorf("build server: %w", err)
	}
	return s, nil
}
