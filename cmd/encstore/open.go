package main

import (
	"context"

	"github.com/unkn0wn-root/encstore"
	"github.com/unkn0wn-root/encstore/config"
	"github.com/unkn0wn-root/encstore/internal/secret"
)

type globalFlags struct {
	config string
	prefix string
}

func (c cli) loadConfig(g *globalFlags) (*config.Config, error) {
	path := g.config
	if path == "" {
		path = c.getenv("ENCSTORE_CONFIG")
	}
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	if g.prefix != "" {
		cfg.Storage.Prefix = g.prefix
	}
	return cfg, nil
}

// withStorage opens the configured backend, builds the storage and runs fn.
func (c cli) withStorage(ctx context.Context, g *globalFlags, fn func(encstore.Storage) error) error {
	cfg, err := c.loadConfig(g)
	if err != nil {
		return err
	}
	be, err := cfg.OpenBackend(ctx)
	if err != nil {
		return err
	}
	defer be.Close(ctx)

	st, err := c.build(cfg, func(o *encstore.Options) { o.Backend = be })
	if err != nil {
		return err
	}
	return fn(st)
}

// withCrypto builds a storage without a backend for the backend-free commands.
func (c cli) withCrypto(_ context.Context, g *globalFlags, fn func(encstore.Storage) error) error {
	cfg, err := c.loadConfig(g)
	if err != nil {
		return err
	}
	st, err := c.build(cfg, nil)
	if err != nil {
		return err
	}
	return fn(st)
}

func (c cli) build(cfg *config.Config, tweak func(*encstore.Options)) (encstore.Storage, error) {
	log, err := cfg.Logger()
	if err != nil {
		return nil, err
	}
	opts, err := cfg.Options(nil, log)
	if err != nil {
		return nil, err
	}
	if tweak != nil {
		tweak(&opts)
	} else {
		// backend-free commands: silence the unbound-backend warning
		opts.Logger = encstore.NopLogger{}
	}

	r := secret.Resolver{Account: cfg.Account(), Getenv: c.getenv, Prompt: c.prompt}
	s, _, err := r.Resolve()
	if err != nil {
		return nil, err
	}
	return encstore.New(s, opts)
}
