package cmd

import (
	"context"
	"fmt"

	"github.com/spaghettifunk/on3d/engine/assets"
	"github.com/spaghettifunk/on3d/engine/pack"
)

// openPack fetches and parses the archive at locator using the configured
// base path and timeout.
func (a *app) openPack(ctx context.Context, locator string) (*pack.Pack, error) {
	f := assets.NewFetcher(a.config.Pack.BasePath, a.config.Pack.FetchTimeout.Duration)
	data, err := f.Fetch(ctx, locator)
	if err != nil {
		return nil, err
	}
	p, err := pack.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", locator, err)
	}
	return p, nil
}

// openManager attaches the archive at locator to a fresh asset manager.
func (a *app) openManager(ctx context.Context, locator string) (*assets.AssetManager, error) {
	p, err := a.openPack(ctx, locator)
	if err != nil {
		return nil, err
	}
	am := assets.NewAssetManager()
	am.Attach(p)
	return am, nil
}
