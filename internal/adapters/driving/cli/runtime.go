package cli

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/parkerlabs/revpipe/internal/adapters/driven/config/file"
	"github.com/parkerlabs/revpipe/internal/adapters/driven/storage/postgres"
	"github.com/parkerlabs/revpipe/internal/adapters/driven/storage/redis"
	"github.com/parkerlabs/revpipe/internal/adapters/driven/storage/sheets"
	"github.com/parkerlabs/revpipe/internal/adapters/driven/storage/sqlite"
	adsenseconn "github.com/parkerlabs/revpipe/internal/connectors/adsense"
	buttondownconn "github.com/parkerlabs/revpipe/internal/connectors/buttondown"
	carbonconn "github.com/parkerlabs/revpipe/internal/connectors/carbon"
	storefrontconn "github.com/parkerlabs/revpipe/internal/connectors/storefront"
	stripeconn "github.com/parkerlabs/revpipe/internal/connectors/stripe"
	"github.com/parkerlabs/revpipe/internal/core/ports/driven"
	"github.com/parkerlabs/revpipe/internal/core/ports/driving"
	"github.com/parkerlabs/revpipe/internal/core/services"
	"github.com/parkerlabs/revpipe/internal/enrich/geoip"
	adsensenorm "github.com/parkerlabs/revpipe/internal/normalisers/adsense"
	buttondownnorm "github.com/parkerlabs/revpipe/internal/normalisers/buttondown"
	carbonnorm "github.com/parkerlabs/revpipe/internal/normalisers/carbon"
	storefrontnorm "github.com/parkerlabs/revpipe/internal/normalisers/storefront"
	stripenorm "github.com/parkerlabs/revpipe/internal/normalisers/stripe"
)

// runtime bundles the stores and services a command needs. It is built
// per invocation from the persistent flags and the config file.
type runtime struct {
	config  *file.ConfigStore
	store   *sqlite.Store
	cursors driven.CursorStore
	runs    driven.RunStore
	metrics driven.MetricsRecorder

	// sink dials the configured backend on first use and memoises the
	// handle, so commands that never write skip the connection and
	// concurrent scheduled runs share one handle.
	sink func() (driven.Sink, error)

	// externalSink is set once the sink is dialled, when it is not
	// backed by store and so needs its own close.
	externalSink bool
	sinkOpened   bool
}

// newRuntime opens the config store, the local database and the
// configured sink and cursor backends. The sqlite store is always
// opened: run history lives there regardless of the sink backend.
func newRuntime(ctx context.Context) (*runtime, error) {
	config, err := file.NewConfigStore(configDirFlag)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}

	store, err := sqlite.NewStore(dataDirFlag)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	rt := &runtime{
		config:  config,
		store:   store,
		runs:    store.RunStore(),
		cursors: store.CursorStore(),
	}

	if err := rt.selectBackends(ctx); err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

// selectBackends validates the configured backend names, arranges the
// lazy sink dial and swaps the default sqlite cursor store for the
// configured alternative.
func (rt *runtime) selectBackends(ctx context.Context) error {
	sinkBackend := rt.config.GetString("sink.backend")
	switch sinkBackend {
	case "", "sqlite", "postgres", "sheets":
	default:
		return fmt.Errorf("unknown sink backend %q", sinkBackend)
	}
	rt.sink = sync.OnceValues(func() (driven.Sink, error) {
		return rt.dialSink(ctx, sinkBackend)
	})

	switch backend := rt.config.GetString("cursors.backend"); backend {
	case "", "sqlite":
	case "redis":
		cursors, err := redis.NewCursorStore(ctx,
			rt.config.GetString("cursors.redis_addr"),
			rt.config.GetString("cursors.redis_password"),
			rt.config.GetInt("cursors.redis_db"),
		)
		if err != nil {
			return fmt.Errorf("opening redis cursor store: %w", err)
		}
		rt.cursors = cursors
	default:
		return fmt.Errorf("unknown cursor backend %q", backend)
	}
	return nil
}

// dialSink opens the configured sink backend. Called at most once,
// through the sync.OnceValues wrapper in rt.sink.
func (rt *runtime) dialSink(ctx context.Context, backend string) (driven.Sink, error) {
	rt.sinkOpened = true
	switch backend {
	case "postgres":
		sink, err := postgres.NewSink(ctx, rt.config.GetString("sink.postgres_dsn"))
		if err != nil {
			return nil, fmt.Errorf("opening postgres sink: %w", err)
		}
		rt.externalSink = true
		return sink, nil
	case "sheets":
		creds, err := os.ReadFile(rt.config.GetString("sink.credentials_file"))
		if err != nil {
			return nil, fmt.Errorf("reading sheets credentials: %w", err)
		}
		sink, err := sheets.NewSink(ctx, rt.config.GetString("sink.spreadsheet_id"), creds)
		if err != nil {
			return nil, fmt.Errorf("opening sheets sink: %w", err)
		}
		rt.externalSink = true
		return sink, nil
	default:
		return rt.store.Sink(), nil
	}
}

// service builds the sync service from the current configuration.
// Providers snapshot their credentials here, so a daemon that rebuilds
// the service per trigger picks up config changes without restarting.
func (rt *runtime) service() (driving.SyncService, error) {
	var geo driven.GeoResolver
	if !rt.config.GetBool("geoip.disabled") {
		geo = geoip.New(rt.config.GetString("geoip.endpoint"))
	}

	adsenseCfg := adsenseconn.ConfigFromStore(rt.config)
	providers := []driven.Provider{
		stripeconn.New(stripeconn.ConfigFromStore(rt.config)),
		adsenseconn.New(adsenseCfg),
		carbonconn.New(carbonconn.ConfigFromStore(rt.config)),
		buttondownconn.New(buttondownconn.ConfigFromStore(rt.config), geo),
		storefrontconn.New(storefrontconn.ConfigFromStore(rt.config)),
	}
	normalisers := []driven.Normaliser{
		stripenorm.New(),
		adsensenorm.New(adsenseCfg.Account),
		carbonnorm.New(),
		buttondownnorm.New(),
		storefrontnorm.New(),
	}

	registry, err := services.NewPipelineRegistry(providers, normalisers)
	if err != nil {
		return nil, fmt.Errorf("building pipeline registry: %w", err)
	}

	sink, err := rt.sink()
	if err != nil {
		return nil, err
	}

	resolver := services.NewRangeResolver(rt.cursors, nil)
	return services.NewOrchestrator(registry, sink, rt.cursors, resolver, rt.metrics), nil
}

// Close releases the runtime's stores. Only an external sink that was
// actually dialled needs its own close; the sqlite store's own sink is
// covered by the store close.
func (rt *runtime) Close() {
	if rt.sinkOpened && rt.externalSink {
		if sink, err := rt.sink(); err == nil {
			if err := sink.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: closing sink: %v\n", err)
			}
		}
	}
	if err := rt.store.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: closing database: %v\n", err)
	}
	if err := rt.config.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: closing config watcher: %v\n", err)
	}
}
