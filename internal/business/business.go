// Package business assembles the consigne client, the session store and the
// workflow controller from the configuration.
package business

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/XSAM/otelsql"
	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/valkey-io/valkey-go"

	slogctx "github.com/veqryn/slog-context"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"

	"github.com/superquinquin/consigne-desk/internal/config"
	"github.com/superquinquin/consigne-desk/internal/deposit"
	"github.com/superquinquin/consigne-desk/pkg/consigne"
	"github.com/superquinquin/consigne-desk/pkg/session"
	sessionsqlite "github.com/superquinquin/consigne-desk/pkg/session/sqlite"
	sessionvalkey "github.com/superquinquin/consigne-desk/pkg/session/valkey"
)

// WithController builds a controller, runs fn with it and releases the
// store connections afterwards.
func WithController(ctx context.Context, cfg *config.Config, fn func(context.Context, *deposit.Controller) error) error {
	controller, closeFn, err := NewController(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialising the deposit controller: %w", err)
	}
	defer closeFn()

	return fn(ctx, controller)
}

func NewController(ctx context.Context, cfg *config.Config) (_ *deposit.Controller, closeFn func(), _ error) {
	client, err := clientFromConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating consigne client: %w", err)
	}

	repo, closeFn, err := sessionRepoFromConfig(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating session repository: %w", err)
	}

	store := session.NewStore(repo, cfg.Store.Key)
	controller := deposit.NewController(client, store,
		deposit.WithShiftUsersTTL(cfg.Desk.ShiftUsersTTL),
		deposit.WithShiftUsersRepository(repo),
	)

	return controller, closeFn, nil
}

func clientFromConfig(cfg *config.Config) (*consigne.Client, error) {
	httpClient, err := loadHTTPClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("loading http client: %w", err)
	}

	return consigne.NewClient(cfg.API.BaseURL,
		consigne.WithHTTPClient(httpClient),
		consigne.WithNotFoundStatuses(cfg.API.NotFoundStatuses...),
		consigne.WithConflictStatuses(cfg.API.ConflictStatuses...),
	)
}

func loadHTTPClient(cfg *config.Config) (*http.Client, error) {
	transport := http.DefaultTransport

	if cfg.API.MTLS != nil {
		tlsConfig, err := commoncfg.LoadMTLSConfig(cfg.API.MTLS)
		if err != nil {
			return nil, fmt.Errorf("loading mTLS config: %w", err)
		}

		transport = &http.Transport{
			TLSClientConfig: tlsConfig,
		}
	}

	return &http.Client{
		Timeout: cfg.API.Timeout,
		Transport: &userAgentRoundTripper{
			userAgent: cfg.API.UserAgent,
			next:      transport,
		},
	}, nil
}

type userAgentRoundTripper struct {
	userAgent string
	next      http.RoundTripper
}

func (t *userAgentRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.userAgent == "" {
		return t.next.RoundTrip(req)
	}

	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)

	return t.next.RoundTrip(req)
}

// durableRepository keeps the session and the shift members list.
type durableRepository interface {
	session.Repository
	session.ShiftUsersRepository
}

func sessionRepoFromConfig(ctx context.Context, cfg *config.Config) (durableRepository, func(), error) {
	if err := cfg.Store.Validate(); err != nil {
		return nil, nil, err
	}

	switch cfg.Store.Backend {
	case config.StoreBackendValKey:
		client, err := valkeyClientFromConfig(cfg)
		if err != nil {
			return nil, nil, err
		}

		return sessionvalkey.NewRepository(client, cfg.ValKey.Prefix), client.Close, nil
	default:
		db, closeFn, err := sqliteFromConfig(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}

		return sessionsqlite.NewRepository(db), closeFn, nil
	}
}

func valkeyClientFromConfig(cfg *config.Config) (valkey.Client, error) {
	opts, err := config.MakeClientOption(cfg.ValKey)
	if err != nil {
		return nil, fmt.Errorf("making valkey client options: %w", err)
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("creating a new valkey client: %w", err)
	}

	return client, nil
}

func sqliteFromConfig(ctx context.Context, cfg *config.Config) (*sql.DB, func(), error) {
	dbSystemName := semconv.DBSystemNameKey.String("sqlite")

	path, err := cfg.SQLite.DatabasePath()
	if err != nil {
		return nil, nil, fmt.Errorf("resolving sqlite path: %w", err)
	}

	if err := sessionsqlite.Prepare(path); err != nil {
		return nil, nil, err
	}

	db, err := otelsql.Open(sessionsqlite.DriverName, path, otelsql.WithAttributes(dbSystemName))
	if err != nil {
		return nil, nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	reg, err := otelsql.RegisterDBStatsMetrics(db, otelsql.WithAttributes(dbSystemName))
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("registering db stats metrics: %w", err)
	}

	closeFn := func() {
		if err := reg.Unregister(); err != nil {
			slogctx.Error(ctx, "Failed to unregister db stats metrics", "error", err)
		}

		if err := db.Close(); err != nil {
			slogctx.Error(ctx, "Failed to close the sqlite database", "error", err)
		}
	}

	if err := sessionsqlite.Migrate(ctx, db); err != nil {
		closeFn()
		return nil, nil, err
	}

	slogctx.Debug(ctx, "Opened the session database", "path", path)

	return db, closeFn, nil
}
