package cli

import (
	"context"
	"fmt"

	"github.com/ankittk/agentsquad/internal/agent/session"
	"github.com/ankittk/agentsquad/internal/config"
	"github.com/ankittk/agentsquad/internal/store"
	"github.com/ankittk/agentsquad/internal/store/postgres"
	"github.com/ankittk/agentsquad/internal/store/sqlite"
)

const (
	storeFile     = "file"
	storeSQLite   = "sqlite"
	storePostgres = "postgres"
)

// openStore opens the session record store selected by --store. The returned close func is
// never nil.
func openStore(ctx context.Context, home string, g *globalFlags) (store.Store, func(), error) {
	switch g.storeKind {
	case "", storeFile:
		return &store.FileStore{Dir: config.SessionsDir(home)}, func() {}, nil
	case storeSQLite:
		st, err := sqlite.Open(config.DBPath(home))
		if err != nil {
			return nil, nil, err
		}
		return st, func() { _ = st.Close() }, nil
	case storePostgres:
		st, err := postgres.Open(ctx, g.dsn)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { _ = st.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown store %q (want %s, %s or %s)", g.storeKind, storeFile, storeSQLite, storePostgres)
}

func openSessionManager(ctx context.Context, g *globalFlags) (*session.Manager, func(), error) {
	home := config.MustHomeFrom(ctx)
	st, closeFn, err := openStore(ctx, home, g)
	if err != nil {
		return nil, nil, err
	}
	return session.NewManager(st), closeFn, nil
}
