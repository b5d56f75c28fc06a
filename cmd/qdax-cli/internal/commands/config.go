package commands

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/BioGeek/qdax-go/pkg/config"
	"github.com/BioGeek/qdax-go/pkg/store"
)

// loadConfig resolves the effective configuration, from an explicit
// path or by searching the usual config locations. Defaults fill in
// anything the file leaves out, so no config file at all still yields
// a runnable configuration.
func loadConfig(configPath string) (*config.Config, string, error) {
	var opts []config.ManagerOption
	if configPath != "" {
		opts = append(opts, config.WithConfigPath(configPath))
	}

	manager, err := config.NewManager(opts...)
	if err != nil {
		return nil, "", err
	}
	if err := manager.Load(); err != nil {
		return nil, "", err
	}
	return manager.Get(), manager.GetConfigPath(), nil
}

func storeOptions(cfg config.StoreConfig) store.Options {
	return store.Options{
		Backend: cfg.Backend,
		SQLite: store.SQLiteOptions{
			Path:           cfg.SQLite.Path,
			EnableWAL:      cfg.SQLite.EnableWAL,
			MaxConnections: cfg.SQLite.MaxConnections,
		},
	}
}

// openHistoryStore opens the configured run store for browsing. Only
// the sqlite backend keeps history across processes, so anything else
// is rejected here instead of silently showing an empty list.
func openHistoryStore(cfg *config.Config) (store.RunStore, error) {
	if cfg.Store.Backend != store.BackendSQLite {
		return nil, fmt.Errorf("run history requires the sqlite store backend, config uses %q", cfg.Store.Backend)
	}
	return store.Open(storeOptions(cfg.Store))
}

func fail(err error) {
	fmt.Printf("%s %v\n", color.New(color.Bold, color.FgRed).Sprint("Error:"), err)
	os.Exit(1)
}
