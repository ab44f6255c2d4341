// Shared helpers for casebook CLI commands.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/casebook/internal/postgres"
	"github.com/mesh-intelligence/casebook/internal/repo"
	"github.com/mesh-intelligence/casebook/internal/sqlite"
	"github.com/mesh-intelligence/casebook/pkg/types"
)

// attachBackend loads config and attaches the configured store. The
// caller must defer store.Detach().
func attachBackend() (types.Store, string, error) {
	configDir, err := resolveConfigDir()
	if err != nil {
		return nil, "", err
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return nil, "", err
	}

	var store types.Store
	backend := cfg.GetString(cfgKeyBackend)
	switch backend {
	case types.BackendSQLite:
		dataDir, err := resolveDataDir(cfg)
		if err != nil {
			return nil, "", err
		}
		store = sqlite.NewBackend()
		if err := store.Attach(types.Config{Backend: backend, DataDir: dataDir}); err != nil {
			return nil, "", fmt.Errorf("attach backend: %w", err)
		}
	case types.BackendPostgres:
		store = postgres.NewBackend()
		if err := store.Attach(types.Config{Backend: backend, DSN: cfg.GetString(cfgKeyDSN)}); err != nil {
			return nil, "", fmt.Errorf("attach backend: %w", err)
		}
	default:
		return nil, "", fmt.Errorf("%w: %s", types.ErrBackendUnknown, backend)
	}
	return store, configDir, nil
}

// currentProject resolves the project commands operate on: the saved
// selection if it still exists, otherwise a sole project. Anything
// else needs `casebook project select`.
func currentProject(store types.Store, configDir string) (*types.Project, error) {
	projects := repo.NewProjectRepo(store)
	if id := savedProjectID(configDir); id != "" {
		p, err := projects.Get(id)
		if err == nil {
			return p, nil
		}
	}

	list, err := projects.List()
	if err != nil {
		return nil, err
	}
	switch len(list) {
	case 0:
		return nil, fmt.Errorf("no projects; create one with `casebook project create`")
	case 1:
		return list[0], nil
	default:
		return nil, fmt.Errorf("multiple projects; pick one with `casebook project select <id>`")
	}
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Println(string(output))
	return nil
}

// short trims a string for table output.
func short(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
