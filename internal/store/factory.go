package store

import (
	"fmt"

	"celebration/internal/config"
)

// New builds the profile store the config selects. The supabase backend is
// constructed even with missing credentials: per the error contract those
// surface as per-request configuration errors, not as a startup failure.
func New(cfg config.StoreConfig) (ProfileStore, error) {
	switch cfg.Backend {
	case config.StoreBackendSupabase:
		return NewSupabaseStore(cfg.Supabase.URL, cfg.Supabase.ServiceRoleKey), nil
	case config.StoreBackendSQLite:
		return OpenSQLite(cfg.SQLite.Path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
