package cache

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// InvalidateCacheCmd represents the cache invalidate subcommand
type InvalidateCacheCmd struct {
	Source string `arg:"" help:"Cache source to invalidate: openlibrary, search" required:""`
}

func (i *InvalidateCacheCmd) Run() error {
	cacheDB := viper.GetString("cache.dbfile")

	slog.Info("Invalidating cache", "source", i.Source, "database", cacheDB)

	tableName, ok := SourceTables[i.Source]
	if !ok {
		return fmt.Errorf("invalid cache source '%s'; valid sources are: %s", i.Source, validSources())
	}

	cacheInstance, err := Open(cacheDB)
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}
	defer func() { _ = cacheInstance.Close() }()

	rowsDeleted, err := cacheInstance.InvalidateSource(tableName)
	if err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	slog.Info("Cache invalidated", "source", i.Source, "rows_deleted", rowsDeleted)
	return nil
}

// ClearExpiredCmd removes entries whose time-to-live has elapsed from every cache table
type ClearExpiredCmd struct{}

func (c *ClearExpiredCmd) Run() error {
	cacheDB := viper.GetString("cache.dbfile")

	cacheInstance, err := Open(cacheDB)
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}
	defer func() { _ = cacheInstance.Close() }()

	var errs []error
	var total int64
	for _, tableName := range SourceTables {
		rows, err := cacheInstance.ClearExpired(tableName)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		total += rows
	}

	slog.Info("Expired cache entries removed", "database", cacheDB, "rows_deleted", total)
	return errors.Join(errs...)
}

func validSources() string {
	names := make([]string, 0, len(SourceTables))
	for name := range SourceTables {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
