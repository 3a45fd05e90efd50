// Package config loads the engine's tunable storage parameters from
// an optional YAML file, falling back to teaching-grade defaults when
// none is given.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/coredb/coredb/internal/storage"
)

// Config holds the parameters that shape the storage substrate: page
// size, pager cache capacity, and the B-tree's key-count sanity cap.
type Config struct {
	PageSize      int    `yaml:"page_size"`
	PagerCapacity int    `yaml:"pager_capacity"`
	BTreeMaxKeys  int    `yaml:"btree_max_keys"`
	DataFile      string `yaml:"data_file"`
}

// Default returns the engine's built-in defaults: a 4 KiB page, a
// 64-page resident cache, and the original implementation's 1024-key
// sanity cap. The CLI demo engine overrides PagerCapacity down to 4
// to match the original's deliberately small Pager(cache_size=4), so
// cache eviction is easy to observe interactively.
func Default() Config {
	return Config{
		PageSize:      storage.DefaultPageSize,
		PagerCapacity: 64,
		BTreeMaxKeys:  1024,
		DataFile:      "coredb.dat",
	}
}

// Load reads a YAML configuration file, starting from Default() so
// that a partial file only overrides the fields it sets.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
