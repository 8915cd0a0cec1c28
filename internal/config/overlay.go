package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CrawlersFile is the shape of crawlers.yml, a crawler list kept apart from the main config.
type CrawlersFile struct {
	Crawlers []Crawler `yaml:"crawlers"`
}

// OverlayCrawlers replaces cfg.Crawlers with the list in path when the file exists and is non-empty.
func OverlayCrawlers(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	var cf CrawlersFile
	if err := yaml.Unmarshal(b, &cf); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if len(cf.Crawlers) > 0 {
		cfg.Crawlers = cf.Crawlers
	}
	return nil
}
