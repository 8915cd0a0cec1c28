package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var knownSources = map[string]bool{
	"manual": true, "greenhouse": true, "lever": true, "ashby": true, "workable": true, "other": true,
}

func Validate(cfg Config) error {
	var errs []string

	if cfg.App.Port <= 0 || cfg.App.Port > 65535 {
		errs = append(errs, "app.port must be 1..65535")
	}
	switch cfg.Store.Driver {
	case "sqlite", "file":
	case "postgres":
		if strings.TrimSpace(cfg.Store.DSN) == "" {
			errs = append(errs, "store.dsn is required when store.driver=postgres")
		}
	default:
		errs = append(errs, fmt.Sprintf("store.driver %q must be sqlite, postgres or file", cfg.Store.Driver))
	}
	switch cfg.History.Driver {
	case "", "memory":
	case "redis":
		if strings.TrimSpace(cfg.History.RedisURL) == "" {
			errs = append(errs, "history.redis_url is required when history.driver=redis")
		}
	default:
		errs = append(errs, fmt.Sprintf("history.driver %q must be memory or redis", cfg.History.Driver))
	}
	if cfg.Manager.InterCrawlerDelayMS < 0 {
		errs = append(errs, "manager.inter_crawler_delay_ms must be >= 0")
	}

	names := map[string]bool{}
	for i, c := range cfg.Crawlers {
		if strings.TrimSpace(c.Name) == "" {
			errs = append(errs, fmt.Sprintf("crawlers[%d].name is required", i))
		} else if names[c.Name] {
			errs = append(errs, fmt.Sprintf("crawlers[%d].name %q is duplicated", i, c.Name))
		}
		names[c.Name] = true
		if c.RateLimit <= 0 {
			errs = append(errs, fmt.Sprintf("crawlers[%d].rate_limit must be > 0", i))
		}
		if c.Timeout <= 0 {
			errs = append(errs, fmt.Sprintf("crawlers[%d].timeout must be > 0", i))
		}
		if c.MaxPages < 0 {
			errs = append(errs, fmt.Sprintf("crawlers[%d].max_pages must be >= 0", i))
		}
		if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("crawlers[%d].base_url %q is not a valid URL", i, c.BaseURL))
		}
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n- " + joinLines(errs))
	}
	return nil
}

func SaveAtomic(path string, cfg Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	b, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	bak := path + ".bak"

	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}

	_ = os.Remove(bak)
	_ = os.Rename(path, bak)

	return os.Rename(tmp, path)
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n- ")
}
