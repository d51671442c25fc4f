package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if _, ok := Environments[c.Environment]; !ok {
		return fmt.Errorf("environment must be %q or %q, got %q", EnvDemo, EnvProd, c.Environment)
	}

	if c.Credentials.KeyID == "" {
		return errors.New("credentials.key_id is required")
	}
	if c.Credentials.PrivateKeyPath == "" {
		return errors.New("credentials.private_key_path is required")
	}

	if c.API.RestURL == "" {
		return errors.New("api.rest_url is required")
	}
	if c.API.MinInterval < 0 {
		return errors.New("api.min_interval must be >= 0")
	}
	if c.API.MaxPages < 1 {
		return errors.New("api.max_pages must be >= 1")
	}

	if err := c.Strategy.validate(); err != nil {
		return err
	}

	if c.Stream.Enabled && c.API.WSURL == "" {
		return errors.New("api.ws_url is required when stream is enabled")
	}

	switch c.Journal.Driver {
	case JournalNone:
	case JournalJSONL:
		if c.Journal.Path == "" {
			return errors.New("journal.path is required for the jsonl driver")
		}
	case JournalPostgres:
		if err := c.Journal.Database.validate("journal.database"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("journal.driver must be one of jsonl, postgres or empty, got %q", c.Journal.Driver)
	}

	if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	return nil
}

func (s *StrategyConfig) validate() error {
	if s.RefreshInterval <= 0 {
		return errors.New("strategy.refresh_interval must be > 0")
	}
	if s.RetryInterval < 0 {
		return errors.New("strategy.retry_interval must be >= 0")
	}

	switch s.Name {
	case StrategyFairValue:
		fv := s.FairValue
		if fv.SeriesTicker == "" {
			return errors.New("strategy.fair_value.series_ticker is required")
		}
		if fv.ImpliedVolPercent <= 0 {
			return errors.New("strategy.fair_value.implied_vol_percent must be > 0")
		}
		if fv.Spread < 0 || fv.Spread >= 1 {
			return fmt.Errorf("strategy.fair_value.spread must be in [0, 1), got %v", fv.Spread)
		}
		if fv.MinFair < 0 || fv.MaxFair > 1 || fv.MinFair >= fv.MaxFair {
			return fmt.Errorf("strategy.fair_value min_fair (%v) and max_fair (%v) must satisfy 0 <= min < max <= 1", fv.MinFair, fv.MaxFair)
		}
		if fv.OrderCount < 1 {
			return errors.New("strategy.fair_value.order_count must be >= 1")
		}
	case StrategyCrossing:
		if s.Crossing.MaxSum < 2 || s.Crossing.MaxSum > 100 {
			return fmt.Errorf("strategy.crossing.max_sum must be between 2 and 100, got %d", s.Crossing.MaxSum)
		}
		if s.Crossing.OrderCount < 1 {
			return errors.New("strategy.crossing.order_count must be >= 1")
		}
	case StrategyInventory:
		if s.Inventory.Ticker == "" {
			return errors.New("strategy.inventory.ticker is required")
		}
		if s.Inventory.OrderCount < 1 {
			return errors.New("strategy.inventory.order_count must be >= 1")
		}
	case StrategySweep:
		if s.Sweep.PriceThreshold < 1 || s.Sweep.PriceThreshold > 99 {
			return fmt.Errorf("strategy.sweep.price_threshold must be between 1 and 99, got %d", s.Sweep.PriceThreshold)
		}
		if s.Sweep.Horizon <= 0 {
			return errors.New("strategy.sweep.horizon must be > 0")
		}
		if s.Sweep.OrderCount < 1 {
			return errors.New("strategy.sweep.order_count must be >= 1")
		}
	default:
		return fmt.Errorf("strategy.name %q is unknown", s.Name)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
