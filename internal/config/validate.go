package config

import "fmt"

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if c.API.MaxBodyBytes <= 0 {
		return fmt.Errorf("api.max_body_bytes must be > 0 (got %d)", c.API.MaxBodyBytes)
	}
	if c.API.ListDefaultSize <= 0 {
		return fmt.Errorf("api.list_default_size must be > 0 (got %d)", c.API.ListDefaultSize)
	}
	if c.API.ListMaxSize < c.API.ListDefaultSize {
		return fmt.Errorf("api.list_max_size must be >= list_default_size (got %d < %d)",
			c.API.ListMaxSize, c.API.ListDefaultSize)
	}

	if c.Retention.HardDeleteDays < 0 {
		return fmt.Errorf("retention.hard_delete_days must be >= 0 (got %d)", c.Retention.HardDeleteDays)
	}

	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns must be <= max_conns (got %d > %d)",
			c.Database.MinConns, c.Database.MaxConns)
	}

	return nil
}
