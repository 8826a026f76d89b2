package allowlist

import (
	"fmt"

	"orderingRoles/internal/config"
	"orderingRoles/repository"
)

// NewSource picks the source named in cfg. The returned close function
// releases any client the source owns and is never nil.
func NewSource(cfg config.AdminsConfig, admins *repository.AdminRepository) (Source, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Source {
	case "", config.AdminSourceStatic:
		return Static(cfg.Usernames), noop, nil
	case config.AdminSourceSQLite:
		if admins == nil {
			return nil, noop, fmt.Errorf("sqlite allow-list needs an admin repository")
		}
		return admins, noop, nil
	case config.AdminSourceRedis:
		client, err := NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, noop, err
		}
		return NewRedisSource(client, cfg.RedisKey), client.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown allow-list source %q", cfg.Source)
	}
}
