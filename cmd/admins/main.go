// Command admins edits and inspects the admin allow-list.
//
//	admins [--source sqlite|redis] list
//	admins add NAME...
//	admins remove NAME...
//	admins resolve ADDRESS...
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jessevdk/go-flags"

	"orderingRoles/internal/allowlist"
	"orderingRoles/internal/config"
	"orderingRoles/internal/db"
	"orderingRoles/repository"
)

type options struct {
	Source   string `long:"source" choice:"sqlite" choice:"redis" default:"sqlite" description:"where the allow-list is stored"`
	DBPath   string `long:"db" env:"DB_PATH" default:"app.db" description:"SQLite database file"`
	RedisURL string `long:"redis-url" env:"REDIS_URL" default:"redis://localhost:6379"`
	RedisKey string `long:"redis-key" env:"REDIS_ADMIN_KEY" default:"admin_usernames"`
}

// store is an allow-list source that can also be edited.
type store interface {
	allowlist.Source
	Add(ctx context.Context, names ...string) error
	Remove(ctx context.Context, names ...string) error
}

type sqliteStore struct {
	*repository.AdminRepository
}

func (s sqliteStore) Add(ctx context.Context, names ...string) error {
	for _, n := range names {
		if err := s.AdminRepository.Add(ctx, n); err != nil {
			return fmt.Errorf("add %q: %w", n, err)
		}
	}
	return nil
}

func (s sqliteStore) Remove(ctx context.Context, names ...string) error {
	for _, n := range names {
		if err := s.AdminRepository.Remove(ctx, n); err != nil {
			return fmt.Errorf("remove %q: %w", n, err)
		}
	}
	return nil
}

type redisStore struct {
	*allowlist.RedisSource
}

func (s redisStore) Add(ctx context.Context, names ...string) error {
	return s.Seed(ctx, names...)
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, ferr.Message)
			return
		}
		fmt.Fprintln(os.Stderr, "admins:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	var opts options
	// Errors are reported once, by main.
	rest, err := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash).ParseArgs(args)
	if err != nil {
		return err
	}
	if len(rest) == 0 {
		return errors.New("missing command: list, add, remove or resolve")
	}

	s, closeFn, err := openStore(opts)
	if err != nil {
		return err
	}
	defer closeFn()

	cmd, names := rest[0], rest[1:]
	switch cmd {
	case "list":
		list, err := s.Load(ctx)
		if err != nil {
			return err
		}
		for _, n := range allowlist.Normalize(list) {
			fmt.Fprintln(out, n)
		}
		return nil
	case "add", "remove":
		if len(names) == 0 {
			return fmt.Errorf("%s needs at least one username", cmd)
		}
		if cmd == "add" {
			return s.Add(ctx, names...)
		}
		return s.Remove(ctx, names...)
	case "resolve":
		resolver, err := allowlist.Build(ctx, s)
		if err != nil {
			return err
		}
		for _, addr := range names {
			fmt.Fprintf(out, "%s\t%s\n", addr, resolver.ResolveAddress(addr))
		}
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func openStore(opts options) (store, func(), error) {
	if opts.Source == config.AdminSourceRedis {
		client, err := allowlist.NewRedisClient(opts.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return redisStore{allowlist.NewRedisSource(client, opts.RedisKey)}, func() { _ = client.Close() }, nil
	}
	d, err := db.Open(opts.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	return sqliteStore{repository.NewAdminRepository(d)}, func() { _ = d.Close() }, nil
}
