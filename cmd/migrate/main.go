package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/patelpulse/pulse-backend/pkg/config"
	"github.com/patelpulse/pulse-backend/pkg/db"
	"github.com/patelpulse/pulse-backend/pkg/instance"
	"github.com/patelpulse/pulse-backend/pkg/logger"
	"github.com/patelpulse/pulse-backend/pkg/migrate"
)

const serviceKind = "migrate"

type invocation struct {
	dir  string
	args []string
	db   *sql.DB
}

type command struct {
	usage   string
	needsDB bool
	run     func(context.Context, invocation) error
}

var commands = map[string]command{
	"up": {
		usage:   "apply all pending migrations",
		needsDB: true,
		run: func(ctx context.Context, in invocation) error {
			if err := migrate.ValidateDir(in.dir); err != nil {
				return err
			}
			return migrate.Run(ctx, in.db, in.dir, "up")
		},
	},
	"down": {
		usage:   "roll back the latest migration",
		needsDB: true,
		run: func(ctx context.Context, in invocation) error {
			return migrate.Run(ctx, in.db, in.dir, "down")
		},
	},
	"status": {
		usage:   "print applied and pending migrations",
		needsDB: true,
		run: func(ctx context.Context, in invocation) error {
			return migrate.Run(ctx, in.db, in.dir, "status")
		},
	},
	"version": {
		usage:   "<YYYYMMDDHHMMSS> migrate up or down to the given version",
		needsDB: true,
		run: func(ctx context.Context, in invocation) error {
			if len(in.args) != 1 {
				return errors.New("version takes exactly one target version")
			}
			return migrate.MigrateToVersion(ctx, in.db, in.dir, in.args[0])
		},
	},
	"create": {
		usage: "<name...> scaffold a new SQL migration",
		run: func(_ context.Context, in invocation) error {
			if len(in.args) == 0 {
				return errors.New("create needs a migration name")
			}
			path, err := migrate.CreateSQLMigration(in.dir, strings.Join(in.args, " "), time.Now())
			if err != nil {
				return err
			}
			fmt.Println("created", path)
			return nil
		},
	},
	"validate": {
		usage: "check migration filenames and goose markers",
		run: func(_ context.Context, in invocation) error {
			if err := migrate.ValidateDir(in.dir); err != nil {
				return err
			}
			fmt.Println("migrations ok:", in.dir)
			return nil
		},
	},
}

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceKind})
	_ = godotenv.Load()

	dirFlag := flag.String("dir", "", "migrations directory (defaults to PULSE_MIGRATIONS_DIR)")
	flag.Usage = usage
	flag.Parse()

	name := flag.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: serviceKind,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	in := invocation{dir: cfg.Migrations.Dir, args: flag.Args()[1:]}
	if *dirFlag != "" {
		in.dir = *dirFlag
	}
	if in.dir == "" {
		in.dir = migrate.DefaultDir
	}

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":            cfg.App.Env,
		"command":        name,
		"migrations_dir": in.dir,
		"instance":       instance.GetID(),
	})

	if cmd.needsDB {
		dbClient, err := db.New(ctx, cfg.DB, logg)
		requireResource(ctx, logg, "database", err)
		defer dbClient.Close()

		in.db, err = dbClient.DB().DB()
		requireResource(ctx, logg, "sql database", err)
	}

	if err := cmd.run(ctx, in); err != nil {
		logg.Error(ctx, "migration command failed", err)
		os.Exit(1)
	}
	logg.Info(ctx, "migration command finished")
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: migrate [-dir <path>] <command> [args]")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %-9s %s\n", name, commands[name].usage)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
