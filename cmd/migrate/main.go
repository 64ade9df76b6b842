package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gotchoices/sereus-bonum/internal/migrate"
	"github.com/gotchoices/sereus-bonum/internal/store/sqlstore"
)

func main() {
	log.SetFlags(0)
	var (
		dialect = flag.String("dialect", envOr("STORE_DIALECT", "sqlite"), "Store dialect (sqlite|postgres)")
		dsn     = flag.String("dsn", os.Getenv("DATABASE_URL"), "PostgreSQL DSN")
		path    = flag.String("path", envOr("SQLITE_PATH", "bonum.db"), "SQLite database path")
	)
	flag.Parse()

	if len(flag.Args()) == 0 {
		log.Fatal("usage: migrate [up|down|seed|status]")
	}

	d := sqlstore.Dialect(*dialect)
	target := *dsn
	if d == sqlstore.SQLite {
		target = *path
	} else if target == "" {
		log.Fatal("missing DSN: provide via -dsn or DATABASE_URL")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, err := sqlstore.Open(d, target)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()

	mgr := migrate.NewManager(st.DB(), sqlstore.SchemaFS, "migrations", "seeds",
		migrate.WithRebind(sqlstore.RebindFunc(d)))

	switch flag.Arg(0) {
	case "up":
		err = mgr.Up(ctx)
	case "down":
		err = mgr.Down(ctx)
	case "seed":
		err = mgr.Seed(ctx)
	case "status":
		var history []string
		history, err = mgr.Status(ctx)
		if err == nil {
			for _, item := range history {
				fmt.Println(item)
			}
		}
	default:
		log.Fatalf("unknown command %q", flag.Arg(0))
	}
	if err != nil {
		log.Fatalf("migrate %s: %v", flag.Arg(0), err)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
