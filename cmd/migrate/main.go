// migrate applies the embedded users schema to the configured Postgres DSN.
package main

import (
	"flag"
	"fmt"
	"os"

	"forestpest/auth/internal/config"
	"forestpest/auth/internal/database"
)

func main() {
	direction := flag.String("direction", database.DirectionUp, "Migration direction: up or down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if cfg.Postgres.DSN == "" {
		fmt.Fprintln(os.Stderr, "postgres dsn is not set; set FORESTPEST_POSTGRES_DSN or postgres.dsn in config.yaml")
		os.Exit(1)
	}

	if err := database.Migrate(cfg.Postgres.DSN, *direction); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}
