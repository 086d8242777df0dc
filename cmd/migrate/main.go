// migrate applies the embedded schema: go run ./cmd/migrate [-direction up|down] [-version].
package main

import (
	"flag"
	"fmt"
	"os"

	"password-recovery/internal/config"
	"password-recovery/internal/db/migrate"
)

func main() {
	direction := flag.String("direction", migrate.Up, "migration direction: up or down")
	version := flag.Bool("version", false, "print the applied schema version and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	if *version {
		v, dirty, err := migrate.Version(cfg.DatabaseURL)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("version %d dirty=%t\n", v, dirty)
		return
	}

	if err := migrate.Run(cfg.DatabaseURL, *direction); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
