package main

import (
	"context"
	"embed"
	"os"

	"github.com/ghuser/mall/pkg/config"
	"github.com/ghuser/mall/pkg/migrator"
)

//go:embed *.sql
var MigrationsFS embed.FS

// Usage: go run ./migrations/item [up|down|status|redo]
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}
	if err := migrator.Run(context.Background(), cfg.DatabaseURL, "item", MigrationsFS, command, os.Args[min(len(os.Args), 2):]...); err != nil {
		panic(err)
	}
}
