// migrate aplica o revierte las migraciones embebidas contra la base configurada.
//
// Uso:
//
//	go run ./cmd/migrate up
//	go run ./cmd/migrate down [N]   (por defecto revierte 1)
//	go run ./cmd/migrate version
//
// Lee la conexión de las mismas variables que la API (DATABASE_URL o DB_*).
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jhoicas/Facturo-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Facturo-api/pkg/config"
)

func main() {
	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conectar a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	switch cmd {
	case "up":
		err = postgres.RunMigrations(pool)
	case "down":
		n := 1
		if len(os.Args) > 2 {
			if n, err = strconv.Atoi(os.Args[2]); err != nil || n <= 0 {
				fmt.Fprintf(os.Stderr, "N debe ser un entero positivo: %q\n", os.Args[2])
				os.Exit(2)
			}
		}
		err = postgres.RollbackMigrations(pool, n)
	case "version":
		var (
			v     uint
			dirty bool
		)
		v, dirty, err = postgres.MigrationVersion(pool)
		if err == nil {
			fmt.Printf("versión %d (dirty=%t)\n", v, dirty)
		}
	default:
		fmt.Fprintf(os.Stderr, "comando desconocido %q: use up | down [N] | version\n", cmd)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", cmd, err)
		os.Exit(1)
	}
	if cmd != "version" {
		fmt.Println("migraciones:", cmd, "ok")
	}
}
