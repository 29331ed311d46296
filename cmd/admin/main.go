package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"burza/internal/config"
	"burza/internal/export"
	"burza/internal/grid"
	"burza/internal/logging"
	"burza/internal/store"

	"github.com/rs/zerolog"
)

const usage = `Usage: admin -cmd <command>

Commands:
  init-grid           create every grid cell as an available table
  wipe-grid           delete all tables
  reset-tables        set every table to blocked and unlink reservations
  dump                print all tables as JSON
  export              write the reservation list to an xlsx file
  wipe-reservations   delete all reservations
`

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "configs/config.yaml", "path to config file")
		command    = flag.String("cmd", "", "maintenance command to run")
	)
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *command == "" {
		flag.Usage()
		return fmt.Errorf("command is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if closer != nil {
		defer closer.Close()
	}
	logger := baseLogger.With().Str("component", "admin-cli").Logger()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	st, err := openStore(ctx, cfg, &logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		_ = st.Close(closeCtx)
	}()

	return dispatch(ctx, *command, cfg, st, &logger)
}

func openStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (store.Store, error) {
	if cfg.Mongo.URI == "" {
		return nil, fmt.Errorf("mongo uri is required for maintenance commands")
	}
	return store.NewMongo(ctx, cfg.Mongo, logger)
}

func dispatch(ctx context.Context, command string, cfg *config.Config, st store.Store, logger *zerolog.Logger) error {
	switch command {
	case "init-grid":
		editor := grid.NewEditor(st, cfg.Grid.Width, cfg.Grid.Height, logger)
		count, err := editor.InitializeGrid(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("created %d tables\n", count)

	case "wipe-grid":
		count, err := st.DeleteAllTables(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("deleted %d tables\n", count)

	case "reset-tables":
		if err := st.ResetTables(ctx); err != nil {
			return err
		}
		fmt.Println("all tables reset to blocked")

	case "dump":
		tables, err := st.ListTables(ctx)
		if err != nil {
			return err
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(tables)

	case "export":
		exporter := export.NewExporter(st, cfg.Exports.Path, logger)
		path, err := exporter.Save(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("exported to %s\n", path)

	case "wipe-reservations":
		count, err := st.DeleteAllReservations(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("deleted %d reservations\n", count)

	default:
		return fmt.Errorf("unknown command: %s", command)
	}
	return nil
}
