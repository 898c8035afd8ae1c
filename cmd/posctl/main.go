package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"pocket-pos/internal/config"
	"pocket-pos/internal/logger"
	"pocket-pos/internal/repository"
	"pocket-pos/internal/service"
	"pocket-pos/internal/storage"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

type slotOpener func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Slot, error)

// session holds what every command needs once configuration is loaded
type session struct {
	logger    *zap.Logger
	slot      storage.Slot
	inventory service.InventoryService
	sales     service.SaleService
}

func newApp(out io.Writer, open slotOpener) *cli.App {
	s := &session{}

	return &cli.App{
		Name:      "posctl",
		Usage:     "manage the pocket-pos inventory and record sales",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "read configuration from `FILE` instead of ./.env",
				EnvVars: []string{config.ConfigFileEnv},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log storage activity",
			},
		},
		Before: func(c *cli.Context) error {
			cfg := config.LoadFrom(c.String("config"))

			s.logger = zap.NewNop()
			if c.Bool("verbose") {
				l, err := logger.NewWithFile(cfg.Server.Env, cfg.Log.File)
				if err != nil {
					return fmt.Errorf("failed to initialize logger: %w", err)
				}
				s.logger = l
			}

			slot, err := open(c.Context, cfg, s.logger)
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}
			s.slot = slot

			products := repository.NewProductRepository(slot, cfg.Storage.ProductsKey)
			sales := repository.NewSaleRepository(slot, cfg.Storage.SalesKey)
			s.inventory = service.NewInventoryService(products, sales)
			s.sales = service.NewSaleService(products, sales, cfg.Sale.DecrementStock)
			return nil
		},
		After: func(c *cli.Context) error {
			if s.slot == nil {
				return nil
			}
			defer s.logger.Sync()
			return s.slot.Close()
		},
		// errors are reported by main so tests can run the app without exiting
		ExitErrHandler: func(*cli.Context, error) {},
		Commands: []*cli.Command{
			productsCommand(s),
			sellCommand(s),
			salesCommand(s),
		},
	}
}

// report prints err, listing each rejected field of a validation failure
func report(w io.Writer, err error) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		fmt.Fprintln(w, "invalid product:")
		for _, f := range validationErr.Fields {
			fmt.Fprintf(w, "  %s: %s\n", f.Field, f.Message)
		}
		return
	}
	if repository.IsStorageError(err) {
		fmt.Fprintf(w, "storage unavailable: %v\n", err)
		return
	}
	fmt.Fprintf(w, "error: %v\n", err)
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: could not load .env: %v", err)
	}

	app := newApp(os.Stdout, storage.Open)
	if err := app.Run(os.Args); err != nil {
		report(os.Stderr, err)
		os.Exit(1)
	}
}
