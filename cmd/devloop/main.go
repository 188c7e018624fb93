package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"devloop/internal/config"
	"devloop/internal/logger"
	"devloop/internal/metrics"
	"devloop/internal/mongo"
	"devloop/internal/mysql"
	"devloop/internal/routing"
)

var (
	rootCmd = &cobra.Command{
		Use:           "devloop",
		Short:         "Mentor/mentee booking backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create the MySQL tables and MongoDB indexes",
		RunE:  runMigrate,
	}

	skipMigrate bool
)

func init() {
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not create tables and indexes on startup")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.Load(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := mysql.LoadDB(ctx, cfg.MySQLDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	client, mongoDB, err := mongo.LoadDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())

	if !skipMigrate {
		if err := mysql.Migrate(ctx, db); err != nil {
			return fmt.Errorf("cannot create tables: %w", err)
		}
		if err := mongo.EnsureIndexes(ctx, mongoDB); err != nil {
			return err
		}
	}

	r := mux.NewRouter()
	routing.InitRoutes(r, db, mongoDB, cfg, log, metrics.New())
	return routing.StartServer(ctx, cfg.HTTPAddr, r, log)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.Load(cfg.LogLevel)
	ctx := cmd.Context()

	db, err := mysql.LoadDB(ctx, cfg.MySQLDSN)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := mysql.Migrate(ctx, db); err != nil {
		return fmt.Errorf("cannot create tables: %w", err)
	}

	client, mongoDB, err := mongo.LoadDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())
	if err := mongo.EnsureIndexes(ctx, mongoDB); err != nil {
		return err
	}

	log.Info("schema up to date", "mongo_db", cfg.MongoDBName)
	return nil
}
