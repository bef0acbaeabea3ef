package main

import (
	"context"
	"flag"

	"github.com/apex/log"
	"github.com/joho/godotenv"

	"github.com/franckalain/platecheck/internal/config"
	"github.com/franckalain/platecheck/internal/database"
	"github.com/franckalain/platecheck/internal/ml"
	"github.com/franckalain/platecheck/internal/server"
)

func main() {
	configPath := flag.String("config", config.GetConfigPath(), "path to configuration file")
	mlConfigPath := flag.String("ml-config", "", "path to model backend configuration file")
	flag.Parse()

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Info(".env file not found, using system environment variables")
	}

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	if cfg.Server.Debug {
		log.SetLevel(log.DebugLevel)
		log.Debug("debug logging enabled")
	}

	// Initialize database
	db, err := database.NewSQLiteDB(cfg.Database.Path)
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}
	defer db.Close()

	// Initialize inference backend
	model, err := ml.NewModel(cfg.ML.Type, *mlConfigPath)
	if err != nil {
		log.WithError(err).Fatal("failed to create model")
	}

	if err := model.Load(context.Background()); err != nil {
		log.WithError(err).Fatal("failed to load model")
	}

	// Initialize and start server
	srv := server.New(db, model, cfg)
	if err := srv.Start(); err != nil {
		log.WithError(err).Fatal("failed to start server")
	}
}
