package main

import (
	"context"
	"flag"
	"os"

	"watchlist/config"
	"watchlist/internal/migration"

	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	flag.Parse()
	command := "up"
	args := flag.Args()
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("load config")
	}
	db, err := config.ConnectionDb(cfg)
	if err != nil {
		logger.WithError(err).Fatal("connect database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.WithError(err).Fatal("database handle")
	}
	defer sqlDB.Close()

	if err := migration.Run(context.Background(), sqlDB, command, args...); err != nil {
		logger.WithError(err).Fatal("migrate")
	}
	logger.WithField("command", command).Info("migrations done")
}
