package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/app"
	"github.com/vladislavdragonenkov/storefront/internal/version"
)

// readConfig разбирает флаги и собирает конфигурацию из файла и окружения STOREFRONT_*.
func readConfig(args []string, output io.Writer) (app.Config, error) {
	fs := flag.NewFlagSet("storefront", flag.ContinueOnError)
	fs.SetOutput(output)
	configPath := fs.String("config", "", "path to config file (yaml or .env); default ./config.yaml if present")
	if err := fs.Parse(args); err != nil {
		return app.Config{}, err
	}
	return app.LoadConfig(*configPath)
}

func main() {
	cfg, err := readConfig(os.Args[1:], os.Stderr)
	if err != nil {
		log.WithError(err).Fatal("не удалось прочитать конфигурацию")
	}
	if err := app.ConfigureLogging(cfg); err != nil {
		log.WithError(err).Fatal("некорректные настройки логирования")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(version.Current().Fields()).WithFields(log.Fields{
		"http_addr":      cfg.HTTPAddr,
		"metrics_addr":   cfg.MetricsAddr,
		"storage_driver": cfg.StorageDriver,
	}).Info("запускаем storefront")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("storefront остановлен")
}
