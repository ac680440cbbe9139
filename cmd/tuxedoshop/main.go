package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/talkincode/tuxedoshop/config"
	"github.com/talkincode/tuxedoshop/internal/adminapi"
	"github.com/talkincode/tuxedoshop/internal/app"
	"github.com/talkincode/tuxedoshop/internal/webserver"
)

var (
	conffile = flag.String("c", "", "config yaml file")
	initdb   = flag.Bool("initdb", false, "drop and recreate all tables, then exit")
	envfile  = flag.String("env", ".env", "dotenv file loaded before the config")
)

func main() {
	flag.Parse()

	// a missing .env is normal outside development
	_ = godotenv.Load(*envfile)

	cfg, err := config.LoadConfig(*conffile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initdb {
		application.InitDb()
		zap.L().Info("database initialized")
		return
	}

	webserver.Init(cfg.Web, application)
	adminapi.Init()

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(webserver.Start)
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-quit:
			zap.L().Info("shutting down", zap.String("signal", sig.String()))
		case <-ctx.Done():
		}
		sctx, cancel := context.WithTimeout(context.Background(), webserver.ShutdownTimeout)
		defer cancel()
		return webserver.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		zap.L().Error("server exited with error", zap.Error(err))
	}
}
