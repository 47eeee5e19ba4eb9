package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rowdb/rowd/internal/auth"
	"github.com/rowdb/rowd/internal/config"
	"github.com/rowdb/rowd/internal/engine"
	"github.com/rowdb/rowd/internal/pkg/logging"
	"github.com/rowdb/rowd/internal/protocol"
	"github.com/rowdb/rowd/internal/server"
)

var (
	cfgFlag      string
	addressFlag  string
	portFlag     int
	logLevelFlag string
)

func init() {
	flag.StringVar(&cfgFlag, "cfg", "", "Path to a JSON configuration file")
	flag.StringVar(&addressFlag, "a", "", "Address to listen on, overrides the config file")
	flag.IntVar(&portFlag, "p", 0, "Port to listen on, overrides the config file")
	flag.StringVar(&logLevelFlag, "log-level", "", "Log level, overrides the config file")
}

func main() {
	flag.Parse()

	cfg, err := config.Load(cfgFlag)
	if err != nil {
		panic(err)
	}
	if addressFlag != "" {
		cfg.Address = addressFlag
	}
	if portFlag != 0 {
		cfg.Port = uint16(portFlag)
	}
	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() // flushes buffer, if any

	logger.Info("starting rowd server")

	aStore := auth.NewStore()
	for username, password := range cfg.Users {
		if err := aStore.Add(username, password); err != nil {
			panic(err)
		}
	}
	if len(cfg.Users) == 0 {
		logger.Warn("no users configured, every login will be denied")
	}

	aMemory := engine.NewMemory()
	if err := seedDemoTable(aMemory); err != nil {
		panic(err)
	}

	srv := server.New(cfg, logger, aStore, aMemory)
	if err := srv.Listen(); err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv.Serve(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		srv.Stop()
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

// seedDemoTable gives a fresh server something to answer queries against
// until a real storage engine sits behind the Executor interface.
func seedDemoTable(aMemory *engine.Memory) error {
	if err := aMemory.CreateTable("samples", []protocol.Column{
		{Name: "id", Kind: protocol.Int8},
		{Name: "name", Kind: protocol.Text},
		{Name: "score", Kind: protocol.Float8},
	}); err != nil {
		return err
	}
	return aMemory.Insert("samples",
		[]protocol.Value{{Valid: true, Value: int64(1)}, {Valid: true, Value: "alpha"}, {Valid: true, Value: 0.5}},
		[]protocol.Value{{Valid: true, Value: int64(2)}, {Valid: true, Value: "beta"}, {Valid: true, Value: 1.25}},
		[]protocol.Value{{Valid: true, Value: int64(3)}, {Valid: true, Value: "gamma"}, {}},
	)
}
