package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"todo-server/internal/config"
	todohttp "todo-server/internal/http"
	"todo-server/internal/http/handler"
	"todo-server/internal/logging"
	"todo-server/internal/repository/memory"
	"todo-server/internal/workers"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "todos:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(flag.NewFlagSet("todos", flag.ContinueOnError), args)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LoggingOptions())
	if err != nil {
		return err
	}
	if cfg.ConfigFile != "" {
		logger.Info("config loaded", "file", cfg.ConfigFile)
	}
	if cfg.ItemPostCreates {
		logger.Warn("POST /todos/{id} creates a new todo and ignores the path id; set item_post_creates = false to reject it")
	}

	repo := memory.NewTodoRepository()
	pool := workers.NewPool(cfg.Workers)

	h, err := todohttp.NewHandler(repo, pool, handler.Options{
		ItemPostCreates: cfg.ItemPostCreates,
		MaxBodyBytes:    cfg.MaxBodyBytes,
		Logger:          logger,
	})
	if err != nil {
		return err
	}

	srv := todohttp.NewServer(h, todohttp.ServerOptions{
		Addr:              cfg.Addr,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ShutdownTimeout:   cfg.ShutdownTimeout,
		Logger:            logger,
	})
	if err := srv.Start(); err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	}
	logger.Info("api ready", "addr", srv.Addr(), "workers", pool.Capacity())

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-signals:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-srv.Err():
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	}

	if err := srv.Stop(context.Background()); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
	pool.Close()

	stats := repo.Stats()
	logger.Info("stopped", "todos", stats.Visible, "deleted", stats.Deleted)
	return nil
}
