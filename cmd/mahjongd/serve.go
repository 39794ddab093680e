package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"mahjong/internal/authn"
	"mahjong/internal/bus"
	"mahjong/internal/dispatcher"
	"mahjong/internal/httpapi"
	"mahjong/internal/logx"
	"mahjong/internal/store/cache"
	"mahjong/internal/store/mongostore"
	"mahjong/internal/transport"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "run the HTTP + websocket dispatcher",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		ctx := cmd.Context()

		durable, err := mongostore.New(ctx, cfg.Database.Mongo)
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		defer durable.Close(context.Background())

		st, err := cache.New(ctx, durable, cfg.Database.Redis)
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}

		b, err := bus.Connect(cfg.Nats.URL)
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		defer b.Close()

		verifier := authn.NewVerifier(cfg.JWT.Secret, cfg.JWT.Expire)
		hub := transport.NewHub(verifier)
		disp := dispatcher.New(st, b, hub)

		loopCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go disp.GamesLoop(loopCtx)

		server := httpapi.NewServer(disp, st, hub, verifier)
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		logx.Info("serve: listening", "addr", addr)
		return server.Engine().Run(addr)
	},
}
