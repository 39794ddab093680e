// Command mahjongd is the dispatcher process: it loads configuration,
// wires storage/bus/transport, and runs either the HTTP+websocket server
// or a standalone simulation loop.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mahjong/internal/config"
	"mahjong/internal/logx"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "mahjongd",
	Short: "mahjongd runs the Hong Kong mahjong dispatcher",
	Long:  "mahjongd is the authoritative server for Hong Kong mahjong games: rule engine, AI actor, and realtime fan-out.",
}

func loadConfig() config.Config {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logx.Init(cfg.ID, cfg.Log.Level)
	return cfg
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "configFile", "config.yaml", "path to the config file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(simulateCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
