package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"mahjong/internal/ai"
	"mahjong/internal/dispatcher"
	"mahjong/internal/store/memstore"
)

var simulateGameCount int
var simulateOutputOnce bool

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "run games-in-a-loop for benchmarking, all four seats AI-controlled",
	RunE: func(cmd *cobra.Command, args []string) error {
		loadConfig()

		st := memstore.New()
		disp := dispatcher.New(st, nil, nil)
		ctx := cmd.Context()

		games := make([]string, simulateGameCount)
		cfg := allAIConfig()
		for i := range games {
			id := fmt.Sprintf("sim-%d", i)
			if _, err := disp.CreateGame(ctx, id, id, cfg); err != nil {
				return err
			}
			for seat := 0; seat < 4; seat++ {
				playerID := fmt.Sprintf("%s-p%d", id, seat)
				cfg.AIPlayerIDs[playerID] = true
				if _, err := disp.JoinGame(ctx, id, playerID); err != nil {
					return err
				}
			}
			games[i] = id
		}

		labelStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
		valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("86"))

		var totalActions, totalMahjongs int
		start := time.Now()
		lastReport := start
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				for _, id := range games {
					_, result, err := disp.AIContinue(ctx, id)
					if err != nil {
						continue
					}
					totalActions++
					if result.MahjongResult != nil {
						totalMahjongs++
					}
				}
				if time.Since(lastReport) >= 10*time.Second {
					lastReport = time.Now()
					elapsed := time.Since(start).Seconds()
					line := fmt.Sprintf("%s %s  %s %s  %s %s",
						labelStyle.Render("games"), valueStyle.Render(fmt.Sprintf("%d", len(games))),
						labelStyle.Render("actions/s"), valueStyle.Render(fmt.Sprintf("%.1f", float64(totalActions)/elapsed)),
						labelStyle.Render("mahjongs"), valueStyle.Render(fmt.Sprintf("%d", totalMahjongs)))
					fmt.Println(line)
					if simulateOutputOnce {
						return nil
					}
				}
			}
		}
	},
}

func allAIConfig() ai.Config {
	return ai.Config{
		AIPlayerIDs:            map[string]bool{},
		ClaimAutoStopPlayerIDs: map[string]bool{},
		CanPassTurn:            true,
		CanDrawRound:           true,
		SortOnDraw:             true,
		WithDeadWall:           true,
	}
}

func init() {
	simulateCmd.Flags().IntVarP(&simulateGameCount, "games", "g", 50, "number of concurrent simulated games")
	simulateCmd.Flags().BoolVarP(&simulateOutputOnce, "once", "o", false, "print one report then exit, instead of looping forever")
}
