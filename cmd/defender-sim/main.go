package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mikey/email-defender/internal/core"
	"github.com/mikey/email-defender/internal/di"
	"github.com/mikey/email-defender/internal/session"
)

var flags = &di.CLIFlags{}

var rootCmd = &cobra.Command{
	Use:   "defender-sim",
	Short: "Email Defender simulator",
	Long:  "Plays one headless Email Defender session with the autoplayer and prints the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		container, err := di.BuildCLIContainer(flags)
		if err != nil {
			return fmt.Errorf("failed to build dependency container: %w", err)
		}
		return container.Invoke(simulate)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().Int64Var(&flags.Seed, "seed", 0, "Random seed (0 picks a random one)")
	rootCmd.Flags().DurationVar(&flags.TickUnit, "tick-unit", 10*time.Millisecond, "Real duration of one game second")
	rootCmd.Flags().Float64Var(&flags.Accuracy, "accuracy", 0.9, "Probability that the autoplayer picks the right action")
	rootCmd.Flags().BoolVar(&flags.BuyUpgrades, "buy-upgrades", true, "Let the autoplayer buy upgrades")
	rootCmd.Flags().DurationVar(&flags.MaxDuration, "max-duration", time.Minute, "Quit the session after this long (0 disables)")
	rootCmd.Flags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.Flags().BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	rootCmd.Flags().StringVar(&flags.ConfigFile, "config", "", "Path to config file (flags override it)")
}

func simulate(p session.Params, cliFlags *di.CLIFlags) error {
	defer p.Logger.Sync()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var timeout <-chan time.Time
	if cliFlags.MaxDuration > 0 {
		timer := time.NewTimer(cliFlags.MaxDuration)
		defer timer.Stop()
		timeout = timer.C
	}

	stop := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
		case <-timeout:
		}
		close(stop)
	}()

	snap, err := session.Run(p, stop)
	if err != nil {
		return err
	}

	printResult(snap)
	return nil
}

func printResult(snap core.SessionSnapshot) {
	p := message.NewPrinter(language.English)

	p.Printf("\n=== Simulation Result ===\n")
	p.Printf("Outcome: %s\n", snap.GameOverMessage)
	p.Printf("Reason: %s\n", snap.GameOverReason)
	p.Printf("Score: %d\n", snap.Player.Score)
	p.Printf("Level: %d\n", snap.Player.Level)
	p.Printf("Coins: %d\n", snap.Player.Currency)
	p.Printf("Ticks: %d\n", snap.Ticks)
	p.Printf("Wrong deletes: %d, missed urgent: %d\n", snap.WrongDeletes, snap.MissedUrgent)
	for _, t := range snap.Tracks {
		info, _ := core.LookupTrack(t.Track)
		p.Printf("  %-22s level %2d  %-16s (%s)\n", t.Name, t.Level, t.Effect, info.PerLevel)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
