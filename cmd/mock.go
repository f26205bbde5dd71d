package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tripflow/internal/mockbackend"
)

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Start the local mock backend",
	Long: `Start a local server that emulates the Supabase REST/RPC API and an
OpenAI-compatible chat endpoint. Intended for development and testing only;
all data lives in memory and is lost on exit.`,
	RunE: runMock,
}

func init() {
	rootCmd.AddCommand(mockCmd)

	flags := mockCmd.Flags()
	flags.StringP("host", "H", "0.0.0.0", "server host")
	flags.IntP("port", "p", 7080, "server port")
	flags.String("mode", "release", "server mode (debug/release/test)")

	_ = viper.BindPFlag("mock.host", flags.Lookup("host"))
	_ = viper.BindPFlag("mock.port", flags.Lookup("port"))
	_ = viper.BindPFlag("mock.mode", flags.Lookup("mode"))
}

func runMock(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	if err := cfg.ValidateMock(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	srv := mockbackend.New(cfg)

	// Graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	addr := fmt.Sprintf("%s:%d", cfg.Mock.Host, cfg.Mock.Port)
	log.Info().
		Str("addr", addr).
		Str("mode", cfg.Mock.Mode).
		Msg("starting mock backend")

	return srv.Run(ctx, addr)
}
