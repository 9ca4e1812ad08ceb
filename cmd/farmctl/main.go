package main

import (
	"encoding/json"
	"fmt"
	"os"

	"farm-assistant/internal/config"
	"farm-assistant/internal/kv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const version = "1.0.0"

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:     "farmctl",
	Short:   "Inspect and maintain the Farm Assistant store",
	Long:    `Runs legacy migrations and prints or exports the logbook, chat sessions and community feed.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// openStore opens the storage configured in the config file
func openStore() (*config.Config, *kv.Adapter, *zap.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := newLogger()
	backend, err := kv.Open(cfg.Storage.Type, cfg.StorageDSN(), logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open storage: %w", err)
	}
	return cfg, kv.NewAdapter(backend, logger), logger, nil
}

func printJSON(v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Println(string(output))
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/config.yml", "path to the config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log storage activity")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(logbookCmd)
	rootCmd.AddCommand(chatsCmd)
	rootCmd.AddCommand(postsCmd)
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
