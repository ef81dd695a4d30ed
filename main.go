package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/duynguyendang/sir/internal/config"
	"github.com/duynguyendang/sir/internal/logging"
	"github.com/duynguyendang/sir/pkg/sentence"
)

var (
	configPath string
	rulesPath  string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sir",
	Short: "SIR - Semantic Information Retriever",
	Long: `SIR learns facts from simple English sentences and answers questions
by searching for chains of relations between terms.

  every cat is a mammal      fluff is a cat      is fluff a mammal?

Run without arguments to start the interactive prompt.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if rulesPath != "" {
			cfg.RulesFile = rulesPath
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		logger, err = logging.New(cfg.Log, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runREPL,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&rulesPath, "rules", "", "path to a YAML sentence rule file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(replCmd, serveCmd, mcpCmd, runCmd)
}

// loadRules returns the configured rule table, falling back to the
// built-in one.
func loadRules() ([]sentence.Rule, error) {
	if cfg.RulesFile == "" {
		return sentence.DefaultRules()
	}
	rules, err := sentence.LoadRules(cfg.RulesFile)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded sentence rules", zap.String("file", cfg.RulesFile), zap.Int("rules", len(rules)))
	return rules, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
