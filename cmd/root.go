package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"luastyle/internal/config"
)

var (
	v   = config.NewViper()
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "luastyle",
	Short: "LuaStyle virtual try-on",
	Long: `LuaStyle dresses a person photo in a garment photo using a generative
image model and returns up to two photoreal variations.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.LoadEnvFiles()

		loaded, err := config.Load(v)
		if err != nil {
			return err
		}
		if err := config.SetupLogger(loaded); err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

// Execute runs the command tree until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("backend", config.BackendGemini, "generation backend (gemini, vertex, vto)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")

	// フラグ > 環境変数 > デフォルト の順で解決される
	_ = v.BindPFlag("generation_backend", flags.Lookup("backend"))
	_ = v.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = v.BindPFlag("log_format", flags.Lookup("log-format"))
}
