package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"luastyle/internal/application/usecases"
	"luastyle/internal/config"
	"luastyle/internal/infrastructure/repositories"
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show or change the persisted color theme",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runThemeGet(cmd, args)
	},
}

var themeGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the current theme",
	Args:  cobra.NoArgs,
	RunE:  runThemeGet,
}

var themeSetCmd = &cobra.Command{
	Use:       "set light|dark",
	Short:     "Set the theme",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"light", "dark"},
	RunE: func(cmd *cobra.Command, args []string) error {
		theme, err := preferenceUseCase().SetTheme(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), theme)
		return nil
	},
}

var themeToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Switch between light and dark",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		theme, err := preferenceUseCase().ToggleTheme(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), theme)
		return nil
	},
}

func init() {
	themeCmd.PersistentFlags().String("file", config.DefaultPreferencesPath(), "preferences file")
	_ = v.BindPFlag("preferences_file", themeCmd.PersistentFlags().Lookup("file"))

	themeCmd.AddCommand(themeGetCmd, themeSetCmd, themeToggleCmd)
	rootCmd.AddCommand(themeCmd)
}

func preferenceUseCase() *usecases.PreferenceUseCase {
	return usecases.NewPreferenceUseCase(repositories.NewFilePreferenceRepository(cfg.PreferencesFile))
}

func runThemeGet(cmd *cobra.Command, args []string) error {
	theme, err := preferenceUseCase().Theme(cmd.Context())
	if err != nil {
		// 読み込みに失敗してもデフォルトのテーマを表示する
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), theme)
	return nil
}
