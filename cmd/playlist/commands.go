package main

import (
	"context"

	"github.com/spf13/cobra"
)

// createRootCommand создает корневую команду с настроенными подкомандами.
// Без подкоманды запускается TUI.
func (app *Application) createRootCommand(ctx context.Context) *cobra.Command {
	var configPath, libraryPath string

	rootCmd := &cobra.Command{
		Use:           "playlist",
		Short:         "Terminal playlist player",
		Long:          `Play a library of local, HTTP and S3 audio tracks in the terminal.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Пока работает TUI, писать в терминал нельзя
			return app.init(configPath, libraryPath, cmd.HasParent())
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.runTUI(ctx)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "path to the config file")
	rootCmd.PersistentFlags().StringVar(&libraryPath, "library", "", "path to the library file (overrides config)")

	// Добавляем команды, передавая в них экземпляр приложения и контекст
	rootCmd.AddCommand(app.createListCommand())
	rootCmd.AddCommand(app.createProbeCommand(ctx))
	rootCmd.AddCommand(app.createAddCommand(ctx))
	rootCmd.AddCommand(app.createDeleteCommand(ctx))

	return rootCmd
}
