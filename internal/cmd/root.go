// Package cmd is the CLI entrypoint: flag parsing, config resolution, and
// launching the console program.
package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/JulienEnigma/instacommand/internal/app"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "commander",
	Short: "Terminal console for the InstaCommand automation backend",
	Long: `Commander is the operator console for an InstaCommand deployment.
It streams live telemetry, dispatches operator commands, tracks campaign
progress, and surfaces advisory suggestions, all from one terminal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		model, err := app.New(resolveConfig())
		if err != nil {
			return fmt.Errorf("initializing console: %w", err)
		}
		program := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("console exited: %w", err)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: $HOME/.commander.yaml)")
	rootCmd.Flags().String("backend", "", "backend base URL")
	rootCmd.Flags().String("export-dir", "", "directory for telemetry exports")

	_ = viper.BindPFlag("backend", rootCmd.Flags().Lookup("backend"))
	_ = viper.BindPFlag("export_dir", rootCmd.Flags().Lookup("export-dir"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".commander")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("COMMANDER")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

// resolveConfig merges flags, environment, and config file into the app
// config, falling back to local defaults.
func resolveConfig() app.Config {
	cfg := app.Config{
		BackendURL: viper.GetString("backend"),
		ExportDir:  viper.GetString("export_dir"),
	}
	if cfg.BackendURL == "" {
		cfg.BackendURL = "http://localhost:8000"
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir = "exports"
	}
	return cfg
}
