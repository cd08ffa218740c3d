// Command taskdraft segments task statements and renders DOCX skeletons
// offline, without the HTTP server.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "taskdraft",
	Short:         "Split task statements into questions and export them as DOCX",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "taskdraft", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./taskdraft.yaml or ~/.config/taskdraft/taskdraft.yaml)")
	rootCmd.PersistentFlags().Bool("pdftotext", true, "fall back to pdftotext for PDFs without a text layer")
	viper.BindPFlag("pdf_fallback_pdftotext", rootCmd.PersistentFlags().Lookup("pdftotext"))

	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("taskdraft")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "taskdraft"))
		}
	}

	viper.SetEnvPrefix("TASKDRAFT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
