package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"genforge/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:           "genforge",
	Short:         "Sequential LLM generation of project source files",
	Long:          "genforge turns a JSON file plan into generated project files,\ncarrying a rolling context of symbols and completed files between steps.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a genforge.yaml config file")
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	return config.LoadFrom(cfgFile)
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
