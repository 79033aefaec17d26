// Package cliapp is flood's cobra command tree: run, show, plot, dummy.
package cliapp

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"flood/internal/banner"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "flood",
	Short: "flood - JSON-RPC load generator and latency profiler",
	Long: `
flood drives a JSON-RPC endpoint through a tunable open-loop traffic shape,
recording per-call latency with minimal coordination overhead, and emits
reports suitable for cross-run comparison and plotting.`,
}

// Execute runs the root command; it is the sole entrypoint cmd/flood/main.go calls.
func Execute() {
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		fmt.Println(banner.GetString())
		cmd.Usage()
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.flood.yaml)")
	rootCmd.AddCommand(runCmd, showCmd, plotCmd, dummyCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigType("yaml")
			viper.SetConfigName(".flood")
		}
	}
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

// exitf prints a message to stderr and exits with code: 2 for validation
// errors, 3 for baseline I/O errors, 4 for an all-runs-aborted sequence.
func exitf(code int, format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(code)
}
