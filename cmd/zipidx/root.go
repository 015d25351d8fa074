package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meigma/zipidx"
)

var (
	cfgFile    string
	verbose    bool
	convention string
)

var rootCmd = &cobra.Command{
	Use:          "zipidx",
	Short:        "Precomputed sidecar indexes for zip archives",
	Long:         "zipidx builds and inspects sidecar index files that let zip archives be opened without parsing their central directory.",
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default .zipidx.yaml in the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&convention, "convention", "", "path convention (posix or windows; default: current platform)")

	must(viper.BindPFlag("convention", rootCmd.PersistentFlags().Lookup("convention")))
	must(viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(".zipidx")
	}
	viper.SetEnvPrefix("ZIPIDX")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "using config file:", viper.ConfigFileUsed())
	}
}

// openOptions translates global flags to archive options.
func openOptions() ([]zipidx.Option, error) {
	var opts []zipidx.Option
	if name := viper.GetString("convention"); name != "" {
		conv, err := zipidx.ParseConvention(name)
		if err != nil {
			return nil, err
		}
		opts = append(opts, zipidx.WithConvention(conv))
	}
	if viper.GetBool("verbose") {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		opts = append(opts, zipidx.WithLogger(logger))
	}
	return opts, nil
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
