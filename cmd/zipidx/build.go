package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meigma/zipidx"
)

var buildCmd = &cobra.Command{
	Use:   "build <archive.zip>",
	Short: "Build a sidecar index for a zip archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().StringSlice("preload", nil, "glob pattern of members to inline into the index (repeatable)")
	buildCmd.Flags().String("output", "", "index output path (default: <archive>.<convention>.idx)")
	must(viper.BindPFlag("preload", buildCmd.Flags().Lookup("preload")))

	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	opts, err := openOptions()
	if err != nil {
		return err
	}
	// The live scan is the source of truth for a fresh index.
	a, err := zipidx.Open(args[0], append(opts, zipidx.WithoutIndex())...)
	if err != nil {
		return err
	}

	var buildOpts []zipidx.BuildOption
	if patterns := viper.GetStringSlice("preload"); len(patterns) > 0 {
		buildOpts = append(buildOpts, zipidx.BuildWithPreload(patterns...))
	}
	if output, _ := cmd.Flags().GetString("output"); output != "" {
		buildOpts = append(buildOpts, zipidx.BuildWithPath(output))
	}

	if err := a.WriteIndex(buildOpts...); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "indexed %d members of %s\n", a.Len(), args[0])
	return nil
}
