package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meigma/zipidx"
)

var extractCmd = &cobra.Command{
	Use:   "extract <archive.zip> <dest>",
	Short: "Extract archive members to a directory",
	Args:  cobra.ExactArgs(2),
	RunE:  runExtract,
}

func init() {
	extractCmd.Flags().String("prefix", "", "only extract members under this path")
	extractCmd.Flags().Int("workers", 0, "number of concurrent extraction workers")
	extractCmd.Flags().Bool("overwrite", false, "replace existing files")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	opts, err := openOptions()
	if err != nil {
		return err
	}
	a, err := zipidx.Open(args[0], opts...)
	if err != nil {
		return err
	}

	prefix, _ := cmd.Flags().GetString("prefix")
	workers, _ := cmd.Flags().GetInt("workers")
	overwrite, _ := cmd.Flags().GetBool("overwrite")

	extractOpts := []zipidx.ExtractOption{zipidx.ExtractWithOverwrite(overwrite)}
	if workers > 0 {
		extractOpts = append(extractOpts, zipidx.ExtractWithWorkers(workers))
	}
	if err := a.ExtractDir(args[1], prefix, extractOpts...); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "extracted %s to %s\n", args[0], args[1])
	return nil
}
