package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/meigma/zipidx"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <archive.zip>",
	Short: "List an archive's directory table and where it came from",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

var verifyCmd = &cobra.Command{
	Use:   "verify <archive.zip>",
	Short: "Check that the sidecar index still matches the archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runVerify,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(verifyCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	opts, err := openOptions()
	if err != nil {
		return err
	}
	a, err := zipidx.Open(args[0], opts...)
	if err != nil {
		return err
	}

	source := "central directory scan"
	if a.FromIndex() {
		source = "sidecar index"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d members (%s, %s convention)\n",
		args[0], a.Len(), source, a.Convention())

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PATH\tMETHOD\tSIZE\tCOMPRESSED\tPRELOADED")
	for e := range a.Entries() {
		preloaded := ""
		if a.Preloaded(e.Path) {
			preloaded = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
			e.Path, e.Method, e.UncompressedSize, e.CompressedSize, preloaded)
	}
	return w.Flush()
}

func runVerify(cmd *cobra.Command, args []string) error {
	opts, err := openOptions()
	if err != nil {
		return err
	}
	a, err := zipidx.Open(args[0], opts...)
	if err != nil {
		return err
	}

	ok, err := a.VerifyIndex()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("index for %s is missing or stale; rebuild with \"zipidx build\"", args[0])
	}
	fmt.Fprintf(cmd.OutOrStdout(), "index for %s matches the archive\n", args[0])
	return nil
}
