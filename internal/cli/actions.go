package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd(a *app) *cobra.Command {
	var seqDir, outputDir string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Visualize read statistics with NanoPlot",
		Args:  cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			if err := a.service().Stats(cmd.Context(), seqDir, outputDir); err != nil {
				return fmt.Errorf("stats: %w", err)
			}
			fmt.Fprintf(out(cmd), "Visualization written to %s\n", outputDir)
			return nil
		}),
	}
	cmd.Flags().StringVar(&seqDir, "sequences", "", "Sequence directory (single- or paired-end)")
	cmd.Flags().StringVar(&outputDir, "output", "", "Directory receiving the visualization")
	cmd.MarkFlagRequired("sequences")
	cmd.MarkFlagRequired("output")
	return cmd
}

func newAggregateCmd(a *app) *cobra.Command {
	var seqDir, logsDir, outputDir string
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Aggregate FastQC and Cutadapt results with MultiQC",
		Args:  cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			if err := a.service().Aggregate(cmd.Context(), seqDir, logsDir, outputDir); err != nil {
				return fmt.Errorf("aggregate: %w", err)
			}
			fmt.Fprintf(out(cmd), "Visualization written to %s\n", outputDir)
			return nil
		}),
	}
	cmd.Flags().StringVar(&seqDir, "sequences", "", "Sequence directory (single- or paired-end)")
	cmd.Flags().StringVar(&logsDir, "cutadapt-reports", "", "Directory of cutadapt *.log files to include")
	cmd.Flags().StringVar(&outputDir, "output", "", "Directory receiving the visualization")
	cmd.MarkFlagRequired("sequences")
	cmd.MarkFlagRequired("output")
	return cmd
}
