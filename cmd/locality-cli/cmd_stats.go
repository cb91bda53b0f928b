package main

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	var country, tag string
	var simple bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show dataset statistics",
		Run: func(cmd *cobra.Command, args []string) {
			if simple {
				stat, err := apiClient.Stats.Simple(context.Background(), country)
				if err != nil {
					fatal("simple statistic", err)
				}
				output(stat, strconv.Itoa(stat.Number))
				return
			}

			stats, err := apiClient.Stats.Get(context.Background(), country, tag)
			if err != nil {
				fatal("statistics", err)
			}
			output(stats, strconv.Itoa(stats.Localities))
		},
	}
	cmd.Flags().StringVar(&country, "country", "", "Filter by country name")
	cmd.Flags().StringVar(&tag, "tag", "", "Filter by tag")
	cmd.Flags().BoolVar(&simple, "simple", false, "Show the lightweight count/completeness pair")
	return cmd
}
