package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Autocomplete searches",
	}
	cmd.AddCommand(searchSubCmd("localities", "Complete locality names by prefix", func(ctx context.Context, q string) ([]string, error) {
		return apiClient.Search.Localities(ctx, q)
	}))
	cmd.AddCommand(searchSubCmd("tags", "Complete tags by prefix", func(ctx context.Context, q string) ([]string, error) {
		return apiClient.Search.Tags(ctx, q)
	}))
	cmd.AddCommand(searchSubCmd("countries", "Complete country names by prefix", func(ctx context.Context, q string) ([]string, error) {
		return apiClient.Search.Countries(ctx, q)
	}))
	return cmd
}

func searchSubCmd(name, short string, search func(ctx context.Context, q string) ([]string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <query>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			results, err := search(context.Background(), args[0])
			if err != nil {
				fatal("search "+name, err)
			}
			output(results, "")
		},
	}
}
