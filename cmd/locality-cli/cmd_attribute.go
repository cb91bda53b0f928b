package main

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/healthsites/localityd/client"
)

func newAttributeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attribute",
		Short: "Manage the attribute registry",
	}
	cmd.AddCommand(attributeListCmd())
	cmd.AddCommand(attributeEnsureCmd())
	return cmd
}

func attributeListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List attribute specifications",
		Run: func(cmd *cobra.Command, args []string) {
			specs, err := apiClient.Attributes.List(context.Background())
			if err != nil {
				fatal("list attributes", err)
			}
			if flagFmt == "table" {
				rows := make([][]string, 0, len(specs))
				for _, s := range specs {
					rows = append(rows, []string{s.Key, s.Domain, strconv.FormatBool(s.Required)})
				}
				formatTable([]string{"KEY", "DOMAIN", "REQUIRED"}, rows)
				return
			}
			output(specs, strconv.Itoa(len(specs)))
		},
	}
}

func attributeEnsureCmd() *cobra.Command {
	var domain string
	var required bool
	cmd := &cobra.Command{
		Use:   "ensure <key>",
		Short: "Register an attribute, or confirm an existing registration",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			spec, err := apiClient.Attributes.Ensure(context.Background(), &client.EnsureSpecificationRequest{
				Domain:   domain,
				Key:      args[0],
				Required: required,
			})
			if err != nil {
				fatal("ensure attribute", err)
			}
			output(spec, spec.Key)
		},
	}
	cmd.Flags().StringVar(&domain, "domain", "", "Domain name (defaults to the server's domain)")
	cmd.Flags().BoolVar(&required, "required", false, "Mark the attribute required for new localities")
	return cmd
}
