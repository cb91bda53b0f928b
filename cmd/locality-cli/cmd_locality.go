package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/healthsites/localityd/client"
)

func newLocalityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locality",
		Short: "Manage localities",
	}
	cmd.AddCommand(localityGetCmd())
	cmd.AddCommand(localityCreateCmd())
	cmd.AddCommand(localityUpdateCmd())
	cmd.AddCommand(localityHistoryCmd())
	cmd.AddCommand(localityMapCmd())
	return cmd
}

func localityGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <uuid>",
		Short: "Get a locality by uuid",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			detail, err := apiClient.Localities.Get(context.Background(), args[0])
			if err != nil {
				fatal("get locality", err)
			}
			output(detail, detail.UUID)
		},
	}
}

func localityCreateCmd() *cobra.Command {
	var long, lat float64
	var valuesJSON, tags string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a locality",
		Run: func(cmd *cobra.Command, args []string) {
			sub := &client.LocalitySubmission{
				Long: &long,
				Lat:  &lat,
				Tags: tags,
			}
			if valuesJSON != "" {
				if err := json.Unmarshal([]byte(valuesJSON), &sub.Values); err != nil {
					fatal("parse values", err)
				}
			}
			loc, err := apiClient.Localities.Create(context.Background(), sub)
			if err != nil {
				fatal("create locality", err)
			}
			output(loc, loc.UUID)
		},
	}
	cmd.Flags().Float64Var(&long, "long", 0, "Longitude (WGS84)")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude (WGS84)")
	cmd.Flags().StringVar(&valuesJSON, "values", "", "Attribute values as JSON, e.g. '{\"name\":\"Kijabe Hospital\"}'")
	cmd.Flags().StringVar(&tags, "tags", "", "Pipe-delimited tags, e.g. 'urgent|24h'")
	cmd.MarkFlagRequired("long") //nolint:errcheck // flag exists.
	cmd.MarkFlagRequired("lat")  //nolint:errcheck // flag exists.
	return cmd
}

func localityUpdateCmd() *cobra.Command {
	var long, lat float64
	var valuesJSON, tags string
	cmd := &cobra.Command{
		Use:   "update <uuid>",
		Short: "Update a locality",
		Long:  "Update a locality. Attribute keys absent from --values are left untouched; an empty string value deletes the attribute.",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			sub := &client.LocalitySubmission{
				Long: &long,
				Lat:  &lat,
				Tags: tags,
			}
			if valuesJSON != "" {
				if err := json.Unmarshal([]byte(valuesJSON), &sub.Values); err != nil {
					fatal("parse values", err)
				}
			}
			loc, err := apiClient.Localities.Update(context.Background(), args[0], sub)
			if err != nil {
				fatal("update locality", err)
			}
			output(loc, loc.UUID)
		},
	}
	cmd.Flags().Float64Var(&long, "long", 0, "Longitude (WGS84)")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude (WGS84)")
	cmd.Flags().StringVar(&valuesJSON, "values", "", "Attribute values as JSON")
	cmd.Flags().StringVar(&tags, "tags", "", "Pipe-delimited tags (replaces the tag set)")
	cmd.MarkFlagRequired("long") //nolint:errcheck // flag exists.
	cmd.MarkFlagRequired("lat")  //nolint:errcheck // flag exists.
	return cmd
}

func localityHistoryCmd() *cobra.Command {
	var limit, offset int
	var key string
	var values bool
	cmd := &cobra.Command{
		Use:   "history <uuid>",
		Short: "Show a locality's version history, newest first",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if values {
				entries, hasMore, err := apiClient.Localities.ValueHistory(context.Background(), args[0], key, limit, offset)
				if err != nil {
					fatal("value history", err)
				}
				printValueHistory(entries, hasMore)
				return
			}

			entries, hasMore, err := apiClient.Localities.History(context.Background(), args[0], limit, offset)
			if err != nil {
				fatal("locality history", err)
			}
			output(map[string]any{"history": entries, "has_more": hasMore}, args[0])
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "Page offset")
	cmd.Flags().BoolVar(&values, "values", false, "Show attribute value history instead of geometry versions")
	cmd.Flags().StringVar(&key, "key", "", "Narrow value history to one attribute key")
	return cmd
}

func printValueHistory(entries []client.ValueArchive, hasMore bool) {
	if flagFmt == "table" {
		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []string{
				e.Key,
				strconv.Itoa(e.Version),
				strconv.Itoa(e.Mode),
				e.Data,
				e.ChangedAt.Format("2006-01-02 15:04"),
			})
		}
		formatTable([]string{"KEY", "VERSION", "MODE", "DATA", "CHANGED"}, rows)
		if hasMore {
			fmt.Println("(more entries available)")
		}
		return
	}
	output(map[string]any{"history": entries, "has_more": hasMore}, "")
}

func localityMapCmd() *cobra.Command {
	var bbox, geoname, tag string
	var zoom int
	cmd := &cobra.Command{
		Use:   "map",
		Short: "Fetch clustered map markers for a viewport",
		Run: func(cmd *cobra.Command, args []string) {
			clusters, err := apiClient.Localities.MapLayer(context.Background(), &client.MapLayerOptions{
				BBox:    bbox,
				Zoom:    zoom,
				Geoname: geoname,
				Tag:     tag,
			})
			if err != nil {
				fatal("map layer", err)
			}
			output(clusters, strconv.Itoa(len(clusters)))
		},
	}
	cmd.Flags().StringVar(&bbox, "bbox", "", "Bounding box 'minLon,minLat,maxLon,maxLat'")
	cmd.Flags().IntVar(&zoom, "zoom", 5, "Zoom level 0-20")
	cmd.Flags().StringVar(&geoname, "geoname", "", "Country name (overrides bbox shape)")
	cmd.Flags().StringVar(&tag, "tag", "", "Filter by tag")
	cmd.MarkFlagRequired("bbox") //nolint:errcheck // flag exists.
	return cmd
}
