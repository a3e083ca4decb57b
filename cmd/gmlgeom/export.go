package main

import (
	"fmt"

	"github.com/beetlebugorg/gml/pkg/gml"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

func newWKTCmd(a *app) *cobra.Command {
	var (
		digits int
		ids    bool
	)
	cmd := &cobra.Command{
		Use:   "wkt FILE",
		Short: "Print the geometries of a document as well-known text",
		Long: `wkt prints one line of well-known text per geometry of FILE. Curves are
linearized with the configured criterion.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.loadOne(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			opts := a.exportOptions(digits)
			out := cmd.OutOrStdout()
			for i, g := range doc.Geometries {
				text, err := gml.MarshalWKT(g, opts)
				if err != nil {
					return errors.Wrapf(err, "geometry %d", i+1)
				}
				if ids {
					fmt.Fprintf(out, "%s\t%s\n", g.ID(), text)
				} else {
					fmt.Fprintln(out, text)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&digits, "digits", 0, "maximum decimal digits (0 for full precision)")
	cmd.Flags().BoolVar(&ids, "ids", false, "prefix each line with the geometry id and a tab")
	return cmd
}

func newGeoJSONCmd(a *app) *cobra.Command {
	var (
		digits int
		bbox   bool
		crs    bool
	)
	cmd := &cobra.Command{
		Use:   "geojson FILE",
		Short: "Print the geometries of a document as a GeoJSON feature collection",
		Long: `geojson prints a FeatureCollection with one feature per geometry of FILE.
Feature ids are the gml:id values; the kind and srsName of each geometry
are kept as properties.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.loadOne(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			opts := a.exportOptions(digits)
			opts.BBox = bbox
			opts.CRS = crs
			data, err := doc.MarshalGeoJSON(opts)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	cmd.Flags().IntVar(&digits, "digits", 0, "maximum decimal digits (0 for full precision)")
	cmd.Flags().BoolVar(&bbox, "bbox", false, "add a bbox member to each geometry")
	cmd.Flags().BoolVar(&crs, "crs", false, "add a named crs member to each geometry")
	return cmd
}
