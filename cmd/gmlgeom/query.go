package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/beetlebugorg/gml/pkg/gml"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

func newQueryCmd(a *app) *cobra.Command {
	var (
		bbox  string
		kinds []string
	)
	cmd := &cobra.Command{
		Use:   "query --bbox MINX,MINY,MAXX,MAXY FILE...",
		Short: "Find the geometries whose bounds intersect a box",
		Long: `query decodes every FILE into one spatial index and prints the geometries
whose bounding boxes intersect the given box, in document order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lo, hi, err := parseBBox(bbox)
			if err != nil {
				return err
			}
			var opts gml.QueryOptions
			for _, k := range kinds {
				kind, err := parseKind(k)
				if err != nil {
					return err
				}
				opts.Kinds = append(opts.Kinds, kind)
			}

			docs, err := a.load(cmd.Context(), args)
			if err != nil {
				return err
			}
			idx := gml.BuildIndex(docs)
			hits := idx.Query(lo, hi, opts)
			a.log.WithField("indexed", idx.Count()).WithField("matches", len(hits)).Info("query complete")

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, e := range hits {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Location, e.Geometry.ID(), e.Geometry.Kind(), formatEnvelope(e.Envelope))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&bbox, "bbox", "", "query box as minx,miny,maxx,maxy")
	cmd.Flags().StringSliceVar(&kinds, "kind", nil, "only report these geometry kinds, e.g. Point,Polygon")
	_ = cmd.MarkFlagRequired("bbox")
	return cmd
}

// parseBBox reads "minx,miny,maxx,maxy".
func parseBBox(s string) (gml.Position, gml.Position, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return gml.Position{}, gml.Position{}, errors.Newf("bbox must have four comma separated numbers, got %q", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return gml.Position{}, gml.Position{}, errors.Wrapf(err, "bbox value %d", i+1)
		}
		v[i] = f
	}
	return gml.XY(v[0], v[1]), gml.XY(v[2], v[3]), nil
}

// parseKind matches a geometry element name case-insensitively.
func parseKind(s string) (gml.Kind, error) {
	for k := gml.KindPoint; k <= gml.KindEnvelope; k++ {
		if strings.EqualFold(k.String(), s) {
			return k, nil
		}
	}
	return 0, errors.Newf("unknown geometry kind %q", s)
}
