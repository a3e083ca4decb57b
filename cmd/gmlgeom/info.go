package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/beetlebugorg/gml/pkg/gml"
	"github.com/spf13/cobra"
)

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info FILE...",
		Short: "Summarize the geometries of one or more documents",
		Long: `info prints, per document, the number of geometries by kind, their
coordinate reference systems, the references into other documents and
the bounding box of everything decoded.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := a.load(cmd.Context(), args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, doc := range docs {
				if i > 0 {
					fmt.Fprintln(out)
				}
				printDocumentInfo(out, doc)
			}
			return nil
		},
	}
}

func printDocumentInfo(w io.Writer, doc *gml.Document) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintf(tw, "Document:\t%s\n", doc.Location)
	fmt.Fprintf(tw, "Dialect:\tGML %s\n", doc.Dialect())
	fmt.Fprintf(tw, "Geometries:\t%d\n", len(doc.Geometries))

	kinds := map[string]int{}
	systems := map[string]bool{}
	for _, g := range doc.Geometries {
		kinds[g.Kind().String()]++
		if c := g.CRS(); c != nil {
			systems[c.ID()] = true
		}
	}
	for _, k := range sortedKeys(kinds) {
		fmt.Fprintf(tw, "  %s:\t%d\n", k, kinds[k])
	}
	if len(systems) > 0 {
		names := make([]string, 0, len(systems))
		for s := range systems {
			names = append(names, s)
		}
		sort.Strings(names)
		fmt.Fprintf(tw, "CRS:\t%s\n", strings.Join(names, ", "))
	}
	if remote := doc.Context().RemoteRefs(); len(remote) > 0 {
		fmt.Fprintf(tw, "Unresolved remote references:\t%d\n", len(remote))
	}

	idx := gml.NewIndex()
	idx.AddDocument(doc)
	if env, ok := idx.Bounds(); ok {
		fmt.Fprintf(tw, "Bounds:\t%s\n", formatEnvelope(env))
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatEnvelope(env *gml.Envelope) string {
	return fmt.Sprintf("(%s) - (%s)", formatPosition(env.Min), formatPosition(env.Max))
}

func formatPosition(p gml.Position) string {
	parts := make([]string, 0, 3)
	for _, v := range p.Ordinates() {
		parts = append(parts, fmt.Sprintf("%g", v))
	}
	return strings.Join(parts, " ")
}

func newElementsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "elements",
		Short: "List the geometry elements the input dialect decodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := gml.ParseDialect(a.cfg.Decode.Dialect)
			if err != nil {
				return err
			}
			for _, name := range gml.GeometryElements(d) {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
