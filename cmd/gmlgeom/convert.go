package main

import (
	"io"
	"os"

	"github.com/beetlebugorg/gml/pkg/gml"
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// containerNamespace holds the wrapper elements of converted output.
const containerNamespace = "https://github.com/beetlebugorg/gml/gmlgeom"

func newConvertCmd(a *app) *cobra.Command {
	var (
		to        string
		output    string
		linearize bool
	)
	cmd := &cobra.Command{
		Use:   "convert FILE",
		Short: "Rewrite the geometries of a document in another GML dialect",
		Long: `convert decodes every geometry of FILE and writes them, in document order,
as geom:member children of a geom:Geometries element in the output dialect.
Curves and patches the output dialect cannot express are linearized unless
--linearize=false, in which case they fail the conversion.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if cmd.Flags().Changed("to") {
				a.cfg.Encode.Dialect = to
			}
			if cmd.Flags().Changed("linearize") {
				a.cfg.Encode.Linearize = linearize
			}
			d, err := gml.ParseDialect(a.cfg.Encode.Dialect)
			if err != nil {
				return err
			}
			enc, err := gml.NewEncoder(d, a.cfg.encodeOptions(a.log))
			if err != nil {
				return err
			}
			doc, err := a.loadOne(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if output != "" {
				f, ferr := os.Create(output)
				if ferr != nil {
					return errors.Wrap(ferr, "creating output")
				}
				defer func() {
					if cerr := f.Close(); err == nil && cerr != nil {
						err = errors.Wrap(cerr, "closing output")
					}
				}()
				out = f
			}
			if err := writeGeometries(out, enc, doc.Geometries); err != nil {
				return errors.Wrapf(err, "converting %s", args[0])
			}
			a.log.WithFields(logrus.Fields{
				"from":       doc.Dialect().String(),
				"to":         d.String(),
				"geometries": len(doc.Geometries),
			}).Info("converted document")
			return nil
		},
	}
	cmd.Flags().StringVarP(&to, "to", "t", "", "output dialect (overrides encode.dialect)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default standard output)")
	cmd.Flags().BoolVar(&linearize, "linearize", true, "approximate curves the output dialect cannot express (overrides encode.linearize)")
	return cmd
}

// writeGeometries encodes gs as members of one wrapper element.
func writeGeometries(w io.Writer, enc *gml.Encoder, gs []gml.Geometry) error {
	sink := gml.NewSink(w, enc.Dialect())
	sink.Bind("geom", containerNamespace)
	if err := sink.StartElement(containerNamespace, "Geometries"); err != nil {
		return err
	}
	for i, g := range gs {
		if err := sink.StartElement(containerNamespace, "member"); err != nil {
			return err
		}
		if err := enc.Encode(sink, g); err != nil {
			return errors.Wrapf(err, "geometry %d", i+1)
		}
		if err := sink.EndElement(); err != nil {
			return err
		}
	}
	if err := sink.EndElement(); err != nil {
		return err
	}
	return sink.Flush()
}
