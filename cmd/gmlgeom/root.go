package main

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/beetlebugorg/gml/pkg/gml"
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is the gmlgeom release.
const Version = "0.1.0"

// app carries the state shared by the commands of one invocation.
type app struct {
	configFile string
	verbose    bool
	from       string
	workers    int
	resolve    bool

	cfg *Config
	log *logrus.Logger
}

// newRootCmd builds the command tree. Each call returns independent
// commands and flags.
func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "gmlgeom",
		Short: "Decode, convert and export GML geometry.",
		Long: `gmlgeom reads the geometry elements of GML 2.1.2, 3.1.1 and 3.2.1 documents.
It converts them between dialects, exports them as WKT or GeoJSON and
answers bounding box queries over many documents.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.startup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "configuration file location")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log decoding details")
	flags.StringVarP(&a.from, "from", "f", "", "dialect of the input documents (overrides decode.dialect)")
	flags.IntVar(&a.workers, "workers", 0, "documents decoded concurrently (overrides decode.workers)")
	flags.BoolVar(&a.resolve, "resolve", false, "fetch documents named by remote references (overrides decode.resolve)")

	root.AddCommand(
		newConvertCmd(a),
		newWKTCmd(a),
		newGeoJSONCmd(a),
		newInfoCmd(a),
		newQueryCmd(a),
		newElementsCmd(a),
		newVersionCmd(),
	)
	return root
}

// startup reads the configuration file and applies flag overrides.
func (a *app) startup(cmd *cobra.Command) error {
	a.log = logrus.New()
	a.log.SetOutput(cmd.ErrOrStderr())
	a.log.SetLevel(logrus.InfoLevel)
	if a.verbose {
		a.log.SetLevel(logrus.DebugLevel)
	}

	cfg, err := ReadConfig(a.configFile)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("from") {
		cfg.Decode.Dialect = a.from
	}
	if flags.Changed("workers") {
		cfg.Decode.Workers = a.workers
	}
	if flags.Changed("resolve") {
		cfg.Decode.Resolve = a.resolve
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// load decodes paths and, when configured, resolves their remote
// references. With skip_errors failed documents are logged and left out;
// the call fails only when no document could be read.
func (a *app) load(ctx context.Context, paths []string) ([]*gml.Document, error) {
	opts, err := a.cfg.loadOptions(a.log)
	if err != nil {
		return nil, err
	}
	docs, errs := gml.DecodeFiles(paths, opts)
	if len(errs) > 0 && (!opts.SkipErrors || len(docs) == 0) {
		return nil, errs[0]
	}

	if a.cfg.Decode.Resolve {
		f := a.cfg.fetcher()
		kept := docs[:0]
		for _, doc := range docs {
			if len(doc.Context().RemoteRefs()) == 0 {
				kept = append(kept, doc)
				continue
			}
			if err := doc.ResolveRemoteRefs(ctx, f); err != nil {
				if !opts.SkipErrors {
					return nil, errors.Wrapf(err, "resolving %s", doc.Location)
				}
				a.log.WithField("path", doc.Location).WithError(err).Warn("resolving remote references failed")
				errs = append(errs, err)
				continue
			}
			kept = append(kept, doc)
		}
		docs = kept
		if len(docs) == 0 {
			return nil, errs[0]
		}
	}

	a.log.WithFields(logrus.Fields{
		"documents": len(docs),
		"failed":    len(errs),
		"dialect":   opts.Dialect.String(),
	}).Info("decoded documents")
	return docs, nil
}

// loadOne decodes a single document and fails on any error.
func (a *app) loadOne(ctx context.Context, path string) (*gml.Document, error) {
	saved := a.cfg.Decode.SkipErrors
	a.cfg.Decode.SkipErrors = false
	defer func() { a.cfg.Decode.SkipErrors = saved }()
	docs, err := a.load(ctx, []string{path})
	if err != nil {
		return nil, err
	}
	return docs[0], nil
}

// exportOptions returns the export settings shared by wkt and geojson.
func (a *app) exportOptions(digits int) gml.ExportOptions {
	return gml.ExportOptions{
		Strategy:         a.cfg.Strategy(),
		MaxDecimalDigits: digits,
	}
}

// locationFetcher fetches http and https locations over HTTP and
// everything else from the file system.
type locationFetcher struct {
	http gml.HTTPFetcher
	file gml.FileFetcher
}

func (f locationFetcher) Fetch(ctx context.Context, location string) (io.ReadCloser, error) {
	if u, err := url.Parse(location); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return f.http.Fetch(ctx, location)
	}
	return f.file.Fetch(ctx, location)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of gmlgeom",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gmlgeom v%s\n", Version)
		},
	}
}
