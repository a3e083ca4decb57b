package gml

import (
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
)

// LoadOptions controls batch decoding with DecodeFiles.
type LoadOptions struct {
	// Dialect of every document in the batch.
	Dialect Dialect

	// Decode is passed to the decoder of each document. A configured Cache
	// is shared by all workers.
	Decode DecodeOptions

	// Parallel enables concurrent decoding.
	Parallel bool

	// Workers is the number of decoding goroutines. If 0, defaults to
	// runtime.NumCPU(). Only used when Parallel is true.
	Workers int

	// SkipErrors keeps decoding when a document fails; failures are
	// collected. When false the first error stops the batch.
	SkipErrors bool

	// Progress is called after each document with the number processed so
	// far and the batch size.
	Progress func(loaded, total int)

	// Logger receives one warning per failed document. Nil uses the logrus
	// standard logger.
	Logger logrus.FieldLogger
}

// DefaultLoadOptions returns load options for dialect d.
func DefaultLoadOptions(d Dialect) LoadOptions {
	return LoadOptions{
		Dialect:    d,
		Decode:     DefaultDecodeOptions(),
		Parallel:   true,
		Workers:    runtime.NumCPU(),
		SkipErrors: true,
	}
}

// DecodeFiles decodes many documents, each with its own decoder and
// reference context. Documents are returned in the order of paths; failed
// documents are left out and their errors returned.
//
// Example:
//
//	docs, errs := gml.DecodeFiles(paths, gml.LoadOptions{
//	    Dialect:    gml.GML32,
//	    Decode:     gml.DefaultDecodeOptions(),
//	    Parallel:   true,
//	    SkipErrors: true,
//	    Progress: func(loaded, total int) {
//	        fmt.Printf("\rDecoding: %d/%d", loaded, total)
//	    },
//	})
func DecodeFiles(paths []string, opts LoadOptions) ([]*Document, []error) {
	if len(paths) == 0 {
		return []*Document{}, nil
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if !opts.Parallel {
		return decodeFilesSerial(paths, opts)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	type loadResult struct {
		index int
		doc   *Document
		err   error
	}

	jobs := make(chan int, len(paths))
	results := make(chan loadResult, len(paths))
	done := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobs {
				select {
				case <-done:
					return
				default:
				}
				doc, err := DecodeFile(paths[index], opts.Dialect, opts.Decode)
				results <- loadResult{index: index, doc: doc, err: err}
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	docs := make([]*Document, len(paths))
	var errs []error
	loaded := 0
	for result := range results {
		loaded++
		if opts.Progress != nil {
			opts.Progress(loaded, len(paths))
		}
		if result.err != nil {
			opts.Logger.WithField("path", paths[result.index]).WithError(result.err).Warn("decoding failed")
			if !opts.SkipErrors {
				close(done)
				// Drain so the workers can exit.
				for range results {
				}
				return nil, []error{result.err}
			}
			errs = append(errs, result.err)
			continue
		}
		docs[result.index] = result.doc
	}

	out := make([]*Document, 0, len(paths))
	for _, doc := range docs {
		if doc != nil {
			out = append(out, doc)
		}
	}
	return out, errs
}

func decodeFilesSerial(paths []string, opts LoadOptions) ([]*Document, []error) {
	docs := make([]*Document, 0, len(paths))
	var errs []error

	for i, path := range paths {
		doc, err := DecodeFile(path, opts.Dialect, opts.Decode)
		if opts.Progress != nil {
			opts.Progress(i+1, len(paths))
		}
		if err != nil {
			opts.Logger.WithField("path", path).WithError(err).Warn("decoding failed")
			if !opts.SkipErrors {
				return nil, []error{err}
			}
			errs = append(errs, err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, errs
}
