// Package batch converts a directory tree of wiki documents into Markdown,
// mirroring the tree into a destination directory.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/afero"

	"github.com/rgonek/dokuwiki-md-converter/converter"
	"github.com/rgonek/dokuwiki-md-converter/internal/logging"
	"github.com/rgonek/dokuwiki-md-converter/internal/manifest"
	"github.com/rgonek/dokuwiki-md-converter/markdown"
)

const (
	defaultWorkers = 4

	invalidOptionsCode = "BATCH_INVALID_OPTIONS"
	headerFailedCode   = "BATCH_HEADER_FAILED"
	walkFailedCode     = "BATCH_WALK_FAILED"
	convertFailedCode  = "BATCH_CONVERT_FAILED"
	copyFailedCode     = "BATCH_COPY_FAILED"
	writeFailedCode    = "BATCH_WRITE_FAILED"
	manifestFailedCode = "BATCH_MANIFEST_FAILED"
	runCanceledCode    = "BATCH_RUN_CANCELED"
	runFailedCode      = "BATCH_RUN_FAILED"
)

// Options describes one batch run.
type Options struct {
	Source     string `json:"source"`
	Dest       string `json:"dest"`
	HeaderFile string `json:"headerFile,omitempty"`
	Workers    int    `json:"workers,omitempty"`
	// Force converts every candidate even when the manifest says it is unchanged.
	Force     bool             `json:"force,omitempty"`
	Converter converter.Config `json:"converter"`
}

// Validate checks that options are usable.
func (o Options) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Source, validation.Required),
		validation.Field(&o.Dest, validation.Required, validation.By(func(value any) error {
			dest, _ := value.(string)
			if filepath.Clean(dest) == filepath.Clean(o.Source) {
				return errors.New("must differ from source")
			}
			return nil
		})),
		validation.Field(&o.Workers, validation.Min(1), validation.Max(64)),
	)
}

// Manifest is the subset of manifest.Store the runner uses.
type Manifest interface {
	Unchanged(source, checksum string) (manifest.Record, bool, error)
	Put(source string, rec manifest.Record) error
}

// Failure records a file that could not be processed.
type Failure struct {
	Path string `json:"path"`
	Err  error  `json:"-"`
}

// Summary is the outcome of a run.
type Summary struct {
	RunID     string             `json:"runId"`
	Converted int                `json:"converted"`
	Copied    int                `json:"copied"`
	Skipped   int                `json:"skipped"`
	Failed    int                `json:"failed"`
	Notices   []converter.Notice `json:"notices,omitempty"`
	Failures  []Failure          `json:"failures,omitempty"`
	Duration  time.Duration      `json:"duration"`
}

// Runner executes batch runs against a filesystem.
type Runner struct {
	fs       afero.Fs
	logger   logging.Logger
	manifest Manifest
	now      func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner logger.
func WithLogger(logger logging.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithManifest enables skipping unchanged sources.
func WithManifest(m Manifest) Option {
	return func(r *Runner) {
		r.manifest = m
	}
}

// WithClock overrides the clock used for manifest timestamps and durations.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRunner creates a Runner over fs.
func NewRunner(fs afero.Fs, opts ...Option) *Runner {
	r := &Runner{
		fs:     fs,
		logger: logging.NoOp(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type job struct {
	source string
	rel    string
}

type run struct {
	*Runner
	opts   Options
	runID  string
	conv   *converter.Converter
	header *Header
	logger logging.Logger

	mu      sync.Mutex
	summary Summary
}

// Run converts or copies every file under opts.Source into opts.Dest.
// Per-file failures do not stop the run; they are listed in the summary and
// returned together once every worker has finished.
func (r *Runner) Run(ctx context.Context, opts Options) (Summary, error) {
	if opts.Workers == 0 {
		opts.Workers = defaultWorkers
	}
	if err := opts.Validate(); err != nil {
		return Summary{}, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid batch options").
			WithTextCode(invalidOptionsCode)
	}

	started := r.now()
	runID := uuid.NewString()

	cfg := opts.Converter
	cfg.FS = r.fs
	conv, err := converter.New(cfg)
	if err != nil {
		return Summary{}, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid converter config").
			WithTextCode(invalidOptionsCode)
	}

	rn := &run{
		Runner:  r,
		opts:    opts,
		runID:   runID,
		conv:    conv,
		logger:  logging.WithFields(r.logger, map[string]any{"run_id": runID}),
		summary: Summary{RunID: runID},
	}

	if opts.HeaderFile != "" {
		header, err := rn.loadHeader(opts.HeaderFile)
		if err != nil {
			return rn.summary, err
		}
		rn.header = &header
	}

	jobs, err := rn.collect()
	if err != nil {
		return rn.summary, err
	}
	rn.logger.Info("batch.started", "source", opts.Source, "dest", opts.Dest, "files", len(jobs), "workers", opts.Workers)

	p := pool.New().WithErrors().WithMaxGoroutines(opts.Workers)
	for _, j := range jobs {
		p.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := rn.process(ctx, j); err != nil {
				rn.fail(j, err)
				return err
			}
			return nil
		})
	}
	runErr := p.Wait()

	summary := rn.finish(started)

	if err := ctx.Err(); err != nil {
		return summary, goerrors.Wrap(err, goerrors.CategoryCommand, "batch run cancelled").
			WithTextCode(runCanceledCode)
	}
	if runErr != nil {
		return summary, goerrors.Wrap(runErr, goerrors.CategoryCommand, fmt.Sprintf("%d file(s) failed", summary.Failed)).
			WithTextCode(runFailedCode)
	}
	return summary, nil
}

func (rn *run) loadHeader(path string) (Header, error) {
	data, err := afero.ReadFile(rn.fs, path)
	if err != nil {
		return Header{}, goerrors.Wrap(err, goerrors.CategoryCommand, "read header file").
			WithTextCode(headerFailedCode)
	}
	header, err := ParseHeader(data)
	if err != nil {
		return Header{}, goerrors.Wrap(err, goerrors.CategoryValidation, "parse header file").
			WithTextCode(headerFailedCode)
	}
	return header, nil
}

// collect lists every regular file under the source, skipping the
// destination when it is nested inside the source.
func (rn *run) collect() ([]job, error) {
	source := filepath.Clean(rn.opts.Source)
	dest := filepath.Clean(rn.opts.Dest)

	info, err := rn.fs.Stat(source)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryCommand, "stat source").
			WithTextCode(walkFailedCode)
	}
	if !info.IsDir() {
		return []job{{source: source, rel: filepath.Base(source)}}, nil
	}

	var jobs []job
	err = afero.Walk(rn.fs, source, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != source && filepath.Clean(path) == dest {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(source, path)
		if err != nil {
			return err
		}
		jobs = append(jobs, job{source: path, rel: rel})
		return nil
	})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryCommand, "walk source").
			WithTextCode(walkFailedCode)
	}
	return jobs, nil
}

func isCandidate(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		return true
	}
	return false
}

// outputPath maps a source-relative path into the destination, renaming
// .txt documents to .md.
func outputPath(dest, rel string) string {
	if strings.EqualFold(filepath.Ext(rel), ".txt") {
		rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + ".md"
	}
	return filepath.Join(dest, rel)
}

func (rn *run) process(ctx context.Context, j job) error {
	logger := logging.WithFields(rn.logger, map[string]any{"file": j.rel})

	if !isCandidate(j.source) {
		target := filepath.Join(rn.opts.Dest, j.rel)
		if err := rn.copyFile(j.source, target); err != nil {
			return err
		}
		logger.Info("batch.copied", "reason", "not a wiki document")
		rn.count(func(s *Summary) { s.Copied++ })
		return nil
	}

	data, err := afero.ReadFile(rn.fs, j.source)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryCommand, "read source").
			WithTextCode(convertFailedCode)
	}

	target := outputPath(rn.opts.Dest, j.rel)

	if signal, ok := markdown.DetectSignal(string(data)); ok {
		if err := rn.copyFile(j.source, target); err != nil {
			return err
		}
		logger.Info("batch.copied", "reason", "markdown detected", "signal", signal.String(), "output", target)
		rn.count(func(s *Summary) { s.Copied++ })
		return nil
	}

	checksum := manifest.Checksum(data)

	if rn.manifest != nil && !rn.opts.Force {
		_, unchanged, err := rn.manifest.Unchanged(j.rel, checksum)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryCommand, "read manifest").
				WithTextCode(manifestFailedCode)
		}
		if unchanged {
			if exists, _ := afero.Exists(rn.fs, target); exists {
				logger.Debug("batch.skipped", "reason", "unchanged")
				rn.count(func(s *Summary) { s.Skipped++ })
				return nil
			}
		}
	}

	result, err := rn.conv.ConvertWithContext(ctx, string(data), converter.ConvertOptions{
		SourcePath: j.rel,
		OutputPath: target,
	})
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryCommand, "convert document").
			WithTextCode(convertFailedCode)
	}

	for _, notice := range result.Notices {
		logger.Warn(notice.Message, "line", notice.Line, "type", string(notice.Type))
	}

	output := result.Markdown
	if rn.header != nil {
		output, err = rn.header.Apply(output)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryCommand, "apply header").
				WithTextCode(headerFailedCode)
		}
	}

	if err := rn.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryCommand, "create output directory").
			WithTextCode(writeFailedCode)
	}
	if err := afero.WriteFile(rn.fs, target, []byte(output), 0o644); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryCommand, "write output").
			WithTextCode(writeFailedCode)
	}
	if err := converter.CopyImages(rn.fs, result.Relocations); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryCommand, "relocate images").
			WithTextCode(copyFailedCode)
	}

	if rn.manifest != nil {
		err := rn.manifest.Put(j.rel, manifest.Record{
			Checksum:    checksum,
			Output:      target,
			RunID:       rn.runID,
			Notices:     len(result.Notices),
			ConvertedAt: rn.now().UTC(),
		})
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryCommand, "write manifest").
				WithTextCode(manifestFailedCode)
		}
	}

	logger.Info("batch.converted", "output", target, "notices", len(result.Notices), "images", len(result.Relocations))
	rn.count(func(s *Summary) {
		s.Converted++
		s.Notices = append(s.Notices, result.Notices...)
	})
	return nil
}

func (rn *run) copyFile(source, target string) error {
	if err := rn.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryCommand, "create output directory").
			WithTextCode(copyFailedCode)
	}

	in, err := rn.fs.Open(source)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryCommand, "open source").
			WithTextCode(copyFailedCode)
	}
	defer in.Close()

	out, err := rn.fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryCommand, "create copy").
			WithTextCode(copyFailedCode)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return goerrors.Wrap(err, goerrors.CategoryCommand, "copy file").
			WithTextCode(copyFailedCode)
	}
	if err := out.Close(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryCommand, "close copy").
			WithTextCode(copyFailedCode)
	}
	return nil
}

func (rn *run) count(update func(*Summary)) {
	rn.mu.Lock()
	defer rn.mu.Unlock()
	update(&rn.summary)
}

func (rn *run) fail(j job, err error) {
	rn.logger.Error("batch.failed", "file", j.rel, "error", err)
	rn.count(func(s *Summary) {
		s.Failed++
		s.Failures = append(s.Failures, Failure{Path: j.rel, Err: err})
	})
}

// finish orders notices and failures so summaries are stable across runs.
func (rn *run) finish(started time.Time) Summary {
	rn.mu.Lock()
	defer rn.mu.Unlock()

	sort.SliceStable(rn.summary.Notices, func(i, k int) bool {
		a, b := rn.summary.Notices[i], rn.summary.Notices[k]
		if a.File != b.File {
			return a.File < b.File
		}
		return a.Line < b.Line
	})
	sort.Slice(rn.summary.Failures, func(i, k int) bool {
		return rn.summary.Failures[i].Path < rn.summary.Failures[k].Path
	})
	rn.summary.Duration = rn.now().Sub(started)

	summary := rn.summary
	return summary
}
