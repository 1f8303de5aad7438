package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/rgonek/dokuwiki-md-converter/converter"
	"github.com/rgonek/dokuwiki-md-converter/internal/batch"
	"github.com/rgonek/dokuwiki-md-converter/internal/config"
	"github.com/rgonek/dokuwiki-md-converter/internal/console"
	"github.com/rgonek/dokuwiki-md-converter/internal/logging"
	"github.com/rgonek/dokuwiki-md-converter/internal/logging/gologger"
	"github.com/rgonek/dokuwiki-md-converter/internal/manifest"
	"github.com/rgonek/dokuwiki-md-converter/markdown"
)

var errDestinationRequired = errors.New("a destination directory is required when the source is a directory")

// app carries what every command needs, so tests can swap the filesystem
// and output streams.
type app struct {
	fs     afero.Fs
	v      *viper.Viper
	stdout io.Writer
	stderr io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cmd := newRootCmd(afero.NewOsFs(), config.New(), os.Stdout, os.Stderr)
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(fs afero.Fs, v *viper.Viper, stdout, stderr io.Writer) *cobra.Command {
	a := &app{fs: fs, v: v, stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "dokumd <source-path> [destination-path] [header-file]",
		Short: "Convert DokuWiki pages to Markdown Extra",
		Long: `Converts DokuWiki markup to Markdown Extra.

With a single file argument the converted Markdown is written to stdout and
notices to stderr. With a destination directory the source tree is mirrored:
.txt pages become .md, pages that already look like Markdown and every other
file are copied unchanged, and referenced images are copied next to the
converted pages.`,
		Args:          cobra.RangeArgs(1, 3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          a.runConvert,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	persistent := root.PersistentFlags()
	persistent.String("config", "", "Config file (default: dokumd.yaml in ~/.config/dokumd, ~ or .)")
	persistent.String("image-root", "", "Directory holding the wiki media tree")
	persistent.String("api-host", "", "Host whose links are rewritten to API references")
	persistent.String("log-level", "", "Log level: trace|debug|info|warn|error|fatal")
	persistent.String("log-format", "", "Log format: console|json|pretty")

	local := root.Flags()
	local.Int("workers", 0, "Number of pages converted in parallel")
	local.String("manifest", "", "Manifest database used to skip unchanged pages")
	local.Bool("force", false, "Convert every page even when the manifest says it is unchanged")

	mustBind(v, "image_root", persistent.Lookup("image-root"))
	mustBind(v, "api_host", persistent.Lookup("api-host"))
	mustBind(v, "log.level", persistent.Lookup("log-level"))
	mustBind(v, "log.format", persistent.Lookup("log-format"))
	mustBind(v, "workers", local.Lookup("workers"))
	mustBind(v, "manifest", local.Lookup("manifest"))
	mustBind(v, "force", local.Lookup("force"))

	root.AddCommand(
		&cobra.Command{
			Use:   "detect <file>...",
			Short: "Report whether files already look like Markdown",
			Args:  cobra.MinimumNArgs(1),
			RunE:  a.runDetect,
		},
		&cobra.Command{
			Use:   "preview <file>",
			Short: "Convert a wiki page and print the rendered HTML",
			Args:  cobra.ExactArgs(1),
			RunE:  a.runPreview,
		},
	)

	return root
}

func mustBind(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", key, err))
	}
}

// resolveConfig loads the merged settings. Flag values only win when set,
// which viper handles through the bound pflags.
func (a *app) resolveConfig(cmd *cobra.Command) (config.Config, error) {
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	return config.Load(a.v, configFile)
}

func (a *app) loggerProvider(cfg config.Config) (logging.Provider, error) {
	provider, err := gologger.NewProvider(gologger.Config{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		AddSource: cfg.Log.AddSource,
	})
	if err != nil {
		return nil, err
	}
	return provider, nil
}

func (a *app) newConverter(cfg config.Config) (*converter.Converter, error) {
	convCfg := cfg.ConverterConfig()
	convCfg.FS = a.fs
	return converter.New(convCfg)
}

func (a *app) runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := a.resolveConfig(cmd)
	if err != nil {
		return err
	}

	source := args[0]
	info, err := a.fs.Stat(source)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}

	if len(args) == 1 {
		if info.IsDir() {
			return errDestinationRequired
		}
		return a.convertToStdout(cmd.Context(), cfg, source)
	}

	opts := batch.Options{
		Source:    source,
		Dest:      args[1],
		Workers:   cfg.Workers,
		Force:     cfg.Force,
		Converter: cfg.ConverterConfig(),
	}
	if len(args) == 3 {
		opts.HeaderFile = args[2]
	}

	provider, err := a.loggerProvider(cfg)
	if err != nil {
		return err
	}

	runnerOpts := []batch.Option{
		batch.WithLogger(logging.ModuleLogger(provider, logging.BatchModule)),
	}
	if cfg.Manifest != "" {
		store, err := manifest.Open(cfg.Manifest, logging.ModuleLogger(provider, logging.ManifestModule))
		if err != nil {
			return err
		}
		defer store.Close()
		runnerOpts = append(runnerOpts, batch.WithManifest(store))
	}

	summary, runErr := batch.NewRunner(a.fs, runnerOpts...).Run(cmd.Context(), opts)
	if summary.RunID != "" {
		if err := console.NewPrinter(a.stdout).Summary(summary); err != nil {
			return err
		}
	}
	return runErr
}

func (a *app) convertToStdout(ctx context.Context, cfg config.Config, source string) error {
	conv, err := a.newConverter(cfg)
	if err != nil {
		return err
	}

	data, err := afero.ReadFile(a.fs, source)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}

	result, err := conv.ConvertWithContext(ctx, string(data), converter.ConvertOptions{SourcePath: source})
	if err != nil {
		return fmt.Errorf("convert %s: %w", source, err)
	}

	if _, err := io.WriteString(a.stdout, result.Markdown); err != nil {
		return err
	}
	return console.NewPrinter(a.stderr).Notices(result.Notices)
}

func (a *app) runDetect(cmd *cobra.Command, args []string) error {
	for _, path := range args {
		f, err := a.fs.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		sig, ok, err := markdown.DetectReader(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("detect %s: %w", path, err)
		}

		if ok {
			fmt.Fprintf(a.stdout, "%s: markdown (%s)\n", path, sig)
		} else {
			fmt.Fprintf(a.stdout, "%s: wiki\n", path)
		}
	}
	return nil
}

func (a *app) runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := a.resolveConfig(cmd)
	if err != nil {
		return err
	}
	conv, err := a.newConverter(cfg)
	if err != nil {
		return err
	}

	data, err := afero.ReadFile(a.fs, args[0])
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}

	result, err := conv.ConvertWithContext(cmd.Context(), string(data), converter.ConvertOptions{SourcePath: args[0]})
	if err != nil {
		return fmt.Errorf("convert %s: %w", args[0], err)
	}

	html, err := markdown.Render(result.Markdown)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(a.stdout, html); err != nil {
		return err
	}
	return console.NewPrinter(a.stderr).Notices(result.Notices)
}
