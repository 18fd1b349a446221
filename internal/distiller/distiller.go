// Package distiller orchestrates a run: it validates the source and
// destination layout, walks the source tree, decides every file through the
// rule cascade, and materializes the distilled copy with a worker pool.
package distiller

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hollowoak/distill/internal/config"
	"github.com/hollowoak/distill/internal/decision"
	"github.com/hollowoak/distill/internal/fsutil"
	"github.com/hollowoak/distill/internal/logging"
	"github.com/hollowoak/distill/internal/luahook"
	"github.com/hollowoak/distill/internal/sampler"
)

// Options configures one distillation run.
type Options struct {
	SourceDir string
	DestDir   string
	Rules     *config.RuleSet
	Log       *logging.Logger

	// DryRun decides and reports without touching the destination.
	DryRun bool
	// AssumeYes skips the overwrite confirmation prompt.
	AssumeYes bool
	// ManifestPath, when set, receives a YAML record of the run.
	ManifestPath string

	// Stdin and Stdout back the confirmation prompt; they default to the
	// process streams.
	Stdin  io.Reader
	Stdout io.Writer
}

// Distiller executes runs for a fixed rule set.
type Distiller struct {
	opts    Options
	rules   *config.RuleSet
	log     *logging.Logger
	engine  *decision.Engine
	sampler *sampler.Sampler
	hook    *luahook.Hook
	stats   *Stats
}

// New builds a distiller, compiling the optional Lua filter up front so a
// broken script fails before any traversal.
func New(opts Options) (*Distiller, error) {
	if opts.Rules == nil {
		return nil, &ValidationError{Msg: "no rule set provided"}
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	hook, err := luahook.Compile(opts.Rules.LuaFilterInline,
		time.Duration(opts.Rules.LuaFilterTimeoutMs)*time.Millisecond)
	if err != nil {
		return nil, err
	}

	return &Distiller{
		opts:   opts,
		rules:  opts.Rules,
		log:    opts.Log,
		engine: decision.NewEngine(opts.Rules),
		sampler: sampler.New(sampler.Options{
			IncludeHeader: opts.Rules.SamplingIncludeHeader,
			HeadRows:      opts.Rules.SamplingHeadRows,
			TailRows:      opts.Rules.SamplingTailRows,
		}, opts.Log),
		hook:  hook,
		stats: newStats(),
	}, nil
}

// Run performs the distillation and returns the accumulated statistics. A
// declined confirmation or a cancelled context yields a *CancelledError; an
// unusable source/destination layout yields a *ValidationError. Per-file
// failures are counted and logged, never fatal.
func (d *Distiller) Run(ctx context.Context) (*Stats, error) {
	absSource, absDest, err := d.resolveRoots()
	if err != nil {
		return d.stats, err
	}

	d.log.Infof("Source:      %s", absSource)
	d.log.Infof("Destination: %s", absDest)
	d.log.Infof("Profile:     %s", d.rules.AICodingEnv)
	if d.opts.DryRun {
		d.log.Infof("Dry run: no files will be written")
	}

	if !d.opts.DryRun {
		if err := d.prepareDest(absDest); err != nil {
			return d.stats, err
		}
	}

	start := time.Now()
	jobs, err := d.collect(ctx, absSource, absDest)
	if err != nil {
		return d.stats, d.wrapCtxErr(ctx, err)
	}

	if d.opts.DryRun {
		for _, j := range jobs {
			d.log.Infof("[DRY RUN] %-6s %s", j.action.String(), j.relPath)
			d.recordSuccess(j.action)
		}
	} else {
		runJobs(ctx, jobs, d.rules.Workers, d.process, func(j job, err error) {
			if err != nil {
				d.log.Errorf("Error processing file %s: %v", j.relPath, err)
				d.stats.addError()
				return
			}
			d.log.Debugf("%-6s %s", j.action.String(), j.relPath)
			d.recordSuccess(j.action)
		})
	}
	if ctx.Err() != nil {
		return d.stats, &CancelledError{Msg: "distillation interrupted"}
	}

	d.printSummary(time.Since(start))

	if d.opts.ManifestPath != "" {
		m := Manifest{
			SourceDir:   absSource,
			DestDir:     absDest,
			AICodingEnv: d.rules.AICodingEnv,
			DryRun:      d.opts.DryRun,
			Counts: ManifestCounts{
				Scanned: d.stats.Scanned,
				Copied:  d.stats.Copied,
				Sampled: d.stats.Sampled,
				Skipped: d.stats.Skipped,
				Errors:  d.stats.Errors,
			},
			SkipReasons: d.stats.ReasonsByFrequency(),
		}
		if err := writeManifest(d.opts.ManifestPath, m); err != nil {
			return d.stats, err
		}
		d.log.Infof("Manifest written to %s", d.opts.ManifestPath)
	}
	return d.stats, nil
}

func (d *Distiller) resolveRoots() (string, string, error) {
	absSource, err := filepath.Abs(d.opts.SourceDir)
	if err != nil {
		return "", "", &ValidationError{Msg: fmt.Sprintf("cannot resolve source directory %q: %v", d.opts.SourceDir, err)}
	}
	info, err := os.Stat(absSource)
	if err != nil {
		return "", "", &ValidationError{Msg: fmt.Sprintf("source directory does not exist: %s", absSource)}
	}
	if !info.IsDir() {
		return "", "", &ValidationError{Msg: fmt.Sprintf("source is not a directory: %s", absSource)}
	}

	absDest, err := filepath.Abs(d.opts.DestDir)
	if err != nil {
		return "", "", &ValidationError{Msg: fmt.Sprintf("cannot resolve destination directory %q: %v", d.opts.DestDir, err)}
	}
	if absDest == absSource {
		return "", "", &ValidationError{Msg: "destination must differ from source"}
	}
	sep := string(filepath.Separator)
	if strings.HasPrefix(absDest, absSource+sep) {
		return "", "", &ValidationError{Msg: fmt.Sprintf("destination %s is inside source %s", absDest, absSource)}
	}
	if strings.HasPrefix(absSource, absDest+sep) {
		return "", "", &ValidationError{Msg: fmt.Sprintf("source %s is inside destination %s", absSource, absDest)}
	}
	return absSource, absDest, nil
}

// prepareDest clears and recreates the destination, prompting first when it
// already holds anything.
func (d *Distiller) prepareDest(absDest string) error {
	if _, err := os.Stat(absDest); err == nil {
		if !d.opts.AssumeYes {
			if !confirmOverwrite(absDest, d.opts.Stdin, d.opts.Stdout, d.log) {
				return &CancelledError{Msg: "distillation cancelled by user"}
			}
		}
		if err := os.RemoveAll(absDest); err != nil {
			return fmt.Errorf("remove destination: %w", err)
		}
	}
	if err := os.MkdirAll(absDest, 0o755); err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	return nil
}

func (d *Distiller) process(j job) error {
	if j.action == decision.ActionSample {
		return d.sampler.Sample(j.srcPath, j.destPath)
	}
	return fsutil.CopyFile(j.srcPath, j.destPath)
}

func (d *Distiller) recordSuccess(a decision.Action) {
	if a == decision.ActionSample {
		d.stats.addSampled()
	} else {
		d.stats.addCopied()
	}
}

func (d *Distiller) wrapCtxErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return &CancelledError{Msg: "distillation interrupted"}
	}
	return err
}

func (d *Distiller) printSummary(elapsed time.Duration) {
	d.log.Infof("Distillation complete in %s", elapsed.Round(time.Millisecond))
	d.log.Infof("  Scanned: %d", d.stats.Scanned)
	d.log.Infof("  Copied:  %d", d.stats.Copied)
	d.log.Infof("  Sampled: %d", d.stats.Sampled)
	d.log.Infof("  Skipped: %d", d.stats.Skipped)
	d.log.Infof("  Errors:  %d", d.stats.Errors)
	if reasons := d.stats.ReasonsByFrequency(); len(reasons) > 0 {
		d.log.Infof("Skip reasons:")
		for _, rc := range reasons {
			d.log.Infof("  %6d  %s", rc.Count, rc.Reason)
		}
	}
}
