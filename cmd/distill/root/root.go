package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hollowoak/distill/cmd/distill/version"
	"github.com/hollowoak/distill/internal/buildinfo"
	"github.com/hollowoak/distill/internal/config"
	"github.com/hollowoak/distill/internal/distiller"
	"github.com/hollowoak/distill/internal/logging"
)

type options struct {
	configPath string
	logDir     string
	manifest   string
	dryRun     bool
	verbose    bool
	yes        bool
}

// NewRootCmd creates the root command for distill.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:     "distill <source_dir> <destination_dir>",
		Short:   "Produce a filtered, size-reduced copy of a repository",
		Args:    cobra.ExactArgs(2),
		Version: buildinfo.Summary(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDistill(cmd.Context(), args[0], args[1], opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "./config.yaml", "Path to the YAML rule config")
	f.BoolVar(&opts.dryRun, "dry-run", false, "Decide and report without writing anything")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Log per-file decisions to the console")
	f.StringVar(&opts.logDir, "log-dir", "./logs", "Directory for run log files")
	f.BoolVarP(&opts.yes, "yes", "y", false, "Overwrite the destination without prompting")
	f.StringVar(&opts.manifest, "manifest", "", "Write a YAML run manifest to this path")

	cmd.AddCommand(version.VersionCmd)

	return cmd
}

func runDistill(ctx context.Context, sourceDir, destDir string, opts *options) error {
	log, err := logging.New(opts.logDir, opts.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Close() }()

	rules, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	d, err := distiller.New(distiller.Options{
		SourceDir:    sourceDir,
		DestDir:      destDir,
		Rules:        rules,
		Log:          log,
		DryRun:       opts.dryRun,
		AssumeYes:    opts.yes,
		ManifestPath: opts.manifest,
	})
	if err != nil {
		return err
	}

	stats, err := d.Run(ctx)
	if err != nil {
		return err
	}
	if stats.Errors > 0 {
		return fmt.Errorf("completed with %d errors; see %s", stats.Errors, log.FilePath())
	}
	return nil
}

// Execute runs the root command with provided args.
func Execute(ctx context.Context, args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}
