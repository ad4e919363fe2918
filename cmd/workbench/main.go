package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/juparave/workbench/internal/app"
	"github.com/juparave/workbench/internal/config"
	"github.com/juparave/workbench/internal/playback"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	cfgFile string
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "workbench",
		Short:         "Workbench - blame annotations and run configurations",
		Long:          `Workbench annotates files with the commits that last touched each line and launches named run configurations, alone or from playback scripts.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to config file (default: ~/.config/workbench/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(annotateCmd(), runCmd(), playbackCmd(), configsCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		if playback.IsCancellation(err) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunner() (*app.Runner, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Verbose = verbose
	return app.NewRunner(cfg, os.Stdout, os.Stderr), nil
}

func annotateCmd() *cobra.Command {
	var req app.AnnotateRequest

	cmd := &cobra.Command{
		Use:   "annotate FILE",
		Short: "Show the commit that last changed each line of FILE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := newRunner()
			if err != nil {
				return err
			}
			req.File = args[0]
			if req.Line == 0 && (req.Changes || req.Details || req.Explain) {
				return fmt.Errorf("--changes, --details and --explain require --line")
			}
			return runner.Annotate(cmd.Context(), req)
		},
	}

	cmd.Flags().StringVarP(&req.Revision, "rev", "r", "", "Annotate FILE at this revision instead of the working tree")
	cmd.Flags().IntVarP(&req.Line, "line", "l", 0, "Describe a single 1-based line")
	cmd.Flags().BoolVar(&req.Authors, "authors", false, "Print a per-author summary after the annotation")
	cmd.Flags().BoolVar(&req.Changes, "changes", false, "List the files changed by the line's commit")
	cmd.Flags().BoolVar(&req.Details, "details", false, "Show which characters of the line the commit changed")
	cmd.Flags().BoolVar(&req.Explain, "explain", false, "Ask the configured LLM why the line changed")

	return cmd
}

func runCmd() *cobra.Command {
	var (
		opts      playback.RunConfigurationOptions
		arguments string
	)

	cmd := &cobra.Command{
		Use:   "run [NAME]",
		Short: "Launch a run configuration and wait for it to start or terminate",
		Example: `  workbench run "unit tests"
  workbench run --mode TILL_STARTED --debug server
  workbench run --args "-mode=TILL_TERMINATED|-configurationName=lint|-failureExpected"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if arguments != "" {
				parsed, err := playback.ParseRunConfigurationOptions(arguments)
				if err != nil {
					return err
				}
				opts = parsed
			}
			if len(args) == 1 {
				opts.ConfigurationName = args[0]
			}
			if opts.ConfigurationName == "" {
				return fmt.Errorf("a run configuration name is required")
			}

			runner, err := newRunner()
			if err != nil {
				return err
			}
			return runner.RunConfiguration(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Mode, "mode", "m", playback.ModeTillTerminated, "Wait mode: TILL_STARTED or TILL_TERMINATED")
	cmd.Flags().BoolVar(&opts.FailureExpected, "failure-expected", false, "Succeed only on a non-zero exit code")
	cmd.Flags().BoolVar(&opts.Debug, "debug", false, "Launch with the debug executor")
	cmd.Flags().StringVar(&arguments, "args", "", "Pipe-delimited key=value options, as in playback scripts")

	return cmd
}

func playbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "playback SCRIPT",
		Short: "Run the commands of a playback script; - reads stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var script io.Reader = os.Stdin
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("opening script: %w", err)
				}
				defer f.Close()
				script = f
			}

			runner, err := newRunner()
			if err != nil {
				return err
			}
			return runner.Playback(cmd.Context(), script)
		},
	}
}

func configsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configs",
		Short: "List the available run configurations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := newRunner()
			if err != nil {
				return err
			}
			return runner.ListConfigurations()
		},
	}
}
