package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/juparave/workbench/internal/annotate"
	"github.com/juparave/workbench/internal/config"
	"github.com/juparave/workbench/internal/diff"
	"github.com/juparave/workbench/internal/domain"
	"github.com/juparave/workbench/internal/execution"
	"github.com/juparave/workbench/internal/explain"
	"github.com/juparave/workbench/internal/git"
	"github.com/juparave/workbench/internal/playback"
	"github.com/juparave/workbench/internal/render"
	"github.com/juparave/workbench/internal/runconfig"
	"github.com/juparave/workbench/internal/util"
	"golang.org/x/sync/errgroup"
)

// AnnotateRequest selects what to show for a file
type AnnotateRequest struct {
	File     string
	Revision string // Empty annotates the working tree
	Line     int    // 1-based; 0 prints the whole file
	Authors  bool
	Changes  bool
	Details  bool
	Explain  bool
}

// Runner wires configuration, git access, rendering and the run
// configuration driver behind the CLI commands
type Runner struct {
	config  *config.Config
	logger  *log.Logger
	git     *git.Client
	printer *render.Printer
	stdout  io.Writer
	stderr  io.Writer
}

// NewRunner creates a new Runner instance. Command output goes to stdout,
// logs and launched process stderr to stderr.
func NewRunner(cfg *config.Config, stdout, stderr io.Writer) *Runner {
	logger := log.New(stderr, "[workbench] ", log.LstdFlags)

	return &Runner{
		config: cfg,
		logger: logger,
		git:    git.NewClient(logger),
		printer: render.NewPrinter(stdout, render.Options{
			DateLayout:    cfg.Annotate.DateFormat,
			RelativeDates: cfg.Annotate.RelativeDates,
		}),
		stdout: stdout,
		stderr: stderr,
	}
}

// Annotate blames req.File and prints either the annotated file or the
// details of one line
func (r *Runner) Annotate(ctx context.Context, req AnnotateRequest) error {
	startTime := time.Now()

	if err := r.config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a, err := r.annotate(ctx, req.File, req.Revision)
	if err != nil {
		return err
	}
	r.log("Annotated %d lines in %s", a.LineCount(), time.Since(startTime).Round(time.Millisecond))

	if req.Line == 0 {
		content, err := a.AnnotatedContent(ctx)
		if err != nil {
			return fmt.Errorf("reading %s: %w", req.File, err)
		}
		if err := r.printer.Annotation(a, content); err != nil {
			return err
		}
		if req.Authors {
			return r.printer.Authors(a)
		}
		return nil
	}

	return r.describeLine(ctx, a, req)
}

func (r *Runner) annotate(ctx context.Context, file, revision string) (*annotate.FileAnnotation, error) {
	root, err := r.git.RootFor(file)
	if err != nil {
		return nil, err
	}
	path, err := util.RelativeTo(root, file)
	if err != nil {
		return nil, fmt.Errorf("%s is outside %s: %w", file, root, err)
	}
	r.log("Annotating %s in %s", path, root)

	var lines []annotate.LineInfo
	var history []domain.FileRevision

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lines, err = r.git.Blame(gctx, root, revision, path)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = r.git.History(gctx, root, path, r.config.Annotate.MaxHistory)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("annotating %s: %w", path, err)
	}

	a := annotate.New(lines, annotate.Options{
		File:             file,
		Path:             path,
		BaseRevision:     revision,
		PreferCommitDate: r.config.Annotate.PreferCommitDate,
		Providers: annotate.Providers{
			Content: r.git,
			Roots:   r.git,
			Changes: r.git,
		},
	})
	a.SetRevisions(history)

	if revision != "" {
		current, err := r.git.CurrentRevision(ctx, root, path)
		if err != nil {
			r.logger.Printf("Warning: failed to resolve current revision of %s: %v", path, err)
		} else if a.IsBaseRevisionChanged(current) {
			r.logger.Printf("%s changed since %s; newest revision is %s", path, revision, domain.ShortHash(current))
		}
	}

	return a, nil
}

func (r *Runner) describeLine(ctx context.Context, a *annotate.FileAnnotation, req AnnotateRequest) error {
	n := req.Line - 1

	tooltip, ok := a.ToolTip(n, false)
	if !ok {
		return fmt.Errorf("%w: %s has %d lines", annotate.ErrLineOutOfBounds, req.File, a.LineCount())
	}
	if err := r.printer.Text(tooltip); err != nil {
		return err
	}
	if prev, ok := a.PreviousRevisionFor(n); ok {
		if err := r.printer.Text(fmt.Sprintf("\nPrevious revision: %s %s", prev.ShortHash(), prev.Path)); err != nil {
			return err
		}
	}

	var changes *domain.ChangeList
	if req.Changes || req.Explain {
		cl, path, err := a.ChangesIn(ctx, n)
		switch {
		case err == nil:
			changes = cl
			if req.Changes {
				fmt.Fprintln(r.stdout)
				if err := r.printer.ChangeList(cl, path); err != nil {
					return err
				}
			}
		case req.Changes:
			return err
		default:
			r.log("Skipping change list: %v", err)
		}
	}

	var details *diff.Details
	if req.Details || req.Explain {
		var err error
		if details, err = a.ModificationDetails(ctx, n); err != nil {
			return err
		}
		if req.Details {
			fmt.Fprintln(r.stdout)
			if err := r.printer.Details(details); err != nil {
				return err
			}
		}
	}

	if req.Explain {
		return r.explain(ctx, a, n, req, details, changes)
	}
	return nil
}

func (r *Runner) explain(ctx context.Context, a *annotate.FileAnnotation, n int, req AnnotateRequest, details *diff.Details, changes *domain.ChangeList) error {
	rev, _ := a.CurrentRevisionFor(n)
	message, _ := a.CommitMessage(rev.Hash)

	r.log("Initializing LLM explainer...")
	explainer, err := explain.NewExplainer(ctx, r.config.Explain, r.logger)
	if err != nil {
		return fmt.Errorf("initializing explainer: %w", err)
	}

	answer, err := explainer.Explain(ctx, explain.Request{
		Path:     a.Path(),
		Line:     req.Line,
		Revision: *rev,
		Message:  message,
		Details:  details,
		Changes:  changes,
	})
	if errors.Is(err, explain.ErrNothingToExplain) {
		return r.printer.Text("\nLine is not committed yet.")
	}
	if err != nil {
		return err
	}
	return r.printer.Text("\n" + answer)
}

// RunConfiguration launches one run configuration and waits per opts.Mode
func (r *Runner) RunConfiguration(ctx context.Context, opts playback.RunConfigurationOptions) error {
	pctx, err := r.playbackContext()
	if err != nil {
		return err
	}
	cmd := playback.NewRunConfigurationCommandWithOptions(opts, 1)
	return cmd.Execute(ctx, pctx)
}

// Playback runs a script of commands, stopping at the first failure
func (r *Runner) Playback(ctx context.Context, script io.Reader) error {
	pctx, err := r.playbackContext()
	if err != nil {
		return err
	}
	return playback.NewPlayer(pctx).Play(ctx, script)
}

// ListConfigurations prints the known run configuration names
func (r *Runner) ListConfigurations() error {
	registry, err := r.registry()
	if err != nil {
		return err
	}
	for _, name := range registry.Names() {
		if _, err := fmt.Fprintln(r.stdout, name); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) playbackContext() (*playback.Context, error) {
	if err := r.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	registry, err := r.registry()
	if err != nil {
		return nil, err
	}
	r.log("Loaded %d run configurations", registry.Len())

	bus := execution.NewBus()
	return &playback.Context{
		Logger:   r.logger,
		Registry: registry,
		Launcher: execution.NewManager(bus, r.logger, r.stdout, r.stderr),
		Bus:      bus,
	}, nil
}

// registry resolves the configurations file against the enclosing
// repository, or the working directory outside of one
func (r *Runner) registry() (*runconfig.Registry, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	if root, err := r.git.RootFor(dir); err == nil {
		dir = root
	}
	return r.config.Registry(dir)
}

func (r *Runner) log(format string, args ...interface{}) {
	if r.config.Verbose {
		r.logger.Printf(format, args...)
	}
}
