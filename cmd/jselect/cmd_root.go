package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/calumari/jselect"
)

type rootOptions struct {
	pattern string
	output  string
	indent  string
	plain   bool
	verbose bool
	jobs    int
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:   "jselect [file...]",
		Short: "Print the parts of JSON documents selected by a pattern",
		Long: `Print the parts of JSON documents selected by a pattern.

Patterns name one level per segment: "user.details.age", "name|city",
"users[name]", "*.id". Without a pattern documents are printed unchanged.
Reads standard input when no file is given.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.pattern, "pattern", "p", "", "selection pattern (empty selects everything)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", formatJSON, "output format: json or yaml")
	cmd.Flags().StringVar(&opts.indent, "indent", "", "indentation for JSON output (compact when empty)")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "decode objects as maps (key order is not preserved)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", runtime.GOMAXPROCS(0), "number of files processed concurrently")

	return cmd
}

func runRoot(cmd *cobra.Command, opts rootOptions, args []string) error {
	write, err := newWriter(opts.output, opts.indent)
	if err != nil {
		return err
	}
	if opts.jobs < 1 {
		return fmt.Errorf("jobs must be at least 1 (got %d)", opts.jobs)
	}

	logger, err := newLogger(cmd.ErrOrStderr(), opts.verbose)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	selOpts := []jselect.Option{
		jselect.WithPattern(opts.pattern),
		jselect.WithLogger(logger),
	}
	if opts.plain {
		selOpts = append(selOpts, jselect.WithPlainValues())
	}
	s, err := jselect.NewSelector(selOpts...)
	if err != nil {
		return fmt.Errorf("compile pattern: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(args) == 0 {
		v, err := s.SelectReader(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		return write(out, v)
	}

	results, err := selectFiles(s, logger, args, opts.jobs)
	if err != nil {
		return err
	}
	for i, v := range results {
		if err := write(out, v); err != nil {
			return fmt.Errorf("write %s: %w", args[i], err)
		}
	}
	return nil
}

// selectFiles runs the selector over every file with at most jobs files in
// flight. Results are returned in argument order.
func selectFiles(s *jselect.Selector, logger *zap.Logger, files []string, jobs int) ([]any, error) {
	results := make([]any, len(files))

	var g errgroup.Group
	g.SetLimit(jobs)
	for i, name := range files {
		g.Go(func() error {
			v, err := selectFile(s, name)
			if err != nil {
				return err
			}
			logger.Debug("file processed", zap.String("file", name))
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func selectFile(s *jselect.Selector, name string) (any, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	v, err := s.SelectReader(f)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", name, err)
	}
	return v, nil
}
