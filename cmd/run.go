package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/puter-gallery/internal/catalog"
	"github.com/ziadkadry99/puter-gallery/internal/history"
	"github.com/ziadkadry99/puter-gallery/internal/platform"
	"github.com/ziadkadry99/puter-gallery/internal/progress"
	"github.com/ziadkadry99/puter-gallery/internal/runner"
)

var (
	runAll     bool
	runHistory bool
	runLimit   int
)

var runCmd = &cobra.Command{
	Use:   "run [category] [title]",
	Short: "Run gallery examples from the command line",
	Long: `Runs one example, or every example with --all, and prints its output.
All runs of one invocation share a session; set GALLERY_SESSION to resume an
existing one. With --history, prints recent runs instead.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if runAll || runHistory {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		if runHistory {
			return printHistory(cmd.Context(), a)
		}

		sess := platform.NewSession(sessionToken())
		ctx := platform.WithSession(cmd.Context(), sess)

		if runAll {
			err = runEverything(ctx, a)
		} else {
			err = runOne(ctx, a, args[0], args[1])
		}
		if sess.Issued() {
			fmt.Fprintf(os.Stderr, "Signed in. Resume this session with GALLERY_SESSION=%s\n", sess.Token())
		}
		return err
	},
}

func runOne(ctx context.Context, a *app, category, title string) error {
	ex, _, ok := a.catalog.Find(category, title)
	if !ok {
		return fmt.Errorf("no example %q in category %q (see `gallery list`)", title, category)
	}
	out := catalog.NewOutput()
	outcome := a.runner.Run(ctx, category, ex, out)
	fmt.Println(out.String())
	if outcome == runner.OutcomeDenied {
		return fmt.Errorf("not authenticated")
	}
	return nil
}

type result struct {
	category, title string
	outcome         runner.Outcome
	output          string
}

func runEverything(ctx context.Context, a *app) error {
	var total int
	for _, c := range a.catalog.Categories() {
		total += len(c.Examples)
	}

	reporter := progress.NewReporter(os.Stderr)
	reporter.Start(total)
	var results []result
	for _, c := range a.catalog.Categories() {
		for _, ex := range c.Examples {
			out := catalog.NewOutput()
			outcome := a.runner.Run(ctx, c.Name, ex, out)
			results = append(results, result{c.Name, ex.Title, outcome, out.String()})
			reporter.Update(len(results), c.Name+" / "+ex.Title)
		}
	}
	reporter.Finish()

	denied := 0
	for _, r := range results {
		fmt.Printf("== %s / %s [%s]\n%s\n\n", r.category, r.title, r.outcome, r.output)
		if r.outcome == runner.OutcomeDenied {
			denied++
		}
	}
	if denied > 0 {
		return fmt.Errorf("%d of %d examples were denied", denied, len(results))
	}
	return nil
}

func printHistory(ctx context.Context, a *app) error {
	entries, err := a.history.List(ctx, history.Filter{Limit: runLimit})
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tCATEGORY\tEXAMPLE\tOUTCOME\tDURATION")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%dms\n",
			e.StartedAt.Local().Format("2006-01-02 15:04:05"), e.Category, e.Example, e.Outcome, e.DurationMS)
	}
	return tw.Flush()
}

func init() {
	runCmd.Flags().BoolVar(&runAll, "all", false, "run every example in catalog order")
	runCmd.Flags().BoolVar(&runHistory, "history", false, "print recent runs instead of running")
	runCmd.Flags().IntVar(&runLimit, "limit", history.DefaultLimit, "number of runs shown with --history")
	rootCmd.AddCommand(runCmd)
}
