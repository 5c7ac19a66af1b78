package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/charity-prospector/internal/model"
	"github.com/sells-group/charity-prospector/internal/pipeline"
	"github.com/sells-group/charity-prospector/internal/report"
)

var searchFlags struct {
	minRevenue     float64
	maxRevenue     float64
	minFundraising float64
	minAgencySpend float64
	targetCount    int
	maxPages       int
	state          string
	keyword        string
	output         string
	skipContacts   bool
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run a prospecting search and build the contact list",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		params := searchParams(cmd)
		pipe := initPipeline(st, pipeline.LogObserver{})

		run, err := st.CreateRun(ctx, params)
		if err != nil {
			return err
		}
		zap.L().Info("run created", zap.String("run_id", run.ID))

		if err := st.UpdateRunStatus(ctx, run.ID, model.RunStatusSearching); err != nil {
			return err
		}

		result, err := pipe.Run(ctx, params)
		if err != nil {
			_ = st.UpdateRunStatus(ctx, run.ID, model.RunStatusFailed)
			return eris.Wrap(err, "search run")
		}

		if !searchFlags.skipContacts && len(result.Qualified) > 0 {
			if err := st.UpdateRunStatus(ctx, run.ID, model.RunStatusContacts); err != nil {
				return err
			}
			contacts, err := pipe.Contacts(ctx, result.Qualified)
			if err != nil {
				_ = st.UpdateRunStatus(ctx, run.ID, model.RunStatusFailed)
				return eris.Wrap(err, "contacts pass")
			}
			result.Contacts = contacts
		}

		if err := st.UpdateRunResult(ctx, run.ID, result); err != nil {
			return err
		}

		printRunSummary(os.Stdout, run.ID, result)

		if searchFlags.output != "" {
			wb := report.NewWorkbook(result.Qualified, result.Contacts, params)
			if err := wb.Save(searchFlags.output); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Report written to %s\n", searchFlags.output)
		}

		return nil
	},
}

// searchParams starts from the configured defaults and applies any flags the
// user set explicitly.
func searchParams(cmd *cobra.Command) model.SearchParams {
	params := cfg.Search.Params()

	if cmd.Flags().Changed("min-revenue") {
		params.MinRevenue = searchFlags.minRevenue
	}
	if cmd.Flags().Changed("max-revenue") {
		params.MaxRevenue = searchFlags.maxRevenue
	}
	if cmd.Flags().Changed("min-fundraising") {
		params.MinFundraisingExpense = searchFlags.minFundraising
	}
	if cmd.Flags().Changed("min-agency-spend") {
		params.MinAgencySpend = searchFlags.minAgencySpend
	}
	if cmd.Flags().Changed("target") {
		params.TargetCount = searchFlags.targetCount
	}
	if cmd.Flags().Changed("max-pages") {
		params.MaxPages = searchFlags.maxPages
	}
	if cmd.Flags().Changed("state") {
		params.State = searchFlags.state
	}
	if cmd.Flags().Changed("keyword") {
		params.Keyword = searchFlags.keyword
	}
	return params
}

func printRunSummary(w *os.File, runID string, result *model.RunResult) {
	fmt.Fprintf(w, "\nRun %s\n", runID)
	fmt.Fprintf(w, "  Checked:         %d\n", result.Checked)
	fmt.Fprintf(w, "  Revenue matched: %d\n", result.RevenueMatched)
	fmt.Fprintf(w, "  Qualified:       %d\n", len(result.Qualified))
	if result.Degraded {
		fmt.Fprintln(w, "  NOTE: search ended early after repeated API errors; results are partial.")
	}
	for i, rec := range result.Qualified {
		fmt.Fprintf(w, "  %2d. %s (EIN %s) — revenue $%.0f, fundraising $%.0f, %d agencies, %d contacts\n",
			i+1, rec.Name, rec.EIN, rec.Filing.Revenue, rec.FundraisingExpenses,
			len(rec.Agencies), len(result.Contacts[rec.EIN]))
	}
}

func init() {
	searchCmd.Flags().Float64Var(&searchFlags.minRevenue, "min-revenue", 0, "minimum total revenue (default from config)")
	searchCmd.Flags().Float64Var(&searchFlags.maxRevenue, "max-revenue", 0, "maximum total revenue (default from config)")
	searchCmd.Flags().Float64Var(&searchFlags.minFundraising, "min-fundraising", 0, "minimum fundraising expense (default from config)")
	searchCmd.Flags().Float64Var(&searchFlags.minAgencySpend, "min-agency-spend", 0, "minimum Schedule G agency spend (default from config)")
	searchCmd.Flags().IntVar(&searchFlags.targetCount, "target", 0, "number of qualified charities to find (default from config)")
	searchCmd.Flags().IntVar(&searchFlags.maxPages, "max-pages", 0, "total search page budget (default from config)")
	searchCmd.Flags().StringVar(&searchFlags.state, "state", "", "2-letter state filter")
	searchCmd.Flags().StringVar(&searchFlags.keyword, "keyword", "", "single search keyword (overrides the broad keyword rotation)")
	searchCmd.Flags().StringVarP(&searchFlags.output, "output", "o", "", "write the Excel report to this path")
	searchCmd.Flags().BoolVar(&searchFlags.skipContacts, "skip-contacts", false, "skip the contact extraction pass")
	rootCmd.AddCommand(searchCmd)
}
