package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/charity-prospector/internal/model"
	"github.com/sells-group/charity-prospector/internal/pipeline"
)

var contactsCmd = &cobra.Command{
	Use:   "contacts <run-id>",
	Short: "Run or re-run the contact extraction pass for a stored run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return err
		}
		if run.Result == nil || len(run.Result.Qualified) == 0 {
			return eris.Errorf("run %s has no qualified charities", run.ID)
		}

		pipe := initPipeline(st, pipeline.LogObserver{})

		if err := st.UpdateRunStatus(ctx, run.ID, model.RunStatusContacts); err != nil {
			return err
		}
		contacts, err := pipe.Contacts(ctx, run.Result.Qualified)
		if err != nil {
			_ = st.UpdateRunStatus(ctx, run.ID, model.RunStatusFailed)
			return eris.Wrap(err, "contacts pass")
		}
		run.Result.Contacts = contacts

		if err := st.UpdateRunResult(ctx, run.ID, run.Result); err != nil {
			return err
		}

		for _, rec := range run.Result.Qualified {
			fmt.Fprintf(os.Stdout, "%s (EIN %s)\n", rec.Name, rec.EIN)
			for _, c := range contacts[rec.EIN] {
				fmt.Fprintf(os.Stdout, "  [%2d] %-30s %-40s %s\n", c.RelevanceScore, c.Name, c.Title, c.Source)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(contactsCmd)
}
