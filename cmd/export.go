package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/charity-prospector/internal/report"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Export a stored run as an Excel workbook",
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
		if run.Result == nil {
			return eris.Errorf("run %s has no result yet", run.ID)
		}

		wb := report.NewWorkbook(run.Result.Qualified, run.Result.Contacts, run.Params)
		path := exportOutput
		if path == "" {
			path = wb.Filename()
		}
		if err := wb.Save(path); err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "Report written to %s\n", path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output path (default charity_prospector_<timestamp>.xlsx)")
	rootCmd.AddCommand(exportCmd)
}
