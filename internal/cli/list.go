package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bharathvbcr/liquitask/internal/model"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		project string
		status  string
	)

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List tasks",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			app, err := openApp(rootOpts, cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer app.Close()

			var listed []model.Task
			for _, t := range app.Store.Tasks() {
				if project != "" && t.ProjectID != project {
					continue
				}
				if status != "" && t.Status != status {
					continue
				}
				listed = append(listed, t)
			}

			if formatter.Format == "json" {
				return formatter.Success(listed)
			}

			if len(listed) == 0 {
				fmt.Fprintln(formatter.Writer, "no tasks")
				return nil
			}
			w := tabwriter.NewWriter(formatter.Writer, 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "JOB\tTITLE\tSTATUS\tPRIORITY\tDUE")
			for _, t := range listed {
				due := ""
				if t.DueDate != nil {
					due = t.DueDate.Format("2006-01-02")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.JobID, t.Title, t.Status, t.Priority, due)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "filter by project id")
	cmd.Flags().StringVar(&status, "status", "", "filter by column")

	return cmd
}
