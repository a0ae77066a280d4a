package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"taskportal/internal/apiclient"
	"taskportal/pkg/rbac"
)

func activityCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show the audit trail recorded by the activity worker (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := a.login(ctx, rbac.RoleAdmin); err != nil {
				return err
			}

			client := apiclient.New(a.apiURL, a.cfg.API.Timeout, a.log)
			entries, err := client.ListActivity(ctx, limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No activity recorded.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tEVENT\tSUMMARY")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.OccurredAt.Local().Format("2006-01-02 15:04:05"), e.RoutingKey, e.Summary)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries")
	return cmd
}
