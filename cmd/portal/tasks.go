package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"taskportal/internal/model"
	"taskportal/internal/portal"
	"taskportal/internal/workflow"
	"taskportal/pkg/rbac"
)

func tasksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List and change tasks",
	}
	cmd.AddCommand(tasksListCmd(a))
	cmd.AddCommand(tasksMineCmd(a))
	cmd.AddCommand(tasksAddCmd(a))
	cmd.AddCommand(tasksUpdateCmd(a))
	cmd.AddCommand(tasksDeleteCmd(a))
	cmd.AddCommand(tasksAdvanceCmd(a))
	return cmd
}

func assigneeName(p *portal.Portal, t model.Task) string {
	if t.AssignedTo == nil {
		return "-"
	}
	if e, ok := p.Employees.Get(*t.AssignedTo); ok {
		return e.Name
	}
	return fmt.Sprintf("#%d", *t.AssignedTo)
}

func statusList(statuses []model.Status) string {
	if len(statuses) == 0 {
		return "-"
	}
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ",")
}

func tasksListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every task (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.login(ctx, rbac.RoleAdmin)
			if err != nil {
				return err
			}
			if err := p.LoadAdminDashboard(ctx); err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tASSIGNEE\tCREATED")
			for _, t := range p.Tasks.Tasks() {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
					t.ID, t.Title, t.Status, assigneeName(p, t), t.CreatedAt.Local().Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
}

func tasksMineCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List the tasks assigned to you (employee)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.login(ctx, rbac.RoleEmployee)
			if err != nil {
				return err
			}
			if err := p.LoadEmployeeDashboard(ctx); err != nil {
				return err
			}

			mine := p.MyTasks()
			if len(mine) == 0 {
				fmt.Println("No tasks assigned to you.")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tNEXT\tDESCRIPTION")
			for _, t := range mine {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
					t.ID, t.Title, t.Status, statusList(p.NextStatuses(t.ID)), t.Description)
			}
			return w.Flush()
		},
	}
}

type taskFlagValues struct {
	in       model.TaskInput
	assign   int
	unassign bool
	status   string
}

func taskFlags(cmd *cobra.Command, v *taskFlagValues) {
	cmd.Flags().StringVar(&v.in.Title, "title", "", "Task title")
	cmd.Flags().StringVar(&v.in.Description, "description", "", "Task description")
	cmd.Flags().IntVar(&v.assign, "assign", 0, "Employee id to assign")
	cmd.Flags().StringVar(&v.status, "status", string(model.StatusPending), "Status (pending, in-progress, completed)")
}

func tasksAddCmd(a *app) *cobra.Command {
	v := &taskFlagValues{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.login(ctx, rbac.RoleAdmin)
			if err != nil {
				return err
			}
			in := v.in
			in.Status = model.Status(v.status)
			if v.assign > 0 {
				in.AssignedTo = &v.assign
			}
			t, err := p.SaveTask(ctx, 0, in)
			if err != nil {
				return err
			}
			fmt.Printf("Added task %d (%s)\n", t.ID, t.Status)
			return nil
		},
	}
	taskFlags(cmd, v)
	return cmd
}

func tasksUpdateCmd(a *app) *cobra.Command {
	v := &taskFlagValues{}
	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Replace a task, any status allowed (admin); unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			p, err := a.login(ctx, rbac.RoleAdmin)
			if err != nil {
				return err
			}
			if err := p.LoadAdminDashboard(ctx); err != nil {
				return err
			}
			current, ok := p.Tasks.Get(id)
			if !ok {
				return fmt.Errorf("task %d not found", id)
			}

			in := current.Input()
			flags := cmd.Flags()
			if flags.Changed("title") {
				in.Title = v.in.Title
			}
			if flags.Changed("description") {
				in.Description = v.in.Description
			}
			if flags.Changed("status") {
				in.Status = model.Status(v.status)
			}
			if flags.Changed("assign") {
				in.AssignedTo = &v.assign
			}
			if v.unassign {
				in.AssignedTo = nil
			}

			t, err := p.SaveTask(ctx, id, in)
			if err != nil {
				return err
			}
			fmt.Printf("Updated task %d (%s)\n", t.ID, t.Status)
			return nil
		},
	}
	taskFlags(cmd, v)
	cmd.Flags().BoolVar(&v.unassign, "unassign", false, "Clear the assignee")
	return cmd
}

func tasksDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a task (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			p, err := a.login(ctx, rbac.RoleAdmin)
			if err != nil {
				return err
			}
			if err := p.RemoveTask(ctx, id); err != nil {
				return err
			}
			fmt.Printf("Deleted task %d\n", id)
			return nil
		},
	}
}

func tasksAdvanceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "advance [id] [status]",
		Short: "Move one of your tasks to its next status (employee)",
		Long: `Move a task assigned to you along pending -> in-progress -> completed.
Without a status the task moves to its only allowed next status.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			p, err := a.login(ctx, rbac.RoleEmployee)
			if err != nil {
				return err
			}
			if err := p.LoadEmployeeDashboard(ctx); err != nil {
				return err
			}

			var next model.Status
			if len(args) == 2 {
				next = model.Status(args[1])
			} else {
				task, ok := p.Tasks.Get(id)
				if !ok {
					return fmt.Errorf("task %d: %w", id, portal.ErrTaskNotFound)
				}
				allowed := workflow.AllowedNext(task.Status)
				if len(allowed) == 0 {
					return fmt.Errorf("task %d is already %s", id, task.Status)
				}
				next = allowed[0]
			}

			t, err := p.AdvanceTask(ctx, id, next)
			if err != nil {
				return err
			}
			fmt.Printf("Task %d is now %s\n", t.ID, t.Status)
			return nil
		},
	}
}
