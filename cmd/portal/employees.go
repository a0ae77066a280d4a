package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"taskportal/internal/model"
	"taskportal/pkg/rbac"
)

func employeesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "employees",
		Aliases: []string{"emp"},
		Short:   "Manage the employee roster (admin)",
	}
	cmd.AddCommand(employeesListCmd(a))
	cmd.AddCommand(employeesAddCmd(a))
	cmd.AddCommand(employeesUpdateCmd(a))
	cmd.AddCommand(employeesDeleteCmd(a))
	return cmd
}

func printEmployees(employees []model.Employee) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE")
	for _, e := range employees {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", e.ID, e.Name, e.Email, e.Role)
	}
	w.Flush()
}

func employeesListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List employees",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.login(ctx, rbac.RoleAdmin)
			if err != nil {
				return err
			}
			if err := p.LoadAdminDashboard(ctx); err != nil {
				return err
			}
			printEmployees(p.Employees.Employees())
			return nil
		},
	}
}

func employeeFlags(cmd *cobra.Command, in *model.EmployeeInput) {
	cmd.Flags().StringVar(&in.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&in.Email, "employee-email", "", "Employee email")
	cmd.Flags().StringVar(&in.Role, "employee-role", rbac.RoleEmployee, "Employee role (employee, admin)")
	cmd.Flags().StringVar(&in.Password, "employee-password", "", "Password the employee logs in with")
}

func employeesAddCmd(a *app) *cobra.Command {
	var in model.EmployeeInput
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an employee",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.login(ctx, rbac.RoleAdmin)
			if err != nil {
				return err
			}
			e, err := p.SaveEmployee(ctx, 0, in)
			if err != nil {
				return err
			}
			fmt.Printf("Added employee %d (%s)\n", e.ID, e.Email)
			return nil
		},
	}
	employeeFlags(cmd, &in)
	return cmd
}

func employeesUpdateCmd(a *app) *cobra.Command {
	var in model.EmployeeInput
	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Replace an employee; unset flags keep their current value",
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
			current, ok := p.Employees.Get(id)
			if !ok {
				return fmt.Errorf("employee %d not found", id)
			}

			flags := cmd.Flags()
			if !flags.Changed("name") {
				in.Name = current.Name
			}
			if !flags.Changed("employee-email") {
				in.Email = current.Email
			}
			if !flags.Changed("employee-role") {
				in.Role = current.Role
			}

			e, err := p.SaveEmployee(ctx, id, in)
			if err != nil {
				return err
			}
			fmt.Printf("Updated employee %d (%s, %s)\n", e.ID, e.Name, e.Role)
			return nil
		},
	}
	employeeFlags(cmd, &in)
	return cmd
}

func employeesDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete an employee and every task assigned to them",
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
			if err := p.RemoveEmployee(ctx, id); err != nil {
				return err
			}
			fmt.Printf("Deleted employee %d, %d task(s) remain\n", id, len(p.Tasks.Tasks()))
			return nil
		},
	}
}
