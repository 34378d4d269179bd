/*
main.go - Payroll demo CLI

PURPOSE:
  Runs the payroll engine end to end against an in-memory store, without
  the HTTP server. Loads the demo staff (or a YAML seed) and prints
  results as console tables.

COMMANDS:
  walkthrough        Configure, register, pay, report and extend, step by step
  employees          List employees and their monthly salary
  summary            Total / average / min / max
  run                Pay everyone (--channel email|sms|both, default both)
  report             Print a report (--format JSON|PDF|EXCEL)

GLOBAL FLAGS:
  --seed       YAML seed file (default: Juan, María and Carlos)
  --log-level  debug | info | warn | error (default: disabled)

EXAMPLES:
  payroll-demo walkthrough
  payroll-demo run --channel email
  payroll-demo report --format EXCEL > employees.csv
  payroll-demo --seed team.yaml summary
*/
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/warp/payroll-engine/api"
	"github.com/warp/payroll-engine/core"
	"github.com/warp/payroll-engine/core/store"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/logging"
	"github.com/warp/payroll-engine/notify"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/salary"
)

func main() {
	if err := newRootCmd(nil).Execute(); err != nil {
		os.Exit(1)
	}
}

type demo struct {
	seedPath string
	logLevel string
	channel  string
	format   string
	clock    payroll.Clock
}

// newRootCmd builds the CLI. A nil clock uses the wall clock.
func newRootCmd(clock payroll.Clock) *cobra.Command {
	d := &demo{clock: clock}

	root := &cobra.Command{
		Use:          "payroll-demo",
		Short:        "Run the payroll engine against demo employees",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&d.seedPath, "seed", "", "YAML seed file with an employees list")
	root.PersistentFlags().StringVar(&d.logLevel, "log-level", "disabled", "Log level")

	root.AddCommand(
		&cobra.Command{
			Use:     "employees",
			Short:   "List employees and their monthly salary",
			Aliases: []string{"ls"},
			Args:    cobra.NoArgs,
			RunE:    d.listEmployees,
		},
		&cobra.Command{
			Use:   "summary",
			Short: "Show salary aggregates",
			Args:  cobra.NoArgs,
			RunE:  d.summary,
		},
	)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Pay every employee and notify them",
		Args:  cobra.NoArgs,
		RunE:  d.run,
	}
	runCmd.Flags().StringVar(&d.channel, "channel", notify.KindBoth, "Notification channel: email, sms or both")
	root.AddCommand(runCmd)

	walkCmd := &cobra.Command{
		Use:   "walkthrough",
		Short: "Walk through every feature of the engine, step by step",
		Args:  cobra.NoArgs,
		RunE:  d.walkthrough,
	}
	walkCmd.Flags().StringVar(&d.channel, "channel", notify.KindBoth, "Notification channel: email, sms or both")
	root.AddCommand(walkCmd)

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Print an employee report",
		Args:  cobra.NoArgs,
		RunE:  d.report,
	}
	reportCmd.Flags().StringVar(&d.format, "format", "JSON", "Report format: JSON, PDF or EXCEL")
	root.AddCommand(reportCmd)

	return root
}

// system builds a seeded in-memory payroll system. Notifications go to tr,
// or to the log when tr is nil.
func (d *demo) system(cmd *cobra.Command, tr notify.Transport) (*payroll.System, error) {
	logger := logging.New(d.logLevel, logging.FormatConsole, cmd.ErrOrStderr())
	if tr == nil {
		tr = notify.NewLogTransport(logger)
	}

	channel, err := notify.Build(d.channelOrDefault(), notify.Settings{}, tr)
	if err != nil {
		return nil, err
	}

	sys := payroll.NewSystem(store.NewMemory(), channel, payroll.Options{
		Clock:  d.clock,
		Logger: &logger,
	})

	employees, err := d.seed()
	if err != nil {
		return nil, err
	}
	for _, e := range employees {
		if _, err := sys.RegisterEmployee(cmd.Context(), e); err != nil {
			return nil, err
		}
	}
	return sys, nil
}

func (d *demo) channelOrDefault() string {
	if d.channel == "" {
		return notify.KindBoth
	}
	return d.channel
}

func (d *demo) seed() ([]*core.Employee, error) {
	if d.seedPath == "" {
		return api.DemoEmployees()
	}
	data, err := os.ReadFile(d.seedPath)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	return factory.NewEmployeeFactory().ParseSeedYAML(data)
}

func (d *demo) listEmployees(cmd *cobra.Command, _ []string) error {
	sys, err := d.system(cmd, nil)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	employees, err := sys.ListEmployees(ctx)
	if err != nil {
		return err
	}

	table := newTable(cmd.OutOrStdout(), "ID", "Name", "Email", "Type", "Salary")
	for _, e := range employees {
		amount, err := sys.CalculateSalary(ctx, e.ID())
		if err != nil {
			return err
		}
		table.Append([]string{
			e.ID().String(), e.FullName(), e.Email(), e.Kind().Label(), amount.StringFixed(2),
		})
	}
	table.Render()
	return nil
}

func (d *demo) summary(cmd *cobra.Command, _ []string) error {
	sys, err := d.system(cmd, nil)
	if err != nil {
		return err
	}

	sum, err := sys.Summary(cmd.Context())
	if err != nil {
		return err
	}

	table := newTable(cmd.OutOrStdout(), "Employees", "Total", "Average", "Min", "Max")
	table.Append([]string{
		fmt.Sprint(sum.TotalEmployees),
		sum.Total.StringFixed(2),
		sum.Average.StringFixed(2),
		sum.Min.StringFixed(2),
		sum.Max.StringFixed(2),
	})
	table.Render()
	return nil
}

func (d *demo) run(cmd *cobra.Command, _ []string) error {
	sys, err := d.system(cmd, nil)
	if err != nil {
		return err
	}

	run, err := sys.RunPayroll(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	table := newTable(out, "ID", "Name", "Amount", "Transaction", "Notified")
	for _, p := range run.Payments {
		notified := "yes"
		if !p.NotificationSent {
			notified = "no: " + p.NotificationError
		}
		table.Append([]string{
			p.EmployeeID.String(), p.EmployeeName, p.Amount.StringFixed(2), p.TransactionID, notified,
		})
	}
	table.SetFooter([]string{"", "", run.Total().StringFixed(2), "", ""})
	table.Render()

	for _, e := range run.Errors {
		fmt.Fprintf(out, "employee %s: %s\n", e.EmployeeID, e.Message)
	}
	fmt.Fprintf(out, "run %s: %d paid, %d failed\n", run.RunID, len(run.Payments), len(run.Errors))
	return nil
}

func (d *demo) report(cmd *cobra.Command, _ []string) error {
	sys, err := d.system(cmd, nil)
	if err != nil {
		return err
	}

	rep, err := sys.GenerateReport(cmd.Context(), d.format)
	if err != nil {
		return err
	}
	_, err = io.WriteString(cmd.OutOrStdout(), rep.Content)
	return err
}

// walkthrough configures a system, registers the staff, prints their
// salaries and the EXCEL report, runs the payroll, prints the summary and
// finally registers a new employee type and report format at runtime.
func (d *demo) walkthrough(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "PAYROLL ENGINE WALKTHROUGH")

	step(out, 1, "Configure the system")
	deliveries := notify.TransportFunc(func(_ context.Context, channel, destination, _ string) error {
		fmt.Fprintf(out, "  %s -> %s\n", channel, destination)
		return nil
	})
	sys, err := d.system(cmd, deliveries)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "In-memory store, %q notifications\n", d.channelOrDefault())

	step(out, 2, "Register employees")
	employees, err := sys.ListEmployees(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d employees registered\n", len(employees))

	step(out, 3, "Calculate salaries")
	table := newTable(out, "ID", "Name", "Type", "Salary")
	for _, e := range employees {
		emp, amount, err := sys.EmployeeSalary(ctx, e.ID())
		if err != nil {
			return err
		}
		table.Append([]string{emp.ID().String(), emp.FullName(), emp.Kind().Label(), amount.StringFixed(2)})
	}
	table.Render()

	step(out, 4, "Generate the EXCEL report")
	rep, err := sys.GenerateReport(ctx, "EXCEL")
	if err != nil {
		return err
	}
	fmt.Fprint(out, rep.Content)

	step(out, 5, "Run the full payroll")
	run, err := sys.RunPayroll(ctx)
	if err != nil {
		return err
	}
	for _, e := range run.Errors {
		fmt.Fprintf(out, "employee %s: %s\n", e.EmployeeID, e.Message)
	}
	fmt.Fprintf(out, "%d payments processed\n", len(run.Payments))

	step(out, 6, "Payroll summary")
	sum, err := sys.Summary(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Total: %s\n", sum.Total.StringFixed(2))
	fmt.Fprintf(out, "Average: %s\n", sum.Average.StringFixed(2))

	step(out, 7, "Extend at runtime")
	if err := sys.RegisterEmployeeType("Freelancer", salary.Contractor); err != nil {
		return err
	}
	fmt.Fprintln(out, `Registered employee type "Freelancer"`)
	jsonReport, err := sys.ReportStrategy("JSON")
	if err != nil {
		return err
	}
	if err := sys.RegisterReportFormat("XML", jsonReport); err != nil {
		return err
	}
	fmt.Fprintln(out, `Registered report format "XML"`)
	fmt.Fprintf(out, "Employee types: %s\n", strings.Join(sys.SalaryTypes(), ", "))
	fmt.Fprintf(out, "Report formats: %s\n", strings.Join(sys.ReportFormats(), ", "))

	xmlReport, err := sys.GenerateReport(ctx, "XML")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, xmlReport.Content)

	fmt.Fprintln(out, "Walkthrough complete")
	return nil
}

func step(w io.Writer, n int, title string) {
	fmt.Fprintf(w, "\n=== %d. %s ===\n", n, title)
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	return table
}
