package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/taskflow/core/internal/application/services"
	"github.com/taskflow/core/internal/application/validation"
	"github.com/taskflow/core/internal/domain/entities"
	"github.com/taskflow/core/internal/ports"
)

// shell is what every task/contact/discount command runs against
type shell struct {
	runtime   *Runtime
	tasks     *services.TaskService
	contacts  *services.ContactService
	discounts *services.DiscountService
	validator *validation.Validator
}

func withShell(ctx context.Context, opts *Options, fn func(*shell) error) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	log, err := cliLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	rt, err := Bootstrap(ctx, cfg, log, nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	sh := &shell{runtime: rt, validator: validation.New()}
	sh.tasks, sh.contacts, sh.discounts = rt.Services(nil)
	return fn(sh)
}

// parseID coerces a command-line id. Text that is not an integer names no
// record.
func parseID(raw string, notFound error) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%q: %w", raw, notFound)
	}
	return id, nil
}

// confirm asks a yes/no question on the command's streams
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", question)
	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

var noticeStyles = map[ports.NoticeLevel]lipgloss.Style{
	ports.NoticeSuccess: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#22C55E")),
	ports.NoticeInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6")),
	ports.NoticeError:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444")),
}

func printNotice(w io.Writer, n ports.Notice) {
	line := fmt.Sprintf("[%s] %s", n.Level, n.Message)
	if style, ok := noticeStyles[n.Level]; ok {
		line = style.Render(line)
	}
	fmt.Fprintln(w, line)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// NewTaskCommand creates the task shell commands
func NewTaskCommand(opts *Options) *cobra.Command {
	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "List and manage tasks",
	}

	var filter ports.TaskListFilter
	var view string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, highest priority first",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter.View = ports.TaskView(view)
			return withShell(cmd.Context(), opts, func(sh *shell) error {
				tasks, err := sh.tasks.ListTasks(cmd.Context(), filter)
				if err != nil {
					return err
				}

				now := sh.tasks.Now()
				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintln(tw, "ID\tTITLE\tDUE\tPRIORITY\tSTATUS\tTAGS")
				for _, t := range tasks {
					due := t.DueDate.String()
					if t.IsOverdue(now) {
						due += " (overdue)"
					}
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.Title, due, t.Priority, t.Status, strings.Join(t.Tags, ","))
				}
				return tw.Flush()
			})
		},
	}
	listCmd.Flags().StringVar(&view, "view", string(ports.TaskViewAll), "all, active or completed")
	listCmd.Flags().StringVarP(&filter.Search, "search", "s", "", "search title and description")

	var req ports.CreateTaskRequest
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withShell(cmd.Context(), opts, func(sh *shell) error {
				if err := sh.validator.Validate(&req); err != nil {
					return err
				}
				task, err := sh.tasks.CreateTask(cmd.Context(), req)
				if err != nil {
					return err
				}
				printNotice(cmd.OutOrStdout(), ports.NewNotice(ports.NoticeSuccess, "Task created successfully!"))
				fmt.Fprintf(cmd.OutOrStdout(), "Id: %d\n", task.ID)
				return nil
			})
		},
	}
	addCmd.Flags().StringVar(&req.Title, "title", "", "task title (required)")
	addCmd.Flags().StringVar(&req.Description, "description", "", "task description")
	addCmd.Flags().StringVar(&req.DueDate, "due", "", "due date, YYYY-MM-DD (required)")
	addCmd.Flags().StringVar(&req.Priority, "priority", "", "low, medium or high (default medium)")
	addCmd.Flags().StringSliceVar(&req.Tags, "tags", nil, "comma-separated tags")

	doneCmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task between active and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], entities.ErrTaskNotFound)
			if err != nil {
				return err
			}
			return withShell(cmd.Context(), opts, func(sh *shell) error {
				_, notice, err := sh.tasks.ToggleTask(cmd.Context(), id)
				if err != nil {
					return err
				}
				printNotice(cmd.OutOrStdout(), notice)
				return nil
			})
		},
	}

	var yes bool
	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], entities.ErrTaskNotFound)
			if err != nil {
				return err
			}
			return withShell(cmd.Context(), opts, func(sh *shell) error {
				task, err := sh.tasks.GetTask(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !yes && !confirm(cmd, fmt.Sprintf("Delete task %d %q?", task.ID, task.Title)) {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
					return nil
				}
				if _, err := sh.tasks.DeleteTask(cmd.Context(), id); err != nil {
					return err
				}
				printNotice(cmd.OutOrStdout(), ports.NewNotice(ports.NoticeSuccess, "Task deleted successfully"))
				return nil
			})
		},
	}
	deleteCmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")

	taskCmd.AddCommand(listCmd, addCmd, doneCmd, deleteCmd)
	return taskCmd
}

func printContacts(w io.Writer, contacts []entities.Contact) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPHONE\tROLE\tDEPARTMENT")
	for _, c := range contacts {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Email, c.Phone, c.Role, c.Department)
	}
	return tw.Flush()
}

// NewContactCommand creates the contact shell commands
func NewContactCommand(opts *Options) *cobra.Command {
	contactCmd := &cobra.Command{
		Use:   "contact",
		Short: "Browse and manage the team directory",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List every contact",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withShell(cmd.Context(), opts, func(sh *shell) error {
				contacts, err := sh.contacts.ListContacts(cmd.Context(), "")
				if err != nil {
					return err
				}
				return printContacts(cmd.OutOrStdout(), contacts)
			})
		},
	}

	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search name, email, role and department",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return withShell(cmd.Context(), opts, func(sh *shell) error {
				contacts, err := sh.contacts.ListContacts(cmd.Context(), query)
				if err != nil {
					return err
				}
				printNotice(cmd.OutOrStdout(), ports.ContactSearchNotice(len(contacts)))
				return printContacts(cmd.OutOrStdout(), contacts)
			})
		},
	}

	var req ports.CreateContactRequest
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a contact",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withShell(cmd.Context(), opts, func(sh *shell) error {
				if err := sh.validator.Validate(&req); err != nil {
					return err
				}
				contact, err := sh.contacts.CreateContact(cmd.Context(), req)
				if err != nil {
					return err
				}
				printNotice(cmd.OutOrStdout(), ports.NewNotice(ports.NoticeSuccess, "Contact created successfully!"))
				fmt.Fprintf(cmd.OutOrStdout(), "Id: %d\n", contact.ID)
				return nil
			})
		},
	}
	addCmd.Flags().StringVar(&req.Name, "name", "", "full name (required)")
	addCmd.Flags().StringVar(&req.Email, "email", "", "email address (required)")
	addCmd.Flags().StringVar(&req.Phone, "phone", "", "phone number (required)")
	addCmd.Flags().StringVar(&req.Role, "role", "", "job title (required)")
	addCmd.Flags().StringVar(&req.Department, "department", "", "one of "+strings.Join(entities.Departments, ", "))

	var yes bool
	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], entities.ErrContactNotFound)
			if err != nil {
				return err
			}
			return withShell(cmd.Context(), opts, func(sh *shell) error {
				contact, err := sh.contacts.GetContact(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !yes && !confirm(cmd, fmt.Sprintf("Delete contact %d %q?", contact.ID, contact.Name)) {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
					return nil
				}
				if _, err := sh.contacts.DeleteContact(cmd.Context(), id); err != nil {
					return err
				}
				printNotice(cmd.OutOrStdout(), ports.NewNotice(ports.NoticeSuccess, "Contact deleted successfully"))
				return nil
			})
		},
	}
	deleteCmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")

	contactCmd.AddCommand(listCmd, searchCmd, addCmd, deleteCmd)
	return contactCmd
}

// NewDiscountCommand creates the discount shell commands
func NewDiscountCommand(opts *Options) *cobra.Command {
	discountCmd := &cobra.Command{
		Use:   "discount",
		Short: "Browse partner discounts",
	}

	var filter string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List discounts, soonest-expiring first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withShell(cmd.Context(), opts, func(sh *shell) error {
				discounts, err := sh.discounts.ListDiscounts(cmd.Context(), filter)
				if err != nil {
					return err
				}
				summary, err := sh.discounts.Summary(cmd.Context())
				if err != nil {
					return err
				}

				tabs := make([]string, 0, len(summary.Categories))
				for _, c := range summary.Categories {
					tabs = append(tabs, fmt.Sprintf("%s (%d)", c.Name, c.Count))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d active deals. Categories: %s\n", summary.Active, strings.Join(tabs, ", "))

				now := sh.discounts.Now()
				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintln(tw, "ID\tTITLE\tDISCOUNT\tCODE\tEXPIRES\tCATEGORY")
				for _, d := range discounts {
					expires := d.ExpiryDate.String()
					if d.IsExpired(now) {
						expires += " (expired)"
					}
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", d.ID, d.Title, d.Discount, d.Code, expires, d.Category)
				}
				return tw.Flush()
			})
		},
	}
	listCmd.Flags().StringVarP(&filter, "filter", "f", ports.DiscountFilterAll, "all, active or a category name")

	discountCmd.AddCommand(listCmd)
	return discountCmd
}
