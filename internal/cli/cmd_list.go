package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tgienger/refurb/internal/models"
	"github.com/tgienger/refurb/internal/projection"
)

type listFilter struct {
	project string
	status  string
	query   string
}

func (f *listFilter) bind(cmd *cobra.Command, statuses string) {
	cmd.Flags().StringVar(&f.project, "project", "", "Filter by project id or title")
	cmd.Flags().StringVar(&f.status, "status", "", "Filter by status ("+statuses+")")
	cmd.Flags().StringVar(&f.query, "query", "", "Case-insensitive text search")
}

// resolveProject accepts a project id or a case-insensitive title
func resolveProject(state *projection.State, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	for _, p := range state.Projects {
		if p.ID == ref {
			return p.ID, nil
		}
	}
	for _, p := range state.Projects {
		if strings.EqualFold(p.Title, ref) {
			return p.ID, nil
		}
	}
	return "", usageErrorf("no project matches %q", ref)
}

func joinStatuses[T ~string](all []T) string {
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

func newPartsCommand(deps commandDeps) *cobra.Command {
	var f listFilter

	cmd := &cobra.Command{
		Use:   "parts",
		Short: "List parts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status := models.PartStatus(f.status)
			if f.status != "" && !slices.Contains(models.PartStatuses, status) {
				return usageErrorf("unknown part status %q", f.status)
			}
			return withStore(cmd.Context(), deps, func(ctx context.Context, s *session) error {
				state, err := projection.Load(ctx, s.store)
				if err != nil {
					return err
				}
				projectID, err := resolveProject(state, f.project)
				if err != nil {
					return err
				}
				if projectID != "" {
					if state.Parts, err = s.store.ListPartsByProject(ctx, projectID); err != nil {
						return err
					}
				}
				rows := projection.Parts(state, projection.PartFilter{
					ProjectID: projectID,
					Status:    status,
					Query:     f.query,
				})
				if deps.globals.JSON {
					return printJSON(deps.out, rows)
				}
				cur := state.Currency()
				for _, r := range rows {
					if _, err := fmt.Fprintf(deps.out, "%s  %-9s  %s  x%d  %s  project=%s  photos=%d\n",
						r.ID, r.Status, r.Name, r.Qty, projection.FormatMoney(r.Price, cur),
						r.ProjectTitle, len(r.Photos)); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	f.bind(cmd, joinStatuses(models.PartStatuses))
	return cmd
}

func newTasksCommand(deps commandDeps) *cobra.Command {
	var f listFilter

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List tasks by due date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status := models.TaskStatus(f.status)
			if f.status != "" && !slices.Contains(models.TaskStatuses, status) {
				return usageErrorf("unknown task status %q", f.status)
			}
			return withStore(cmd.Context(), deps, func(ctx context.Context, s *session) error {
				state, err := projection.Load(ctx, s.store)
				if err != nil {
					return err
				}
				projectID, err := resolveProject(state, f.project)
				if err != nil {
					return err
				}
				if projectID != "" {
					if state.Tasks, err = s.store.ListTasksByProject(ctx, projectID); err != nil {
						return err
					}
				}
				rows := projection.Tasks(state, projection.TaskFilter{
					ProjectID: projectID,
					Status:    status,
					Query:     f.query,
				})
				if deps.globals.JSON {
					return printJSON(deps.out, rows)
				}
				for _, r := range rows {
					if err := printTaskLine(deps, r); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	f.bind(cmd, joinStatuses(models.TaskStatuses))
	return cmd
}

func printTaskLine(deps commandDeps, r projection.TaskRow) error {
	due := r.Due
	if due == "" {
		due = "----------"
	}
	_, err := fmt.Fprintf(deps.out, "%s  %s  %-5s  %-4s  %s  project=%s\n",
		r.ID, due, r.Status, r.Priority, r.Title, r.ProjectTitle)
	return err
}

func newCalendarCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "calendar [YYYY-MM]",
		Short: "Show tasks due in a month, grouped by day",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return usageErrorf("calendar takes at most one month")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), deps, func(ctx context.Context, s *session) error {
				month := s.cfg.UI.Month
				if len(args) == 1 {
					month = args[0]
				}
				if month == "" {
					month = projection.CurrentMonth(time.Now())
				}

				start, err := time.Parse(projection.MonthLayout, month)
				if err != nil {
					return usageErrorf("month %q: want YYYY-MM", month)
				}
				state, err := projection.Load(ctx, s.store)
				if err != nil {
					return err
				}
				state.Tasks, err = s.store.ListTasksDue(ctx,
					start.Format(models.DateLayout), start.AddDate(0, 1, 0).Format(models.DateLayout))
				if err != nil {
					return err
				}
				view, err := projection.Month(state, month)
				if err != nil {
					return usageErrorf("%w", err)
				}
				if deps.globals.JSON {
					return printJSON(deps.out, view)
				}
				if view.Empty() {
					_, err := fmt.Fprintf(deps.out, "no tasks due in %s\n", view.Month)
					return err
				}
				for _, day := range view.Days {
					if _, err := fmt.Fprintln(deps.out, day.Day); err != nil {
						return err
					}
					for _, r := range day.Tasks {
						if _, err := fmt.Fprintf(deps.out, "  [%s] %s (%s)\n", r.Status, r.Title, r.ProjectTitle); err != nil {
							return err
						}
					}
				}
				return nil
			})
		},
	}
}
