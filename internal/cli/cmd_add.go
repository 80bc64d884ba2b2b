package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tgienger/refurb/internal/models"
	"github.com/tgienger/refurb/internal/projection"
)

func newProjectCommand(deps commandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project management",
	}
	cmd.AddCommand(newProjectAddCommand(deps), newRemoveCommand(deps, "project"))
	return cmd
}

func newPartCommand(deps commandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "part",
		Short: "Part management",
	}
	cmd.AddCommand(newPartAddCommand(deps), newRemoveCommand(deps, "part"))
	return cmd
}

func newTaskCommand(deps commandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Task management",
	}
	cmd.AddCommand(newTaskAddCommand(deps), newRemoveCommand(deps, "task"))
	return cmd
}

func newPhotoCommand(deps commandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photo",
		Short: "Part photo management",
	}
	cmd.AddCommand(newPhotoAddCommand(deps), newRemoveCommand(deps, "photo"))
	return cmd
}

func newProjectAddCommand(deps commandDeps) *cobra.Command {
	var (
		reg    string
		status string
		notes  string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a project",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageErrorf("project add requires exactly one title")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			p := models.NewProject(args[0])
			p.Reg = reg
			p.Status = models.ProjectStatus(status)
			p.Notes = notes

			return withStore(cmd.Context(), deps, func(ctx context.Context, s *session) error {
				if err := s.store.CreateProject(ctx, &p); err != nil {
					return err
				}
				return printCreated(deps, "project", p.ID, p)
			})
		},
	}
	cmd.Flags().StringVar(&reg, "reg", "", "Registration or frame number")
	cmd.Flags().StringVar(&status, "status", string(models.ProjectPlanning), "Stage ("+joinStatuses(models.ProjectStatuses)+")")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes")
	return cmd
}

func newPartAddCommand(deps commandDeps) *cobra.Command {
	var (
		project  string
		status   string
		supplier string
		price    float64
		qty      int
		due      string
		notes    string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a part",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageErrorf("part add requires exactly one name")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), deps, func(ctx context.Context, s *session) error {
				state, err := projection.Load(ctx, s.store)
				if err != nil {
					return err
				}
				projectID, err := resolveProject(state, project)
				if err != nil {
					return err
				}

				p := models.NewPart(args[0])
				p.ProjectID = projectID
				p.Status = models.PartStatus(status)
				p.Supplier = supplier
				p.Price = price
				p.Qty = qty
				p.Due = due
				p.Notes = notes
				if err := s.store.CreatePart(ctx, &p); err != nil {
					return err
				}
				return printCreated(deps, "part", p.ID, p)
			})
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "Owning project id or title")
	cmd.Flags().StringVar(&status, "status", string(models.PartNeeded), "Status ("+joinStatuses(models.PartStatuses)+")")
	cmd.Flags().StringVar(&supplier, "supplier", "", "Supplier")
	cmd.Flags().Float64Var(&price, "price", 0, "Unit price")
	cmd.Flags().IntVar(&qty, "qty", 1, "Quantity")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes")
	return cmd
}

func newTaskAddCommand(deps commandDeps) *cobra.Command {
	var (
		project  string
		due      string
		priority string
		status   string
		notes    string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageErrorf("task add requires exactly one title")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), deps, func(ctx context.Context, s *session) error {
				state, err := projection.Load(ctx, s.store)
				if err != nil {
					return err
				}
				projectID, err := resolveProject(state, project)
				if err != nil {
					return err
				}

				t := models.NewTask(args[0])
				t.ProjectID = projectID
				t.Due = due
				t.Priority = models.Priority(priority)
				t.Status = models.TaskStatus(status)
				t.Notes = notes
				if err := s.store.CreateTask(ctx, &t); err != nil {
					return err
				}
				return printCreated(deps, "task", t.ID, t)
			})
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "Owning project id or title")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&priority, "priority", string(models.PriorityMed), "Priority ("+joinStatuses(models.Priorities)+")")
	cmd.Flags().StringVar(&status, "status", string(models.TaskTodo), "Status ("+joinStatuses(models.TaskStatuses)+")")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes")
	return cmd
}

func newPhotoAddCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "add <part-id> <file>",
		Short: "Attach an image file to a part",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return usageErrorf("photo add requires a part id and a file")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[1])
			if err != nil {
				return mapCommandError(err)
			}
			mediaType := http.DetectContentType(raw)
			data := "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(raw)

			return withStore(cmd.Context(), deps, func(ctx context.Context, s *session) error {
				if _, err := s.store.GetPart(ctx, args[0]); err != nil {
					return err
				}
				p := models.NewPhoto(args[0], filepath.Base(args[1]), mediaType, data)
				if err := s.store.CreatePhoto(ctx, &p); err != nil {
					return err
				}
				s.log.Debug("photo attached", "part", p.PartID, "type", mediaType, "data", data)
				return printCreated(deps, "photo", p.ID, map[string]any{
					"id":     p.ID,
					"partId": p.PartID,
					"name":   p.Name,
					"type":   p.MediaType,
					"bytes":  len(raw),
				})
			})
		},
	}
}

func printCreated(deps commandDeps, kind, id string, record any) error {
	if deps.globals.JSON {
		return printJSON(deps.out, record)
	}
	_, err := fmt.Fprintf(deps.out, "created %s %s\n", kind, id)
	return err
}
