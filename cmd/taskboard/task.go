package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"taskboard/internal/codec"
	"taskboard/internal/domain"
	"taskboard/internal/service"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Create, edit, rank and list tasks",
}

var (
	taskOwner       string
	taskStates      []string
	taskListJSON    bool
	taskTitle       string
	taskDescription string
	taskFormat      string
	importFormat    string
)

func init() {
	taskCmd.PersistentFlags().StringVar(&taskOwner, "owner", os.Getenv("TASKBOARD_OWNER"), "owner id (default $TASKBOARD_OWNER)")

	taskListCmd.Flags().StringSliceVar(&taskStates, "state", nil, "states to include (default open)")
	taskListCmd.Flags().BoolVar(&taskListJSON, "json", false, "print JSON instead of a table")

	taskExportCmd.Flags().StringSliceVar(&taskStates, "state", nil, "states to include (default open)")
	taskExportCmd.Flags().StringVar(&taskFormat, "format", "json", "export format: json or yaml")

	taskEditCmd.Flags().StringVar(&taskTitle, "title", "", "new title")
	taskEditCmd.Flags().StringVar(&taskDescription, "description", "", "new description (empty clears it)")

	taskImportCmd.Flags().StringVar(&importFormat, "format", "", "import format: json or yaml (default from file extension)")

	taskCmd.AddCommand(taskCreateCmd, taskListCmd, taskShowCmd, taskEditCmd,
		taskCompleteCmd, taskReopenCmd, taskRankCmd, taskExportCmd, taskImportCmd)
	rootCmd.AddCommand(taskCmd)
}

func ownerFlag() (uuid.UUID, error) {
	if strings.TrimSpace(taskOwner) == "" {
		return uuid.Nil, fmt.Errorf("%w: --owner is required", domain.ErrInvalidArgument)
	}
	return domain.ParseOwnerID(taskOwner)
}

// withTasks opens the store and hands fn a ranking service over it
func withTasks(cmd *cobra.Command, fn func(ctx context.Context, svc *service.RankingService) error) error {
	return withStore(cmd, func(ctx context.Context, s store) error {
		return fn(ctx, service.NewRankingService(s, nil))
	})
}

var taskCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create an open task and print its id",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := ownerFlag()
		if err != nil {
			return err
		}
		return withTasks(cmd, func(ctx context.Context, svc *service.RankingService) error {
			task, err := svc.CreateTask(ctx, strings.Join(args, " "), owner)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), task.ID)
			return nil
		})
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks in display order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := ownerFlag()
		if err != nil {
			return err
		}
		return withTasks(cmd, func(ctx context.Context, svc *service.RankingService) error {
			tasks, err := svc.QueryByOwner(ctx, owner, taskStates)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if taskListJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(tasks)
			}
			fmt.Fprint(out, formatTaskTable(tasks))
			return nil
		})
	},
}

var taskShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := domain.ParseTaskID(args[0])
		if err != nil {
			return err
		}
		return withTasks(cmd, func(ctx context.Context, svc *service.RankingService) error {
			task, err := svc.GetTask(ctx, id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "id:          %d\n", task.ID)
			fmt.Fprintf(out, "title:       %s\n", task.Title)
			fmt.Fprintf(out, "state:       %s\n", task.State)
			if task.Description != "" {
				fmt.Fprintf(out, "description: %s\n", task.Description)
			}
			return nil
		})
	},
}

var taskEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change a task's title or description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := domain.ParseTaskID(args[0])
		if err != nil {
			return err
		}

		// Only flags given on the command line are applied
		var patch domain.TaskPatch
		if cmd.Flags().Changed("title") {
			patch.Title = &taskTitle
		}
		if cmd.Flags().Changed("description") {
			patch.Description = &taskDescription
		}

		return withTasks(cmd, func(ctx context.Context, svc *service.RankingService) error {
			task, err := svc.Update(ctx, id, patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d %s\n", task.ID, task.Title)
			return nil
		})
	},
}

var taskCompleteCmd = &cobra.Command{
	Use:   "complete <id>",
	Short: "Mark a task complete",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(cmd, args[0], (*service.RankingService).CompleteTask)
	},
}

var taskReopenCmd = &cobra.Command{
	Use:   "reopen <id>",
	Short: "Mark a task open again",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(cmd, args[0], (*service.RankingService).ReopenTask)
	},
}

func runTransition(cmd *cobra.Command, arg string, fn func(*service.RankingService, context.Context, int64) (domain.Result, error)) error {
	id, err := domain.ParseTaskID(arg)
	if err != nil {
		return err
	}
	return withTasks(cmd, func(ctx context.Context, svc *service.RankingService) error {
		result, err := fn(svc, ctx, id)
		if err != nil {
			return err
		}
		if result.Modified() {
			fmt.Fprintln(cmd.OutOrStdout(), "updated")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "not modified")
		}
		return nil
	})
}

var taskRankCmd = &cobra.Command{
	Use:   "rank <id>...",
	Short: "Replace the owner's ranking with the given task order",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := ownerFlag()
		if err != nil {
			return err
		}
		ids := make([]int64, 0, len(args))
		for _, arg := range args {
			id, err := domain.ParseTaskID(arg)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}

		return withTasks(cmd, func(ctx context.Context, svc *service.RankingService) error {
			ranking, err := svc.SaveRankings(ctx, owner, ids)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ranked %d tasks\n", len(ranking.TaskIDs))
			return nil
		})
	},
}

var taskExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the ranked task list as JSON or YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := ownerFlag()
		if err != nil {
			return err
		}
		return withTasks(cmd, func(ctx context.Context, svc *service.RankingService) error {
			return svc.Export(ctx, owner, taskStates, taskFormat, cmd.OutOrStdout())
		})
	},
}

var taskImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Recreate an exported task list for the owner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := ownerFlag()
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		format := importFormat
		if format == "" {
			format = codec.FormatForPath(args[0])
		}

		return withTasks(cmd, func(ctx context.Context, svc *service.RankingService) error {
			tasks, err := svc.Import(ctx, owner, format, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d tasks\n", len(tasks))
			return nil
		})
	},
}

func formatTaskTable(tasks []domain.Task) string {
	if len(tasks) == 0 {
		return "No tasks found.\n"
	}
	rows := make([][]string, 0, len(tasks))
	for i, t := range tasks {
		title := truncateTableCell(t.Title)
		if t.IsComplete() {
			title = completeStyle.Render(title)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			strconv.FormatInt(t.ID, 10),
			string(t.State),
			title,
		})
	}
	return formatTable([]string{"#", "ID", "STATE", "TITLE"}, rows)
}
