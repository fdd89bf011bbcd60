package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hiroki-koketsu/kanban-board/internal/dragdrop"
	"github.com/hiroki-koketsu/kanban-board/internal/model"
	"github.com/hiroki-koketsu/kanban-board/internal/session"
)

func newBoardCmd(c *cli) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Render the board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoard(cmd, c, filter)
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "q", "", "only show tasks whose title or description contains this text")
	return cmd
}

func runBoard(cmd *cobra.Command, c *cli, filter string) error {
	ctx := cmd.Context()
	view, err := c.board.View(ctx, filter)
	if err != nil {
		c.term.ReportError(ctx, err)
		return err
	}
	return c.term.RenderBoard(ctx, view)
}

func newSummaryCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show task counts per column",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.board.Summary(cmd.Context())
			if err != nil {
				return err
			}
			return c.term.RenderSummary(s)
		},
	}
}

func newAddCmd(c *cli) *cobra.Command {
	var (
		description string
		due         string
		category    string
		priority    string
		state       string
		assignees   []string
		subtasks    []string
	)
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := session.New(c.tasks)
			s.SetTitle(args[0])
			s.SetDescription(description)
			if due != "" {
				if err := s.SetDueDate(due); err != nil {
					return err
				}
			}
			if err := s.SetCategory(category); err != nil {
				return err
			}
			if err := s.SetPriority(priority); err != nil {
				return err
			}
			st, err := model.ParseState(state)
			if err != nil {
				return err
			}
			if err := s.SetState(st); err != nil {
				return err
			}
			for _, id := range assignees {
				s.ToggleAssignee(id)
			}
			for _, title := range subtasks {
				s.AddSubtask(title)
			}

			task, err := s.Submit(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added task %s\n", task.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "task description")
	cmd.Flags().StringVar(&due, "due", "", `due date: 2006-01-02, 02/01/2006 or text such as "next friday"`)
	cmd.Flags().StringVarP(&category, "category", "c", string(model.CategoryUserStory), `"user story" or "technical task"`)
	cmd.Flags().StringVarP(&priority, "prio", "p", string(model.PriorityMedium), "low, medium or urgent")
	cmd.Flags().StringVarP(&state, "state", "s", string(model.StateToDo), "column: ToDo, InProgress, AwaitFeedback or Done")
	cmd.Flags().StringSliceVarP(&assignees, "assign", "a", nil, "contact id to assign (repeatable)")
	cmd.Flags().StringSliceVar(&subtasks, "subtask", nil, "subtask title (repeatable)")
	return cmd
}

func (c *cli) moveNext(ctx context.Context, id string) (*model.Task, error) {
	return c.board.MoveToNext(ctx, id)
}

func (c *cli) movePrev(ctx context.Context, id string) (*model.Task, error) {
	return c.board.MoveToPrev(ctx, id)
}

func newMoveCmd(c *cli, use, short string, move func(context.Context, string) (*model.Task, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <task id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := move(cmd.Context(), args[0])
			return err
		},
	}
}

func newDropCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "drop <task id> <target>",
		Short: "Drag a task onto a column or card",
		Long: `Drop a task onto the element named by target, as a drag on the board
would. Columns are named like "container-column-awaitfeedback"; cards
like "task-<id>container-column-done". Anything else cancels the drag.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			outcome, err := dragdrop.Run(cmd.Context(), c.board, dragdrop.Headless{}, args[0], args[1])
			if err != nil {
				return err
			}
			if outcome.Phase == dragdrop.Cancelled {
				c.term.Message("Drop cancelled: " + args[1] + " is not a drop target")
			}
			return nil
		},
	}
}

func newToggleCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <task id> <subtask index>",
		Short: "Check or uncheck a subtask",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return model.ErrSubtaskIndex
			}
			task, err := c.board.ToggleSubtask(cmd.Context(), args[0], index)
			if err != nil {
				return err
			}
			done, total := task.SubtaskProgress()
			fmt.Fprintf(cmd.OutOrStdout(), "%d/%d Subtasks\n", done, total)
			return nil
		},
	}
}

func newRemoveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <task id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := c.tasks.Delete(cmd.Context(), &model.Task{ID: args[0]})
			if err != nil {
				return err
			}
			if !ok {
				return model.ErrTaskNotFound
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", args[0])
			return nil
		},
	}
}
