package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hiroki-koketsu/kanban-board/internal/model"
	"github.com/hiroki-koketsu/kanban-board/internal/repository"
	"github.com/hiroki-koketsu/kanban-board/internal/session"
)

func newEditCmd(c *cli) *cobra.Command {
	var (
		title          string
		description    string
		due            string
		category       string
		priority       string
		toggleAssign   []string
		addSubtasks    []string
		renameSubtasks []string
		deleteSubtasks []int
	)
	cmd := &cobra.Command{
		Use:   "edit <task id>",
		Short: "Change a task",
		Long: `Change the fields of a task. Only the flags given are applied.

Examples:
  boardctl edit 6f1c... --title "Ship 1.2" --prio urgent
  boardctl edit 6f1c... --assign c1 --subtask "write notes"
  boardctl edit 6f1c... --rename-subtask 0="final notes" --delete-subtask 1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			task, err := c.tasks.GetByID(ctx, args[0])
			if err != nil {
				return err
			}
			s := session.Edit(c.tasks, task)
			flags := cmd.Flags()

			if flags.Changed("title") {
				s.SetTitle(title)
			}
			if flags.Changed("description") {
				s.SetDescription(description)
			}
			if flags.Changed("due") {
				if err := s.SetDueDate(due); err != nil {
					return err
				}
			}
			if flags.Changed("category") {
				if err := s.SetCategory(category); err != nil {
					return err
				}
			}
			if flags.Changed("prio") {
				if err := s.SetPriority(priority); err != nil {
					return err
				}
			}
			for _, id := range toggleAssign {
				s.ToggleAssignee(id)
			}
			for _, arg := range renameSubtasks {
				i, name, err := parseRename(arg)
				if err != nil {
					return err
				}
				if err := s.RenameSubtask(i, name); err != nil {
					return err
				}
			}
			// Highest index first so earlier deletions do not shift later ones.
			for i := len(deleteSubtasks) - 1; i >= 0; i-- {
				if err := s.DeleteSubtask(deleteSubtasks[i]); err != nil {
					return err
				}
			}
			for _, t := range addSubtasks {
				s.AddSubtask(t)
			}

			updated, err := s.Submit(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s\n", updated.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	cmd.Flags().StringVar(&due, "due", "", "new due date; empty clears it")
	cmd.Flags().StringVarP(&category, "category", "c", "", `"user story" or "technical task"`)
	cmd.Flags().StringVarP(&priority, "prio", "p", "", "low, medium or urgent")
	cmd.Flags().StringSliceVarP(&toggleAssign, "assign", "a", nil, "contact id to assign or unassign (repeatable)")
	cmd.Flags().StringSliceVar(&addSubtasks, "subtask", nil, "subtask title to add (repeatable)")
	cmd.Flags().StringArrayVar(&renameSubtasks, "rename-subtask", nil, "index=title (repeatable)")
	cmd.Flags().IntSliceVar(&deleteSubtasks, "delete-subtask", nil, "subtask index to delete (repeatable, ascending)")
	return cmd
}

// parseRename splits "2=new title".
func parseRename(arg string) (int, string, error) {
	idx, name, ok := strings.Cut(arg, "=")
	if !ok {
		return 0, "", fmt.Errorf("rename %q: want index=title", arg)
	}
	i, err := strconv.Atoi(strings.TrimSpace(idx))
	if err != nil {
		return 0, "", model.ErrSubtaskIndex
	}
	return i, name, nil
}

func newContactsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "List the people tasks can be assigned to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			contacts, err := repository.NewContactRepository(c.client).LoadAll(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i := range contacts {
				p := &contacts[i]
				fmt.Fprintf(out, "%-3s %-24s %s %s\n", p.Initials(), p.Name(), p.AvatarColor(), p.ID)
			}
			return nil
		},
	}
	cmd.AddCommand(newContactAddCmd(c))
	return cmd
}

func newContactAddCmd(c *cli) *cobra.Command {
	var email, phone string
	cmd := &cobra.Command{
		Use:   "add FIRST [LAST]",
		Short: "Add someone tasks can be assigned to",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			last := ""
			if len(args) == 2 {
				last = args[1]
			}
			contact := model.NewContact(args[0], last)
			contact.Email = email
			contact.Phone = phone
			if _, err := repository.NewContactRepository(c.client).Add(cmd.Context(), contact); err != nil {
				return err
			}
			c.term.Message(fmt.Sprintf("Added %s (%s)", contact.Name(), contact.ID))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number")
	return cmd
}
