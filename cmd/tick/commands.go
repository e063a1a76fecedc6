package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tomlord1122/tick/internal/client"
	"github.com/Tomlord1122/tick/internal/domain"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List todos",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := client.ListParams{}
		p.Count, _ = cmd.Flags().GetInt("count")
		p.Offset, _ = cmd.Flags().GetInt("offset")
		p.SortBy, _ = cmd.Flags().GetString("sort-by")
		p.Order, _ = cmd.Flags().GetString("order")
		p.Search, _ = cmd.Flags().GetString("search")
		if cmd.Flags().Changed("done") {
			done, _ := cmd.Flags().GetBool("done")
			p.Done = &done
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()
		todos, err := newClient().List(ctx, p)
		if err != nil {
			return err
		}
		return printTodos(cmd.OutOrStdout(), todos)
	},
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one todo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()
		todo, err := newClient().Get(ctx, id)
		if err != nil {
			return err
		}
		return printTodos(cmd.OutOrStdout(), []domain.Todo{todo})
	},
}

var createCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a todo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		todo := domain.Todo{Title: args[0]}
		if err := applyFlags(cmd, &todo); err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()
		created, err := client.NewCoordinator(newClient()).Create(ctx, todo)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created todo %d\n", created.ID)
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Edit a todo; only the given flags change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()
		api := newClient()
		todo, err := api.Get(ctx, id)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("title") {
			todo.Title, _ = cmd.Flags().GetString("title")
		}
		if cmd.Flags().Changed("done") {
			todo.Done, _ = cmd.Flags().GetBool("done")
		}
		if err := applyFlags(cmd, &todo); err != nil {
			return err
		}

		if _, err := client.NewCoordinator(api).Update(ctx, todo); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "updated todo %d\n", id)
		return nil
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Flip a todo between open and done",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()
		api := newClient()

		var todo domain.Todo
		if atomic, _ := cmd.Flags().GetBool("atomic"); atomic {
			todo, err = api.Toggle(ctx, id)
		} else {
			todo, err = client.NewCoordinator(api).Toggle(ctx, id)
		}
		if err != nil {
			return err
		}
		state := "open"
		if todo.Done {
			state = "done"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "todo %d is %s\n", id, state)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a todo",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()
		if err := newClient().Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted todo %d\n", id)
		return nil
	},
}

var autocompleteCmd = &cobra.Command{
	Use:   "autocomplete <term>",
	Short: "Quick search on title or content (at most 10 results)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()
		todos, err := newClient().Autocomplete(ctx, args[0])
		if err != nil {
			return err
		}
		return printTodos(cmd.OutOrStdout(), todos)
	},
}

func init() {
	listCmd.Flags().Int("count", 0, "page size, 1 to 100 (server default 25)")
	listCmd.Flags().Int("offset", 0, "rows to skip")
	listCmd.Flags().String("sort-by", "", "creation_date, due_date, priority or done")
	listCmd.Flags().String("order", "", "asc or desc")
	listCmd.Flags().Bool("done", false, "only done (--done) or only open (--done=false) todos")
	listCmd.Flags().String("search", "", "substring of title or content")

	for _, c := range []*cobra.Command{createCmd, updateCmd} {
		c.Flags().String("content", "", "todo body")
		c.Flags().Int64("priority", 0, "priority")
		c.Flags().String("due", "", "due date as YYYY-MM-DD, RFC 3339 or unix seconds")
	}
	updateCmd.Flags().String("title", "", "new title")
	updateCmd.Flags().Bool("done", false, "mark done or open")

	toggleCmd.Flags().Bool("atomic", false, "toggle on the server with a conditional write")
}

// applyFlags copies the content, priority and due flags that were set onto todo.
func applyFlags(cmd *cobra.Command, todo *domain.Todo) error {
	if cmd.Flags().Changed("content") {
		todo.Content, _ = cmd.Flags().GetString("content")
	}
	if cmd.Flags().Changed("priority") {
		todo.Priority, _ = cmd.Flags().GetInt64("priority")
	}
	if cmd.Flags().Changed("due") {
		s, _ := cmd.Flags().GetString("due")
		due, err := parseWhen(s)
		if err != nil {
			return err
		}
		todo.DueDate = due
	}
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid todo id %q", s)
	}
	return id, nil
}

// parseWhen accepts a date, an RFC 3339 instant or unix seconds. An empty
// string clears the value.
func parseWhen(s string) (domain.Timestamp, error) {
	if s == "" {
		return domain.Epoch, nil
	}
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return domain.Unix(sec), nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, time.Local); err == nil {
		return domain.At(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return domain.At(t), nil
	}
	return domain.Timestamp{}, fmt.Errorf("invalid date %q", s)
}

func formatWhen(ts domain.Timestamp) string {
	if ts.IsEpoch() {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04")
}

func printTodos(w io.Writer, todos []domain.Todo) error {
	if len(todos) == 0 {
		_, err := fmt.Fprintln(w, "no todos")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tPRI\tTITLE\tCREATED\tDUE\tFINISHED")
	for _, td := range todos {
		done := " "
		if td.Done {
			done = "x"
		}
		fmt.Fprintf(tw, "%d\t[%s]\t%d\t%s\t%s\t%s\t%s\n",
			td.ID, done, td.Priority, td.Title,
			formatWhen(td.CreationDate), formatWhen(td.DueDate), formatWhen(td.FinishDate))
	}
	return tw.Flush()
}
