package console

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"repairboard/internal/board"
)

var errUsage = errors.New("usage")

type command struct {
	name    string
	aliases []string
	usage   string
	desc    string
	// redraw the board after a successful run
	redraw bool
	run    func(ctx context.Context, c *Console, args []string) error
}

func (c *Console) register(cmds ...*command) {
	if c.index == nil {
		c.index = map[string]*command{}
	}
	for _, cmd := range cmds {
		c.cmds = append(c.cmds, cmd)
		c.index[cmd.name] = cmd
		for _, a := range cmd.aliases {
			c.index[a] = cmd
		}
	}
}

func builtins() []*command {
	return []*command{
		{name: "add", aliases: []string{"new", "a"}, usage: "add", desc: "append a task with default values", redraw: true, run: cmdAdd},
		{name: "edit", aliases: []string{"e", "set"}, usage: "edit <id> <field> [value...]", desc: "change one field (empty value blanks it)", redraw: true, run: cmdEdit},
		{name: "rm", aliases: []string{"delete", "del"}, usage: "rm <id>", desc: "delete a task", redraw: true, run: cmdDelete},
		{name: "open", aliases: []string{"o", "toggle"}, usage: "open <id>", desc: "open or close a row for editing", redraw: true, run: cmdOpen},
		{name: "search", aliases: []string{"find", "/"}, usage: "search [term...]", desc: "filter rows by name (no term clears)", redraw: true, run: cmdSearch},
		{name: "sort", usage: "sort <field> [asc|desc] | off", desc: "sort by a column; again to reverse", redraw: true, run: cmdSort},
		{name: "days", usage: "days <n>", desc: "set the number of days shown", redraw: true, run: cmdDays},
		{name: "today", usage: "today [YYYY-MM-DD]", desc: "move the first day of the chart", redraw: true, run: cmdToday},
		{name: "photo", usage: "photo <id> <path>", desc: "attach an image file to a task", run: cmdPhoto},
		{name: "show", aliases: []string{"ls", "draw"}, usage: "show", desc: "redraw the board", redraw: true, run: func(context.Context, *Console, []string) error { return nil }},
		{name: "history", aliases: []string{"log"}, usage: "history [n]", desc: "show recent journal entries", run: cmdHistory},
		{name: "fields", usage: "fields", desc: "list editable fields and statuses", run: cmdFields},
		{name: "help", aliases: []string{"?", "h"}, usage: "help [command]", desc: "show commands", run: cmdHelp},
		{name: "quit", aliases: []string{"exit", "q"}, usage: "quit", desc: "leave", run: func(context.Context, *Console, []string) error { return errQuit }},
	}
}

func cmdAdd(ctx context.Context, c *Console, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	t, err := c.sess.CreateTask(ctx)
	if err != nil {
		return err
	}
	c.printf("added %s\n", t.ID)
	return nil
}

func cmdEdit(ctx context.Context, c *Console, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	id, err := c.sess.ResolveID(ctx, args[0])
	if err != nil {
		return err
	}
	field, err := board.ParseField(args[1])
	if err != nil {
		return err
	}
	value := strings.Join(args[2:], " ")
	if err := c.sess.EditTask(ctx, id, field, value); err != nil {
		return fmt.Errorf("%s not changed: %w", field, err)
	}
	return nil
}

func cmdDelete(ctx context.Context, c *Console, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	id, err := c.sess.ResolveID(ctx, args[0])
	if err != nil {
		return err
	}
	ok, err := c.sess.DeleteTask(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", board.ErrTaskNotFound, id)
	}
	c.printf("deleted %s\n", id)
	return nil
}

func cmdOpen(ctx context.Context, c *Console, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	id, err := c.sess.ResolveID(ctx, args[0])
	if err != nil {
		return err
	}
	_, err = c.sess.ToggleEditing(ctx, id)
	return err
}

func cmdSearch(ctx context.Context, c *Console, args []string) error {
	return c.sess.SetSearch(ctx, strings.Join(args, " "))
}

func cmdSort(ctx context.Context, c *Console, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errUsage
	}
	switch strings.ToLower(args[0]) {
	case "off", "none", "clear":
		return c.sess.ClearSort(ctx)
	}
	key, err := board.ParseSortKey(args[0])
	if err != nil {
		return err
	}
	if len(args) == 1 {
		_, err = c.sess.ToggleSort(ctx, key)
		return err
	}
	switch strings.ToLower(args[1]) {
	case "asc":
		return c.sess.SetSort(ctx, &board.SortSpec{Key: key, Asc: true})
	case "desc":
		return c.sess.SetSort(ctx, &board.SortSpec{Key: key})
	}
	return errUsage
}

func cmdDays(ctx context.Context, c *Console, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return errUsage
	}
	applied, err := c.sess.SetWindowDays(ctx, n)
	if err != nil {
		return err
	}
	if applied != n {
		c.printf("days limited to %d\n", applied)
	}
	return nil
}

func cmdToday(ctx context.Context, c *Console, args []string) error {
	switch len(args) {
	case 0:
		return c.sess.Reanchor(ctx, c.today())
	case 1:
		return c.sess.Reanchor(ctx, args[0])
	}
	return errUsage
}

func cmdPhoto(ctx context.Context, c *Console, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	id, err := c.sess.ResolveID(ctx, args[0])
	if err != nil {
		return err
	}
	c.startPhoto(ctx, id, args[1])
	c.printf("loading %s...\n", args[1])
	return nil
}

func cmdHistory(ctx context.Context, c *Console, args []string) error {
	n := 20
	if len(args) > 1 {
		return errUsage
	}
	if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v <= 0 {
			return errUsage
		}
		n = v
	}
	if c.journal == nil {
		return errors.New("no journal configured")
	}
	entries, err := c.journal.Recent(ctx, n)
	if err != nil {
		return err
	}
	return c.rend.History(entries)
}

func cmdFields(_ context.Context, c *Console, _ []string) error {
	names := []string{
		string(board.FieldName), string(board.FieldPhone), string(board.FieldEmail),
		string(board.FieldStatus), string(board.FieldDeadline), "hours", string(board.FieldStart),
		string(board.FieldMenu), string(board.FieldMemo), string(board.FieldAssignee), "model", "photo",
	}
	c.printf("fields: %s\n", strings.Join(names, ", "))
	statuses := make([]string, 0, len(board.Statuses()))
	for _, st := range board.Statuses() {
		statuses = append(statuses, fmt.Sprintf("%s (%s)", st.Key(), st))
	}
	c.printf("statuses: %s\n", strings.Join(statuses, ", "))
	return nil
}

func cmdHelp(_ context.Context, c *Console, args []string) error {
	if len(args) > 0 {
		cmd, ok := c.index[strings.ToLower(args[0])]
		if !ok {
			return fmt.Errorf("unknown command %q", args[0])
		}
		c.printf("%s: %s\nusage: %s\n", cmd.name, cmd.desc, cmd.usage)
		if len(cmd.aliases) > 0 {
			c.printf("aliases: %s\n", strings.Join(cmd.aliases, ", "))
		}
		return nil
	}
	cmds := append([]*command(nil), c.cmds...)
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].name < cmds[j].name })
	for _, cmd := range cmds {
		c.printf("  %-28s %s\n", cmd.usage, cmd.desc)
	}
	c.printf("ids may be shortened to any unique prefix\n")
	return nil
}
