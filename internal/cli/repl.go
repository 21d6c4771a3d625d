package cli

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
)

// Run reads commands until EOF or quit. Command errors are reported to the
// user inside the handlers; only I/O failures end the loop.
func (a *App) Run(ctx context.Context) {
	a.printf("Type 'help' for the command list.\n")
	for {
		line, err := a.readLine(a.prompt())
		if err != nil {
			if !errors.Is(err, io.EOF) {
				a.printf("Input error: %v\n", err)
			}
			return
		}
		if a.dispatch(ctx, line) {
			return
		}
	}
}

func (a *App) prompt() string {
	switch {
	case !a.api.LoggedIn():
		return "notas [guest]> "
	default:
		if id, ok := a.session.Editing(); ok {
			return "notas [editing #" + strconv.FormatInt(id, 10) + "]> "
		}
		return "notas> "
	}
}

// dispatch runs one command line and reports whether the loop should end.
func (a *App) dispatch(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	cmd, arg := parts[0], strings.Join(parts[1:], " ")

	switch cmd {
	case "help":
		a.help()

	case "register":
		a.reportEOF(a.register(ctx))
	case "login":
		a.reportEOF(a.login(ctx))
	case "logout":
		a.logout()

	case "refresh":
		a.reportEOF(a.refresh(ctx))
	case "month":
		a.setMonth(arg)
	case "search":
		a.setSearch(arg)
	case "list", "l":
		a.list()
	case "summary":
		a.summary()
	case "chart":
		a.chart()

	case "add":
		a.reportEOF(a.add(ctx))
	case "edit":
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			a.printf("Usage: edit <id>\n")
			return false
		}
		a.reportEOF(a.edit(id))
	case "cancel":
		a.cancel()
	case "save":
		a.reportEOF(a.save(ctx))
	case "del":
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			a.printf("Usage: del <id>\n")
			return false
		}
		a.reportEOF(a.del(ctx, id))

	case "export":
		if arg == "" {
			a.printf("Usage: export <file.xlsx>\n")
			return false
		}
		a.export(arg)

	case "exit", "quit":
		a.printf("Bye!\n")
		return true

	default:
		a.printf("Unknown command: %s\n", cmd)
	}
	return false
}

// reportEOF surfaces input stream failures from interactive commands; all
// other errors are already reported closer to their cause.
func (a *App) reportEOF(err error) {
	if err != nil && !errors.Is(err, io.EOF) {
		a.printf("Input error: %v\n", err)
	}
}

func (a *App) help() {
	if !a.api.LoggedIn() {
		a.printf("Commands: register, login, help, quit\n")
		return
	}
	a.printf("Commands: refresh, list, month <YYYY-MM>|off, search <term>|off,\n")
	a.printf("          summary, chart, add, edit <id>, save, cancel, del <id>,\n")
	a.printf("          export <file.xlsx>, logout, quit\n")
}
