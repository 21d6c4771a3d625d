// Package cli is the interactive terminal frontend. It holds the session
// state (records, filters, edit cursor) locally and refetches the full
// record set after every mutation.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"notas/internal/client"
	"notas/internal/core"
	"notas/internal/export"
	"notas/internal/view"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// api is the server surface the frontend needs. *client.Client satisfies it.
type api interface {
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) error
	List(ctx context.Context) ([]core.Record, error)
	Create(ctx context.Context, rec core.Record) (int64, error)
	Update(ctx context.Context, rec core.Record) error
	Delete(ctx context.Context, id int64) error
	ClearToken()
	LoggedIn() bool
}

type App struct {
	api     api
	session *view.Session
	in      *bufio.Reader
	out     io.Writer

	draft core.Record
}

func NewApp(api api, in io.Reader, out io.Writer) *App {
	return &App{
		api:     api,
		session: view.NewSession(),
		in:      bufio.NewReader(in),
		out:     out,
	}
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) readLine(prompt string) (string, error) {
	fmt.Fprint(a.out, prompt)
	line, err := a.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readField prompts for one form field. Empty input keeps the default.
func (a *App) readField(label, current string) (string, error) {
	prompt := label
	if current != "" {
		prompt += " [" + current + "]"
	}
	value, err := a.readLine(prompt + ": ")
	if err != nil {
		return "", err
	}
	if value == "" {
		return current, nil
	}
	return value, nil
}

func (a *App) readPasswordField() (string, error) {
	fmt.Fprint(a.out, "Password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(a.out)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// reportError prints the failure. A rejected token additionally resets the
// whole session, so the next prompt starts from the logged-out state.
func (a *App) reportError(action string, err error) {
	if errors.Is(err, client.ErrUnauthorized) {
		a.api.ClearToken()
		a.session.Reset()
		a.printf("Session expired or rejected, please log in again.\n")
		return
	}
	a.printf("%s failed: %v\n", action, err)
}

func (a *App) register(ctx context.Context) error {
	username, err := a.readLine("Username: ")
	if err != nil {
		return err
	}
	password, err := a.readPasswordField()
	if err != nil {
		return err
	}
	if err := a.api.Register(ctx, username, password); err != nil {
		a.printf("Register failed: %v\n", err)
		return nil
	}
	a.printf("Registered and logged in as %s.\n", username)
	return a.refresh(ctx)
}

func (a *App) login(ctx context.Context) error {
	username, err := a.readLine("Username: ")
	if err != nil {
		return err
	}
	password, err := a.readPasswordField()
	if err != nil {
		return err
	}
	if err := a.api.Login(ctx, username, password); err != nil {
		a.printf("Login failed: %v\n", err)
		return nil
	}
	a.printf("Logged in as %s.\n", username)
	return a.refresh(ctx)
}

// refresh refetches the full record set. Mutations never patch local
// state; they call refresh so the session always mirrors the server.
func (a *App) refresh(ctx context.Context) error {
	records, err := a.api.List(ctx)
	if err != nil {
		a.reportError("Refresh", err)
		return nil
	}
	a.session.SetRecords(records)
	a.printf("%d record(s) loaded.\n", len(records))
	return nil
}

func (a *App) setMonth(arg string) {
	if arg == "off" || arg == "" {
		a.session.SetMonth("")
		a.printf("Month filter cleared.\n")
		return
	}
	a.session.SetMonth(arg)
	a.printf("Month filter set to %s.\n", arg)
}

func (a *App) setSearch(arg string) {
	if arg == "off" || arg == "" {
		a.session.SetSearch("")
		a.printf("Search filter cleared.\n")
		return
	}
	a.session.SetSearch(arg)
	a.printf("Search filter set to %q.\n", arg)
}

func (a *App) list() {
	snap := a.session.Snapshot()
	renderTable(a.out, snap.Table)
}

func (a *App) summary() {
	snap := a.session.Snapshot()
	renderSummary(a.out, snap.Summary, a.session.Filters().Month)
}

func (a *App) chart() {
	snap := a.session.Snapshot()
	renderChart(a.out, snap.Chart)
}

// promptRecord walks through the form fields, pre-filling from current.
func (a *App) promptRecord(current core.Record) (core.Record, error) {
	rec := current

	date, err := a.readField("Date (YYYY-MM-DD)", current.Date)
	if err != nil {
		return core.Record{}, err
	}
	rec.Date = date

	company, err := a.readField("Company", current.Company)
	if err != nil {
		return core.Record{}, err
	}
	rec.Company = company

	number, err := a.readField("Number", current.Number)
	if err != nil {
		return core.Record{}, err
	}
	rec.Number = number

	amount, err := a.readField("Amount", current.Amount.String())
	if err != nil {
		return core.Record{}, err
	}
	cents, err := core.ParseDecimalToCents(amount)
	if err != nil {
		a.printf("Invalid amount: %v\n", err)
		return core.Record{}, errInvalidInput
	}
	rec.Amount = core.Money{Cents: cents}

	note, err := a.readField("Note", current.Note)
	if err != nil {
		return core.Record{}, err
	}
	rec.Note = note

	if err := rec.Validate(); err != nil {
		a.printf("Invalid record: %v\n", err)
		return core.Record{}, errInvalidInput
	}
	return rec, nil
}

var errInvalidInput = errors.New("invalid input")

func (a *App) add(ctx context.Context) error {
	rec, err := a.promptRecord(core.Record{})
	if errors.Is(err, errInvalidInput) {
		return nil
	}
	if err != nil {
		return err
	}

	id, err := a.api.Create(ctx, rec)
	if err != nil {
		a.reportError("Create", err)
		return nil
	}
	a.printf("Record #%d created.\n", id)
	return a.refresh(ctx)
}

func (a *App) edit(id int64) error {
	current, ok := a.session.BeginEdit(id)
	if !ok {
		a.printf("No record with id %d in the current set.\n", id)
		return nil
	}

	draft, err := a.promptRecord(current)
	if errors.Is(err, errInvalidInput) {
		a.session.CancelEdit()
		return nil
	}
	if err != nil {
		return err
	}

	a.draft = draft
	a.printf("Editing record #%d; 'save' to submit, 'cancel' to discard.\n", id)
	return nil
}

func (a *App) cancel() {
	if _, ok := a.session.Editing(); !ok {
		a.printf("Nothing is being edited.\n")
		return
	}
	a.session.CancelEdit()
	a.printf("Edit cancelled.\n")
}

func (a *App) save(ctx context.Context) error {
	id, ok := a.session.Editing()
	if !ok {
		a.printf("Nothing is being edited.\n")
		return nil
	}

	rec := a.draft
	rec.ID = id
	if err := a.api.Update(ctx, rec); err != nil {
		a.reportError("Update", err)
		return nil
	}
	a.session.FinishEdit()
	a.printf("Record #%d updated.\n", id)
	return a.refresh(ctx)
}

func (a *App) del(ctx context.Context, id int64) error {
	answer, err := a.readLine(fmt.Sprintf("Delete record #%d? [y/N]: ", id))
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") {
		a.printf("Aborted.\n")
		return nil
	}

	if err := a.api.Delete(ctx, id); err != nil {
		a.reportError("Delete", err)
		return nil
	}
	a.printf("Record #%d deleted.\n", id)
	return a.refresh(ctx)
}

func (a *App) export(path string) {
	if err := export.WriteXLSX(a.session.Records(), path); err != nil {
		a.printf("Export failed: %v\n", err)
		return
	}
	a.printf("Exported %d record(s) to %s.\n", len(a.session.Records()), path)
}

func (a *App) logout() {
	a.api.ClearToken()
	a.session.Reset()
	a.printf("Logged out.\n")
}
