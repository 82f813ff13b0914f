package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/TiredRebel/personal-assistant/internal/command"
	"github.com/TiredRebel/personal-assistant/internal/service"
	"github.com/TiredRebel/personal-assistant/internal/store"
)

// app bundles the storage and services one invocation works with.
type app struct {
	dir      string
	store    store.Store
	contacts *service.Contacts
	notes    *service.Notes
	logger   *slog.Logger
	logFile  io.Closer
}

// openApp opens the storage log, the configured store and both services.
func openApp(ctx context.Context) (*app, error) {
	dir := dataDir()
	var echo io.Writer
	if verbose {
		echo = os.Stderr
	}
	logger, logFile, err := store.OpenLog(dir, echo)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(store.Options{
		Dir:        dir,
		Mode:       storeMode,
		BackupKeep: settings.Backups(),
		Logger:     logger,
	})
	if err != nil {
		logFile.Close()
		return nil, err
	}
	a := &app{dir: dir, store: st, logger: logger, logFile: logFile}
	if a.contacts, err = service.NewContacts(ctx, st); err != nil {
		a.Close()
		return nil, err
	}
	if a.notes, err = service.NewNotes(ctx, st); err != nil {
		a.Close()
		return nil, err
	}
	logger.Info("session opened", "dir", dir, "mode", storeMode,
		"contacts", a.contacts.Count(), "notes", a.notes.Count())
	return a, nil
}

// Close releases the store and the log file.
func (a *app) Close() error {
	return errors.Join(a.store.Close(), a.logFile.Close())
}

// jsonStore returns the JSON backend, or an error when another backend is
// configured.
func (a *app) jsonStore() (*store.JSONStore, error) {
	js, ok := a.store.(*store.JSONStore)
	if !ok {
		return nil, errors.New("backups, export and import need store_mode = json")
	}
	return js, nil
}

// matcherOptions applies config overrides to the default tuning.
func matcherOptions() command.Options {
	opts := command.DefaultOptions()
	if settings.FuzzyThreshold > 0 {
		opts.FuzzyThreshold = settings.FuzzyThreshold
	}
	if settings.SuggestThreshold > 0 {
		opts.SuggestThreshold = settings.SuggestThreshold
	}
	if settings.MaxSuggestions > 0 {
		opts.MaxSuggestions = settings.MaxSuggestions
	}
	return opts
}

func newMatcher(logger *slog.Logger) *command.Matcher {
	return command.NewMatcher(command.DefaultTable(), matcherOptions(), logger)
}

// session builds a Session over the app's services. Interactive sessions
// print a banner and a prompt before each line.
func (a *app) session(in io.Reader, out io.Writer, interactive bool) *Session {
	learner := command.NewLearner(newMatcher(a.logger), 0)
	return NewSession(SessionConfig{
		In:             in,
		Out:            out,
		Learner:        learner,
		Contacts:       a.contacts,
		Notes:          a.notes,
		Color:          useColor(out, settings.Color, noColor),
		JSON:           jsonOutput,
		Interactive:    interactive,
		BirthdayDays:   settings.Birthdays(),
		MaxSuggestions: matcherOptions().MaxSuggestions,
	})
}
