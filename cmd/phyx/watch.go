package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/zephyrtronium/phyxcalc"
	"github.com/zephyrtronium/phyxcalc/internal/logger"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch file",
	Short: "Evaluate a document again whenever it changes",
	Long: `Evaluates a document and prints it with results, then waits for the file
to change. Changed lines are applied to the document as edits, so only the
lines they affect are evaluated again.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 200*time.Millisecond, "minimum time between recalculations")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	path := filepath.Clean(args[0])
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}
	defer w.Close()
	// Editors often save by replacing the file, which drops a watch on the
	// file itself.
	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}
	doc := s.document()
	out := cmd.OutOrStdout()
	refresh := func() error {
		lines, err := readLines(path, nil)
		if err != nil {
			return fmt.Errorf("reading document: %w", err)
		}
		n, err := syncLines(cmd.Context(), doc, lines)
		if err != nil {
			return err
		}
		logger.Info("%s: %d lines changed", path, n)
		fmt.Fprintf(out, "==> %s <==\n", path)
		printResults(out, doc, s.out)
		return nil
	}
	if err := refresh(); err != nil {
		return err
	}
	lim := rate.NewLimiter(rate.Every(watchInterval), 1)
	return watchLoop(cmd.Context(), w, path, lim, refresh, cmd.ErrOrStderr())
}

// watchLoop calls refresh after each burst of writes to path until ctx is
// done.
func watchLoop(ctx context.Context, w *fsnotify.Watcher, path string, lim *rate.Limiter, refresh func() error, errs io.Writer) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if err := lim.Wait(ctx); err != nil {
				return nil
			}
			drain(w.Events)
			if err := refresh(); err != nil {
				fmt.Fprintln(errs, err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: %v", err)
		}
	}
}

// drain discards queued events, which the next refresh covers.
func drain(c <-chan fsnotify.Event) {
	for {
		select {
		case <-c:
		default:
			return
		}
	}
}

// syncLines turns a document into text by editing only the lines that
// differ, then recalculates. It returns the number of lines edited, inserted,
// or deleted.
func syncLines(ctx context.Context, doc *phyxcalc.Document, text []string) (int, error) {
	old := doc.Lines()
	p := 0
	for p < len(old) && p < len(text) && old[p] == text[p] {
		p++
	}
	s := 0
	for s < len(old)-p && s < len(text)-p && old[len(old)-1-s] == text[len(text)-1-s] {
		s++
	}
	om, nm := old[p:len(old)-s], text[p:len(text)-s]
	n := 0
	for i := 0; i < len(om) && i < len(nm); i++ {
		if om[i] == nm[i] {
			continue
		}
		if err := doc.Edit(p+i, nm[i]); err != nil {
			return n, err
		}
		n++
	}
	for i := len(om); i < len(nm); i++ {
		if err := doc.Insert(p+i, nm[i]); err != nil {
			return n, err
		}
		n++
	}
	for i := len(om) - 1; i >= len(nm); i-- {
		if err := doc.Delete(p + i); err != nil {
			return n, err
		}
		n++
	}
	return n, doc.Recalculate(ctx)
}
