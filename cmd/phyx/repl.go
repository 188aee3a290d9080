package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/zephyrtronium/phyxcalc"
	"github.com/zephyrtronium/phyxcalc/internal/format"
	"github.com/zephyrtronium/phyxcalc/internal/logger"
)

const (
	historyFile = ".phyx_history"
	prompt      = "phyx> "
)

var replCmd = &cobra.Command{
	Use:   "repl [file]",
	Short: "Start an interactive session",
	Long: `Starts an interactive session. Each entered line is appended to a
document and evaluated. If a file is given, its lines start the document.

Commands:
  :list            show the document with results
  :edit N text     replace line N and recalculate what depends on it
  :del N           delete line N
  :info name       describe a symbol
  :recalc          evaluate every line again
  :clear           forget all definitions until the next recalculation
  :reset           start a new document
  :quit            exit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	r := &repl{doc: s.document(), s: s, w: cmd.OutOrStdout()}
	if len(args) > 0 {
		lines, err := readLines(args[0], cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading document: %w", err)
		}
		if err := r.doc.Load(cmd.Context(), lines); err != nil {
			return err
		}
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetWordCompleter(r.complete)
	hist := ""
	if home, err := os.UserHomeDir(); err == nil {
		hist = filepath.Join(home, historyFile)
		if f, err := os.Open(hist); err == nil {
			ln.ReadHistory(f)
			f.Close()
		}
	}
	defer func() {
		if hist == "" {
			return
		}
		if f, err := os.Create(hist); err == nil {
			ln.WriteHistory(f)
			f.Close()
		}
	}()

	ctx := cmd.Context()
	for {
		line, err := ln.Prompt(prompt)
		switch {
		case errors.Is(err, liner.ErrPromptAborted):
			continue
		case errors.Is(err, io.EOF):
			fmt.Fprintln(r.w)
			return nil
		case err != nil:
			return err
		}
		if strings.TrimSpace(line) != "" {
			ln.AppendHistory(line)
		}
		if r.handle(ctx, line) {
			return nil
		}
	}
}

// repl is the state of an interactive session apart from line editing.
type repl struct {
	doc *phyxcalc.Document
	s   *session
	w   io.Writer
}

// handle runs one line of input. It reports whether the session should end.
func (r *repl) handle(ctx context.Context, line string) bool {
	t := strings.TrimSpace(line)
	if !strings.HasPrefix(t, ":") {
		r.append(ctx, line)
		return false
	}
	cmd, arg, _ := strings.Cut(t[1:], " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "q", "quit", "exit":
		return true
	case "list", "l":
		printResults(r.w, r.doc, r.s.out)
	case "info", "i":
		r.info(arg)
	case "recalc":
		if err := r.doc.RecalculateAll(ctx); err != nil {
			fmt.Fprintln(r.w, err)
			return false
		}
		printResults(r.w, r.doc, r.s.out)
	case "clear":
		r.doc.ClearVariables()
	case "reset":
		if err := r.doc.Load(ctx, nil); err != nil {
			fmt.Fprintln(r.w, err)
		}
	case "edit", "e":
		n, text, _ := strings.Cut(arg, " ")
		i, err := r.lineArg(n)
		if err == nil {
			err = r.doc.Edit(i, text)
		}
		r.recalc(ctx, err)
	case "del", "d":
		i, err := r.lineArg(arg)
		if err == nil {
			err = r.doc.Delete(i)
		}
		r.recalc(ctx, err)
	default:
		fmt.Fprintf(r.w, "unknown command :%s\n", cmd)
	}
	return false
}

// lineArg parses a 1-based line number.
func (r *repl) lineArg(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad line number %q", s)
	}
	return n - 1, nil
}

func (r *repl) recalc(ctx context.Context, err error) {
	if err == nil {
		err = r.doc.Recalculate(ctx)
	}
	if err != nil {
		fmt.Fprintln(r.w, err)
		return
	}
	printResults(r.w, r.doc, r.s.out)
}

// append adds a line to the end of the document and shows its result.
func (r *repl) append(ctx context.Context, line string) {
	n := r.doc.Len()
	if err := r.doc.Insert(n, line); err != nil {
		fmt.Fprintln(r.w, err)
		return
	}
	if err := r.doc.Recalculate(ctx); err != nil {
		fmt.Fprintln(r.w, err)
		return
	}
	res, ok := r.doc.Result(n)
	if !ok {
		return
	}
	if s := format.Result(res, r.s.out); s != "" {
		fmt.Fprintln(r.w, s)
	}
}

func (r *repl) info(name string) {
	if name == "" {
		fmt.Fprintln(r.w, "usage: :info name")
		return
	}
	d, err := r.doc.Describe(name)
	if err != nil {
		fmt.Fprintf(r.w, "%s: %v\n", name, err)
		return
	}
	fmt.Fprintln(r.w, d)
}

// complete completes the identifier under the cursor with symbol and unit
// names. pos counts runes.
func (r *repl) complete(line string, pos int) (head string, completions []string, tail string) {
	rs := []rune(line)
	start := pos
	for start > 0 {
		c := rs[start-1]
		if c != '_' && c != '°' && !unicode.IsLetter(c) && !unicode.IsDigit(c) {
			break
		}
		start--
	}
	head, tail = string(rs[:start]), string(rs[pos:])
	word := string(rs[start:pos])
	if word == "" {
		return head, nil, tail
	}
	n := r.doc.Len()
	names := r.doc.Context(n).Env().Names(n)
	names = append(names, r.s.reg.Units()...)
	for _, name := range names {
		if strings.HasPrefix(name, word) {
			completions = append(completions, name)
		}
	}
	logger.Debug("complete %q: %d names", word, len(completions))
	return head, completions, tail
}
