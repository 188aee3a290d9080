package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zephyrtronium/phyxcalc"
	"github.com/zephyrtronium/phyxcalc/internal/config"
	"github.com/zephyrtronium/phyxcalc/internal/format"
	"github.com/zephyrtronium/phyxcalc/internal/logger"
)

var flags struct {
	config    string
	verbose   bool
	prec      uint
	fractions bool
	hex       bool
	format    string
	digits    int
}

// cfg is the configuration after flag overrides. It is set before any
// command runs.
var cfg = config.Default()

var rootCmd = &cobra.Command{
	Use:   "phyx [file]",
	Short: "Evaluate calculator documents of physical quantities",
	Long: `phyx evaluates documents of unit-aware expressions, one per line.
Lines can declare variables (x = 4), constants (const g0 = 9.81 m/s^2),
functions (f(a) = a^2), and units (unit mph = 1 mi/h), and later lines can
use them. With no file, phyx reads the document from stdin, or starts an
interactive session when stdin is a terminal.`,
	Args:              cobra.MaximumNArgs(1),
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runRoot,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.config, "config", "", "config file (default is phyx/config.toml in the user config directory)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "log evaluation passes to stderr")
	pf.UintVar(&flags.prec, "prec", 64, "precision of real arithmetic in bits")
	pf.BoolVar(&flags.fractions, "fractions", true, "evaluate numbers as exact fractions")
	pf.BoolVar(&flags.hex, "hex", false, "accept 0x literals and show integers in hex")
	pf.StringVar(&flags.format, "format", "g", "number format: g, f, or e")
	pf.IntVar(&flags.digits, "digits", 15, "digits to show, or -1 for the shortest exact form")
}

// setup loads the config file and applies flags that were set explicitly.
func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(flags.verbose)
	logger.SetOutput(cmd.ErrOrStderr())
	path, err := configPath()
	if err != nil {
		return err
	}
	c, err := config.Load(path)
	if err != nil {
		return err
	}
	f := cmd.Flags()
	if f.Changed("prec") {
		c.Calc.Precision = flags.prec
	}
	if f.Changed("fractions") {
		c.Calc.Fractions = flags.fractions
	}
	if f.Changed("hex") {
		c.Calc.Hex, c.Output.Hex = flags.hex, flags.hex
	}
	if f.Changed("format") {
		c.Output.Format = flags.format
	}
	if f.Changed("digits") {
		c.Output.Digits = flags.digits
	}
	if err := c.Validate(); err != nil {
		return err
	}
	logger.Debug("config %s: %+v", path, c.Calc)
	cfg = c
	return nil
}

func configPath() (string, error) {
	if flags.config != "" {
		return flags.config, nil
	}
	return config.DefaultPath()
}

func runRoot(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && isTerminal(cmd.InOrStdin()) {
		return runRepl(cmd, nil)
	}
	name := "-"
	if len(args) > 0 {
		name = args[0]
	}
	_, err := evalFile(cmd, name)
	return err
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// session holds what every command needs to evaluate and show documents.
type session struct {
	reg *phyxcalc.Registry
	out format.Options
}

func newSession() (*session, error) {
	reg := phyxcalc.NewRegistry()
	if err := cfg.Apply(reg); err != nil {
		return nil, fmt.Errorf("applying config: %w", err)
	}
	return &session{reg: reg, out: cfg.FormatOptions(reg)}, nil
}

func (s *session) document() *phyxcalc.Document {
	return phyxcalc.NewDocument(
		phyxcalc.WithContext(cfg.ContextOptions(phyxcalc.WithRegistry(s.reg))...),
		phyxcalc.WithParse(cfg.ParseOptions()...),
	)
}

// readLines reads a document from a file, or from in when name is "-".
func readLines(name string, in io.Reader) ([]string, error) {
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		in = f
	}
	var lines []string
	sc := bufio.NewScanner(in)
	sc.Buffer(nil, 1<<20)
	for sc.Scan() {
		lines = append(lines, strings.TrimSuffix(sc.Text(), "\r"))
	}
	return lines, sc.Err()
}

// printResults writes each line with its result and returns the number of
// lines that failed.
func printResults(w io.Writer, doc *phyxcalc.Document, o format.Options) int {
	lines := doc.Lines()
	failed := 0
	for i, r := range doc.Results() {
		s := format.Result(r, o)
		switch {
		case r.Err != nil:
			failed++
			fmt.Fprintf(w, "%s ! %s\n", lines[i], s)
		case s == "":
			fmt.Fprintln(w, lines[i])
		default:
			fmt.Fprintf(w, "%s = %s\n", lines[i], s)
		}
	}
	return failed
}
