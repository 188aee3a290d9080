package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var evalStrict bool

var evalCmd = &cobra.Command{
	Use:   "eval [file...]",
	Short: "Evaluate documents and print each line with its result",
	Long: `Evaluates each file as a separate document and prints every line followed
by its result or error. With no files, or with "-", the document is read from
stdin.`,
	RunE: runEval,
}

func init() {
	evalCmd.Flags().BoolVar(&evalStrict, "strict", false, "fail if any line has an error")
	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"-"}
	}
	w := cmd.OutOrStdout()
	failed := 0
	for i, name := range args {
		if len(args) > 1 {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "==> %s <==\n", name)
		}
		n, err := evalFile(cmd, name)
		if err != nil {
			return err
		}
		failed += n
	}
	if evalStrict && failed > 0 {
		return fmt.Errorf("%d lines failed", failed)
	}
	return nil
}

// evalFile evaluates one document and prints it. It returns the number of
// lines that failed.
func evalFile(cmd *cobra.Command, name string) (int, error) {
	lines, err := readLines(name, cmd.InOrStdin())
	if err != nil {
		return 0, fmt.Errorf("reading document: %w", err)
	}
	s, err := newSession()
	if err != nil {
		return 0, err
	}
	doc := s.document()
	if err := doc.Load(cmd.Context(), lines); err != nil {
		return 0, err
	}
	return printResults(cmd.OutOrStdout(), doc, s.out), nil
}
