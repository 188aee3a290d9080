package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zephyrtronium/phyxcalc"
	"github.com/zephyrtronium/phyxcalc/internal/format"
)

var infoLine int

var infoCmd = &cobra.Command{
	Use:   "info file name",
	Short: "Describe a symbol defined by a document",
	Long: `Describes a variable, constant, function, or unit as seen from the end of a
document, or from before --line if it is given. Builtins and prefixed units
can be described as well.`,
	Args: cobra.ExactArgs(2),
	RunE: runInfo,
}

var unitsCmd = &cobra.Command{
	Use:   "units",
	Short: "List the known units and prefixes",
	Args:  cobra.NoArgs,
	RunE:  runUnits,
}

func init() {
	infoCmd.Flags().IntVar(&infoLine, "line", 0, "describe the symbol as seen before this 1-based line")
	rootCmd.AddCommand(infoCmd, unitsCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	lines, err := readLines(args[0], cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("reading document: %w", err)
	}
	doc := s.document()
	if err := doc.Load(cmd.Context(), lines); err != nil {
		return err
	}
	line := doc.Len()
	if infoLine > 0 {
		line = infoLine - 1
	}
	d, err := doc.DescribeAt(args[1], line)
	if err != nil {
		return fmt.Errorf("%s: %w", args[1], err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), d)
	return nil
}

func runUnits(cmd *cobra.Command, _ []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "UNIT\tDIMENSION\tSCALE\tPREFIXABLE")
	for _, name := range s.reg.Units() {
		u, _ := s.reg.Unit(name)
		scale := strconv.FormatFloat(u.Scale(), 'g', -1, 64)
		if u.IsAffine() {
			scale += " + " + strconv.FormatFloat(u.Offset(), 'g', -1, 64)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", name, u.Dim(), scale, u.Prefixable())
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "PREFIX\tFACTOR")
	o := format.Default()
	for _, p := range s.reg.Prefixes() {
		fmt.Fprintf(w, "%s\t%s\n", p.Name, format.Number(phyxcalc.NewFraction(p.Factor), o))
	}
	return w.Flush()
}
