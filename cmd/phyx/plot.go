package main

import (
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zephyrtronium/phyxcalc"
	"github.com/zephyrtronium/phyxcalc/internal/logger"
)

var plotReq phyxcalc.SampleRequest

var plotCmd = &cobra.Command{
	Use:   "plot [file]",
	Short: "Sample an expression over a range and print CSV",
	Long: `Evaluates an expression at points across a range of one variable and
prints the points as CSV with columns x and y. The expression sees the
definitions of the document, if one is given. Points that cannot be evaluated
have an empty y.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlot,
}

func init() {
	f := plotCmd.Flags()
	f.StringVar(&plotReq.Expr, "expr", "", "expression to sample")
	f.StringVar(&plotReq.Var, "var", "x", "name of the swept variable")
	f.Float64Var(&plotReq.From, "from", 0, "start of the range")
	f.Float64Var(&plotReq.To, "to", 1, "end of the range")
	f.Float64Var(&plotReq.Step, "step", 0, "distance between points")
	f.IntVar(&plotReq.Count, "count", 101, "number of points when --step is not given")
	f.BoolVar(&plotReq.Log, "log", false, "space points logarithmically")
	f.IntVar(&plotReq.Workers, "workers", 0, "concurrent evaluations (default GOMAXPROCS)")
	plotCmd.MarkFlagRequired("expr")
	rootCmd.AddCommand(plotCmd)
}

func runPlot(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	doc := s.document()
	if len(args) > 0 {
		lines, err := readLines(args[0], cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading document: %w", err)
		}
		if err := doc.Load(cmd.Context(), lines); err != nil {
			return err
		}
	}
	req := plotReq
	req.Line = -1
	pts, err := doc.Sample(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("sampling %s: %w", req.Expr, err)
	}
	w := csv.NewWriter(cmd.OutOrStdout())
	y := "y"
	if len(pts) > 0 && pts[0].Unit != "" {
		y = "y (" + pts[0].Unit + ")"
	}
	w.Write([]string{"x", y})
	for _, p := range pts {
		row := []string{strconv.FormatFloat(p.X, 'g', -1, 64), ""}
		if p.Err != nil {
			logger.Warn("%s = %g: %v", req.Var, p.X, p.Err)
		} else {
			row[1] = strconv.FormatFloat(p.Y, 'g', -1, 64)
		}
		w.Write(row)
	}
	w.Flush()
	return w.Error()
}
