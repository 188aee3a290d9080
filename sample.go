package phyxcalc

import (
	"context"
	"errors"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// SampleRequest describes a sweep of an expression over one variable.
type SampleRequest struct {
	// Expr is the expression to evaluate at each point.
	Expr string
	// Var is the name of the swept variable.
	Var string
	// From and To bound the sweep, inclusive.
	From, To float64
	// Step is the distance between points of a linear sweep. If it is zero,
	// Count is used instead.
	Step float64
	// Count is the number of points. Logarithmic sweeps require it.
	Count int
	// Log spaces points evenly on a logarithmic scale.
	Log bool
	// Line is the line whose definitions the expression sees. For
	// Document.Sample, a negative line means the end of the document.
	Line int
	// Workers limits concurrent evaluations. Zero means GOMAXPROCS.
	Workers int
}

// Point is one sample. Non-finite values are passed through; Err is set for
// points that could not be evaluated, in which case Y is NaN.
type Point struct {
	X, Y float64
	// Unit is the unit of Y.
	Unit string
	Err  error
}

// maxSamples bounds the number of points in a sweep.
const maxSamples = 1 << 20

// ErrSampleRange is returned for sweeps with no valid points.
var ErrSampleRange = errors.New("phyxcalc: invalid sample range")

// xs computes the sample positions.
func (req SampleRequest) xs() ([]float64, error) {
	if !finite(req.From) || !finite(req.To) || !finite(req.Step) {
		return nil, ErrSampleRange
	}
	if req.Log {
		if req.From <= 0 || req.To <= 0 || req.Count < 2 || req.Count > maxSamples {
			return nil, ErrSampleRange
		}
		lo, hi := math.Log(req.From), math.Log(req.To)
		r := make([]float64, req.Count)
		for i := range r {
			r[i] = math.Exp(lo + (hi-lo)*float64(i)/float64(req.Count-1))
		}
		r[0], r[len(r)-1] = req.From, req.To
		return r, nil
	}
	if req.Step == 0 {
		switch {
		case req.Count == 1:
			return []float64{req.From}, nil
		case req.Count < 2 || req.Count > maxSamples:
			return nil, ErrSampleRange
		}
		r := make([]float64, req.Count)
		for i := range r {
			r[i] = req.From + (req.To-req.From)*float64(i)/float64(req.Count-1)
		}
		return r, nil
	}
	n := (req.To-req.From)/req.Step + 1e-9
	if n < 0 || n >= maxSamples {
		return nil, ErrSampleRange
	}
	r := make([]float64, int(n)+1)
	for i := range r {
		r[i] = req.From + req.Step*float64(i)
	}
	return r, nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Sample evaluates an expression at each point of a sweep, with the sweep
// variable bound in a copy of c. Points are evaluated concurrently and
// returned in order. Evaluation errors are reported per point; the returned
// error is for invalid requests and cancellation. The expression is parsed
// with opts.
func Sample(ctx context.Context, c *Context, req SampleRequest, opts ...ParseOption) ([]Point, error) {
	e, err := ParseExpr(req.Expr, opts...)
	if err != nil {
		return nil, err
	}
	xs, err := req.xs()
	if err != nil {
		return nil, err
	}
	pts := make([]Point, len(xs))
	g, ctx := errgroup.WithContext(ctx)
	w := req.Workers
	if w <= 0 {
		w = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(w)
	for i, x := range xs {
		if ctx.Err() != nil {
			break
		}
		i, x := i, x
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pts[i] = samplePoint(c, e, req.Var, x)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return pts, nil
}

func samplePoint(c *Context, e *Expr, name string, x float64) Point {
	p := Point{X: x, Y: math.NaN()}
	sc := c.Clone(SetVar(name, Value{Num: NewFloat(x, c.prec)}))
	v, err := sc.Eval(e)
	if err != nil {
		p.Err = err
		return p
	}
	if !v.Num.IsReal() {
		p.Err = ErrComplex
		return p
	}
	p.Y = v.Num.Float64()
	p.Unit = v.Unit.String()
	return p
}

// Sample evaluates an expression over a sweep using the document's current
// definitions and parse options. The sweep does not block edits.
func (d *Document) Sample(ctx context.Context, req SampleRequest) ([]Point, error) {
	line := req.Line
	if line < 0 {
		line = d.Len()
	}
	return Sample(ctx, d.Context(line), req, d.popts...)
}
