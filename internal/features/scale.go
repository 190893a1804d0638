package features

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/tabloom-cli/internal/config"
	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

// scale standardises (population std) or min-max scales a numeric column.
// Constant columns scale to 0.
func scale(c *table.Column, method string) *table.Column {
	vals := make([]float64, c.Len())
	for i := range vals {
		vals[i], _ = c.Float(i)
	}
	if len(vals) == 0 {
		return c
	}
	var shift, div float64
	if method == config.ScaleMinMax {
		shift = floats.Min(vals)
		div = floats.Max(vals) - shift
	} else {
		mean, variance := stat.PopMeanVariance(vals, nil)
		shift, div = mean, math.Sqrt(variance)
	}
	if div == 0 {
		div = 1
	}
	floats.AddConst(-shift, vals)
	floats.Scale(1/div, vals)
	return table.NumericColumn(c.Name, vals, nil)
}
