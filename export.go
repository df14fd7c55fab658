package scopecap

import (
	"fmt"
	"io"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

// WriteNPY writes the waveform as an (n, 2) float64 NumPy array whose rows
// are (time, volts) pairs, readable with numpy.load. The JSON document stays
// the durable format; this is a convenience for notebook analysis.
func (w Waveform) WriteNPY(out io.Writer) error {
	n := len(w.Times)
	if n == 0 {
		return fmt.Errorf("empty waveform")
	}
	m := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		m.Set(i, 0, w.Times[i])
		m.Set(i, 1, w.Volts[i])
	}
	return npyio.Write(out, m)
}
