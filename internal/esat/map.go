package esat

// Every operation in this package is a scalar pure function; these
// helpers give callers the batch form. Each output element depends only
// on the corresponding input element(s), so a caller may partition a
// batch across goroutines and get identical results.

const badLength = "esat: slice lengths do not match"

// Map applies f element-wise and returns a new slice of the same length.
func Map(xs []float64, f func(float64) float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = f(x)
	}
	return out
}

// Map2 applies f element-wise over two slices of equal length.
// It panics if the lengths differ.
func Map2(xs, ys []float64, f func(x, y float64) float64) []float64 {
	if len(xs) != len(ys) {
		panic(badLength)
	}
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = f(x, ys[i])
	}
	return out
}

// Map3 applies f element-wise over three slices of equal length.
// It panics if the lengths differ.
func Map3(xs, ys, zs []float64, f func(x, y, z float64) float64) []float64 {
	if len(xs) != len(ys) || len(xs) != len(zs) {
		panic(badLength)
	}
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = f(x, ys[i], zs[i])
	}
	return out
}
