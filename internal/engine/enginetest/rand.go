package enginetest

// ScriptedRand replays fixed draws. Once exhausted, Float64 returns 0.999
// (so probability checks fail) and Intn returns 0.
type ScriptedRand struct {
	Floats []float64
	Ints   []int
}

func (r *ScriptedRand) Float64() float64 {
	if len(r.Floats) == 0 {
		return 0.999
	}
	v := r.Floats[0]
	r.Floats = r.Floats[1:]
	return v
}

func (r *ScriptedRand) Intn(n int) int {
	if len(r.Ints) == 0 || n <= 0 {
		return 0
	}
	v := r.Ints[0]
	r.Ints = r.Ints[1:]
	return v % n
}
