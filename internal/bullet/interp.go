package bullet

// interp linearly moves a value from start to target over term frames.
type interp struct {
	start   float64
	target  float64
	term    int
	elapsed int
	active  bool
}

// begin starts an interpolation from current. A non-positive term yields
// the target immediately and leaves the slot idle.
func (i *interp) begin(current, target float64, term int) float64 {
	if term <= 0 {
		*i = interp{}
		return target
	}
	*i = interp{start: current, target: target, term: term, active: true}
	return current
}

// step advances one frame and returns the new value. The final frame lands
// exactly on target.
func (i *interp) step() float64 {
	i.elapsed++
	if i.elapsed >= i.term {
		i.active = false
		return i.target
	}
	return i.start + (i.target-i.start)*float64(i.elapsed)/float64(i.term)
}

func (i *interp) cancel() {
	*i = interp{}
}
