package workspace

// DefaultBaseZIndex is where a fresh focus stack starts counting.
const DefaultBaseZIndex = 100

// FocusStack hands out monotonically increasing z-indices. Each store owns one.
type FocusStack struct {
	top int
}

// NewFocusStack returns a stack whose next value is base+1.
func NewFocusStack(base int) *FocusStack {
	return &FocusStack{top: base}
}

// Next increments the counter and returns the new top value.
func (f *FocusStack) Next() int {
	f.top++
	return f.top
}

// Top returns the highest value handed out so far.
func (f *FocusStack) Top() int {
	return f.top
}

// Raise moves the counter up to z if it is currently below it.
func (f *FocusStack) Raise(z int) {
	if z > f.top {
		f.top = z
	}
}
