package experiment

import "gonum.org/v1/gonum/stat"

// WindowSize is the number of most recent episode returns a run keeps
const WindowSize = 100

// Window is a rolling window over the most recent episode returns
type Window struct {
	returns []float64
	next    int
	size    int
}

// NewWindow returns an empty Window holding at most size returns
func NewWindow(size int) *Window {
	return &Window{returns: make([]float64, 0, size), size: size}
}

// Add adds a return to the window, evicting the oldest one if the
// window is full
func (w *Window) Add(ret float64) {
	if len(w.returns) < w.size {
		w.returns = append(w.returns, ret)
		return
	}
	w.returns[w.next] = ret
	w.next = (w.next + 1) % w.size
}

// Len returns the number of returns in the window
func (w *Window) Len() int {
	return len(w.returns)
}

// MeanStdDev returns the mean and population standard deviation of the
// returns in the window. Both are 0 for an empty window.
func (w *Window) MeanStdDev() (mean, std float64) {
	if len(w.returns) == 0 {
		return 0, 0
	}
	return stat.PopMeanStdDev(w.returns, nil)
}
