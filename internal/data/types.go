package data

// Dataset is a PU feature matrix with its labels: 1 for labeled positive,
// 0 for the unlabeled mixture. Truth, when known, is the hidden class of
// each instance and is only populated for synthetic data.
type Dataset struct {
    Names []string    `json:"names,omitempty"`
    X     [][]float64 `json:"features"`
    Y     []int       `json:"labels"`
    Truth []int       `json:"truth,omitempty"`
}

func (d *Dataset) Len() int { return len(d.X) }

func (d *Dataset) Dims() int {
    if len(d.X) == 0 { return 0 }
    return len(d.X[0])
}

// Head returns the first n instances, sharing rows with d.
func (d *Dataset) Head(n int) *Dataset {
    if n > len(d.X) { n = len(d.X) }
    h := &Dataset{Names: d.Names, X: d.X[:n], Y: d.Y[:n]}
    if len(d.Truth) >= n { h.Truth = d.Truth[:n] }
    return h
}

func (d *Dataset) Counts() (labeled, unlabeled int) {
    for _, v := range d.Y {
        if v == 1 { labeled++ } else { unlabeled++ }
    }
    return
}
