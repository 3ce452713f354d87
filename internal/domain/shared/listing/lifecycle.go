package listing

// Lifecycle is a module's closed status enum. Order is the stage progression
// used for progress bars and advance; Other holds valid statuses that sit
// outside it (lost, blocked, overdue...). Neither guards transitions.
type Lifecycle struct {
	Order []string
	Other []string
}

// Statuses lists every valid status, progression first.
func (l Lifecycle) Statuses() []string {
	out := make([]string, 0, len(l.Order)+len(l.Other))
	out = append(out, l.Order...)
	return append(out, l.Other...)
}

// Valid reports whether status belongs to the enum.
func (l Lifecycle) Valid(status string) bool {
	return indexOf(l.Order, status) >= 0 || indexOf(l.Other, status) >= 0
}

// Next returns the stage after status. The last stage is its own successor.
// ok is false when status is not part of the progression.
func (l Lifecycle) Next(status string) (next string, ok bool) {
	i := indexOf(l.Order, status)
	if i < 0 {
		return "", false
	}
	if i == len(l.Order)-1 {
		return status, true
	}
	return l.Order[i+1], true
}

// Progress is the percentage of the progression reached at status, 0 when
// status is outside it.
func (l Lifecycle) Progress(status string) int {
	i := indexOf(l.Order, status)
	if i < 0 {
		return 0
	}
	return (i + 1) * 100 / len(l.Order)
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}
