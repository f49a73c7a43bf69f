package reconcile

// TreatedSet holds the season ids already marked in this run. It only grows.
type TreatedSet map[string]struct{}

// Add records a season as marked.
func (t TreatedSet) Add(id string) {
	t[id] = struct{}{}
}

// Has reports whether the season was already marked in this run.
func (t TreatedSet) Has(id string) bool {
	_, ok := t[id]
	return ok
}
