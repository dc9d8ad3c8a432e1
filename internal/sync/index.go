package sync

// EntityIndex maps the two lookup keys of an entity name (literal and
// normalized) to its canonical ID. One index exists per entity kind per sync
// run; entries are never removed during a run.
type EntityIndex struct {
	literal    map[string]string
	normalized map[string]string
}

// NewEntityIndex creates an empty index.
func NewEntityIndex() *EntityIndex {
	return &EntityIndex{
		literal:    make(map[string]string),
		normalized: make(map[string]string),
	}
}

// Seed registers a persisted record. The first writer wins for each key so
// pre-existing records keep priority over later duplicates in the seed set.
func (x *EntityIndex) Seed(name, id string) {
	lit := LiteralKey(name)
	if _, ok := x.literal[lit]; !ok {
		x.literal[lit] = id
	}
	norm := NormalizeName(name)
	if _, ok := x.normalized[norm]; !ok {
		x.normalized[norm] = id
	}
}

// Insert registers an entity created during the run under both keys.
func (x *EntityIndex) Insert(name, id string) {
	x.literal[LiteralKey(name)] = id
	x.normalized[NormalizeName(name)] = id
}

// Lookup resolves a name to a canonical ID, trying the literal key first so
// exact persisted names take priority, then the normalized key.
func (x *EntityIndex) Lookup(name string) (string, bool) {
	if id, ok := x.literal[LiteralKey(name)]; ok {
		return id, true
	}
	if id, ok := x.normalized[NormalizeName(name)]; ok {
		return id, true
	}
	return "", false
}

// Len returns the number of distinct literal keys.
func (x *EntityIndex) Len() int {
	return len(x.literal)
}
