package testutil

// StaticIDGenerator generates the same ID every time.
//
// Commands that name a run with a fresh UUIDv7 accept one of these in tests
// so that their output can be compared byte for byte.
//
// Thread-safety: StaticIDGenerator is stateless and safe for concurrent use.
type StaticIDGenerator struct {
	id string
}

// NewStaticIDGenerator creates a generator returning id. If id is empty,
// Generate() returns "test-run-default".
func NewStaticIDGenerator(id string) *StaticIDGenerator {
	if id == "" {
		id = "test-run-default"
	}
	return &StaticIDGenerator{id: id}
}

// Generate returns the fixed ID.
//
// Implements sim.IDGenerator.
func (g *StaticIDGenerator) Generate() string {
	return g.id
}
