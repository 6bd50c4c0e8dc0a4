package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/bulletml/internal/ir"
	"github.com/roach88/bulletml/internal/parser"
	"github.com/roach88/bulletml/internal/sim"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

const testDocument = `<bulletml>
<action label="top">
	<repeat><times>5</times><action>
		<fire>
			<direction type="absolute">$rand * 360</direction>
			<speed>1 + $rank</speed>
			<bulletRef label="drift"/>
		</fire>
		<wait>3</wait>
	</action></repeat>
</action>
<bullet label="drift">
	<action>
		<changeDirection><direction type="relative">90</direction><term>10</term></changeDirection>
		<wait>6</wait>
		<vanish/>
	</action>
</bullet>
</bulletml>`

// recordTestRun simulates testDocument and stores it as runID.
func recordTestRun(t *testing.T, s *Store, runID string, frames int, opts ...sim.Option) Run {
	t.Helper()
	ctx := context.Background()

	doc, err := parser.ParseString(testDocument)
	require.NoError(t, err)
	table, err := ir.NewTable(doc)
	require.NoError(t, err)

	w, err := sim.New(table, opts...)
	require.NoError(t, err)

	run := Run{
		ID:       runID,
		DocHash:  ir.MustDocumentHash(doc),
		Document: testDocument,
		Frames:   frames,
		Config:   w.Config(),
	}
	run.Seq, err = s.WriteRun(ctx, run)
	require.NoError(t, err)

	rec, err := s.RunRecorder(ctx, runID)
	require.NoError(t, err)
	w, err = sim.New(table, append(opts, sim.WithRecorder(rec))...)
	require.NoError(t, err)
	require.NoError(t, w.Run(ctx, frames))
	return run
}
