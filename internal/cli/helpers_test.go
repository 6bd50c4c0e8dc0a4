package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const twoShotsPath = "../harness/testdata/documents/two_shots.xml"

const undefinedRefDoc = `<bulletml>
<action label="top">
  <fire><bulletRef label="nobullet"/></fire>
</action>
</bulletml>`

const malformedDoc = `<bulletml><action label="top"><wait>1</wait></bulletml>`

// writeFile writes content to dir/name and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// executeRoot runs the root command with args and returns stdout and stderr.
func executeRoot(args ...string) (string, string, error) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
