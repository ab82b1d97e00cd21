package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCompareCmd(t *testing.T, rootOpts *RootOptions, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewCompareCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestCompare_Text(t *testing.T) {
	out, err := runCompareCmd(t, &RootOptions{Format: "text"}, "testdata/fruit.txt")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 13)
	assert.Equal(t, []string{"ITEM", "FORWARD", "HALL", "EXACT", "MATCHING"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"elderberry", "{5}", "{5}", "{5}", "{5}"}, strings.Fields(lines[5]))
	assert.Equal(t, []string{"kiwi", "{9,10}", "{9,10}", "{9,10}", "{9,10}"}, strings.Fields(lines[9]))
	assert.Equal(t, []string{"=", "answer", "{3,5,8,9,10}", "{3,5,8,9,10}", "{3,5,8,9,10}", "{3,5,8,9,10}"}, strings.Fields(lines[11]))
	assert.Equal(t, []string{"=", "status", "ok", "ok", "ok", "ok"}, strings.Fields(lines[12]))
}

func TestCompare_StrategiesDiffer(t *testing.T) {
	// a and b use up {1,2}; forward checking cannot see it.
	input := "3\nc\n2\n1 2\na b\n1 2 3\na b c\n"
	cmd := NewCompareCommand(&RootOptions{Format: "json"})
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetArgs([]string{"--strategies", "forward,matching"})
	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string      `json:"status"`
		Data   compareData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []string{"a", "b", "c"}, resp.Data.Items)
	require.Len(t, resp.Data.Strategies, 2)

	forward, matching := resp.Data.Strategies[0], resp.Data.Strategies[1]
	assert.Equal(t, "forward", forward.Strategy)
	assert.Equal(t, "underconstrained", forward.Status)
	assert.Equal(t, []int{1, 2, 3}, forward.Slots)

	assert.Equal(t, "matching", matching.Strategy)
	assert.Equal(t, "ok", matching.Status)
	assert.Equal(t, []int{3}, matching.Slots)
}

func TestCompare_FailingStrategy(t *testing.T) {
	out, err := runCompareCmd(t, &RootOptions{Format: "text"},
		"--strategies", "exact,matching", "--step-budget", "1", "testdata/fruit.txt")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	status := strings.Fields(lines[len(lines)-1])
	assert.Equal(t, []string{"=", "status", ErrCodeSearchLimit, "ok"}, status)
	assert.Equal(t, []string{"apple", "-", "{1}"}, strings.Fields(lines[1]))
}

func TestCompare_Malformed(t *testing.T) {
	out, err := runCompareCmd(t, &RootOptions{Format: "text"}, "testdata/malformed.txt")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, strings.HasPrefix(out, "Error [E002]: "), out)
}

func TestCompare_Errors(t *testing.T) {
	_, err := runCompareCmd(t, &RootOptions{Format: "text"}, "--strategies", "forward,psychic", "testdata/fruit.txt")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeConfig)

	_, err = runCompareCmd(t, &RootOptions{Format: "text"}, "testdata/missing.txt")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeInput)

	_, err = runCompareCmd(t, &RootOptions{Format: "text"}, "a.txt", "b.txt")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
