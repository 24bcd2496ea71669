package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mandrykarina/GC/internal/formatter"
	"github.com/mandrykarina/GC/internal/scenario"
	"github.com/mandrykarina/GC/pkg/compression"
	"github.com/mandrykarina/GC/pkg/model"
)

// execute runs the root command with args in a scratch directory and
// returns what the command wrote to its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	resetFlags()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags restores every flag to its default and clears its changed
// state, so flag groups do not see values from an earlier test.
func resetFlags() {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	rootCmd.PersistentFlags().VisitAll(reset)
	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(reset)
	}
}

func TestGenerateCommand_Stdout(t *testing.T) {
	out, err := execute(t, "generate", "--type", "cycle", "-n", "4", "-s", "16")
	require.NoError(t, err)

	sc, err := scenario.Parse([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, "cycle", sc.Name)
	assert.Equal(t, 4, sc.CountOps(model.OpAllocate))
}

func TestGenerateCommand_UnknownCollectionType(t *testing.T) {
	_, err := execute(t, "generate", "--collection-type", "generational")
	assert.Error(t, err)
}

func TestRunCommand_StatsBlock(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tree.json.zst")

	_, err := execute(t, "generate", "--type", "tree", "-n", "7", "-s", "10", "--collection-type", "mark_sweep", "-o", path)
	require.NoError(t, err)

	out, err := execute(t, "run", "-f", path, "--stats-block")
	require.NoError(t, err)

	blocks, err := formatter.ParseStatsBlocks(bytes.NewBufferString(out))
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, "MS", blocks[0].Type)
	assert.Equal(t, 7, blocks[0].ObjectsCreated)
	assert.Equal(t, 0, blocks[0].ObjectsLeft)
	assert.Equal(t, uint64(70), blocks[0].MemoryFreed)
}

func TestRunCommand_MissingFile(t *testing.T) {
	_, err := execute(t, "run", "-f", "missing.json")
	assert.Error(t, err)
}

func TestCompareCommand_CycleLeak(t *testing.T) {
	out, err := execute(t, "compare", "--preset", "cycle_leak", "-n", "5", "-s", "8", "--stats-block")
	require.NoError(t, err)

	blocks, err := formatter.ParseStatsBlocks(bytes.NewBufferString(out))
	require.NoError(t, err)
	require.Len(t, blocks, 2)

	assert.Equal(t, "RC", blocks[0].Type)
	assert.Equal(t, 5, blocks[0].ObjectsLeft)
	assert.Equal(t, uint64(40), blocks[0].MemoryLeaked)

	assert.Equal(t, "MS", blocks[1].Type)
	assert.Equal(t, 0, blocks[1].ObjectsLeft)
	assert.Equal(t, uint64(40), blocks[1].MemoryFreed)
}

func TestCompareCommand_Directory(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "generate", "--type", "linear", "-n", "3", "-s", "8", "-o", filepath.Join(dir, "a.json"))
	require.NoError(t, err)
	_, err = execute(t, "generate", "--type", "cycle", "-n", "2", "-s", "8", "-o", filepath.Join(dir, "b.json.gz"))
	require.NoError(t, err)

	out, err := execute(t, "compare", "-d", dir, "--stats-block", "--collectors", "mark_sweep")
	require.NoError(t, err)

	blocks, err := formatter.ParseStatsBlocks(bytes.NewBufferString(out))
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, "linear", blocks[0].Scenario)
	assert.Equal(t, "cycle", blocks[1].Scenario)
}

func TestCompareCommand_GzipOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cmp.json.gz")
	_, err := execute(t, "compare", "--preset", "linear", "-n", "3", "-s", "8", "--collectors", "mark_sweep", "-o", path)
	require.NoError(t, err)

	packed, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, compression.TypeGzip, compression.DetectType(packed))

	plain, err := compression.AutoDecompress(packed)
	require.NoError(t, err)
	var cmp model.Comparison
	require.NoError(t, json.Unmarshal(plain, &cmp))
	assert.Equal(t, "linear", cmp.ScenarioName)
	require.Len(t, cmp.Results, 1)
}

func TestCompareCommand_RejectsFileAndPreset(t *testing.T) {
	_, err := execute(t, "compare", "-f", "x.json", "--preset", "tree")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "mark_sweep")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b "))
	assert.Empty(t, splitList(""))

	n, err := parseInts("1, 2,3")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, n)

	_, err = parseInts("1,x")
	assert.Error(t, err)
}
