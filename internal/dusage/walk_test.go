package dusage

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collect runs a traversal with opt and returns the emitted records
// together with the final report.
func collect(t *testing.T, opt Options) ([]Record, *Report, error) {
	t.Helper()

	var records []Record

	report, err := Run(context.Background(), opt, func(record Record) {
		records = append(records, record)
	}, nil)

	return records, report, err
}

// ownKB returns the accounted size of path itself.
func ownKB(t *testing.T, path string) int64 {
	t.Helper()

	info, err := os.Lstat(path)
	require.NoError(t, err)

	return statFor(info).usageKB
}

// treeKB sums the accounted size of everything under root using the
// standard library walker as an independent reference. It never follows
// symbolic links, mirroring the engine's lstat semantics.
func treeKB(t *testing.T, root string) int64 {
	t.Helper()

	var total int64

	err := filepath.WalkDir(root, func(path string, _ fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		total += ownKB(t, path)

		return nil
	})
	require.NoError(t, err)

	return total
}

// mustWrite creates a file of kb kilobytes.
func mustWrite(t *testing.T, path string, kb int) {
	t.Helper()

	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("x"), kb*1024), 0o644))
}

// recordIndex returns the position of path in records, or -1.
func recordIndex(records []Record, path string) int {
	for i, record := range records {
		if record.Path == path {
			return i
		}
	}

	return -1
}

// kbOf returns the usage reported for path, failing when it is absent.
func kbOf(t *testing.T, records []Record, path string) int64 {
	t.Helper()

	i := recordIndex(records, path)
	require.GreaterOrEqual(t, i, 0, "expected a record for %s", path)

	return records[i].UsageKB
}

// TestRunEmptyDirectory tests that an empty directory yields exactly its
// own record.
func TestRunEmptyDirectory(t *testing.T) {
	dir := t.TempDir()

	records, report, err := collect(t, Options{Path: dir})
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, dir, records[0].Path)
	assert.Equal(t, ownKB(t, dir), records[0].UsageKB)

	assert.Equal(t, records[0].UsageKB, report.TotalKB)
	assert.Equal(t, int64(1), report.Entries)
}

// TestRunDefaultModeReportsDirectoriesOnly tests that without All only
// directories are reported, while files still contribute to subtotals.
func TestRunDefaultModeReportsDirectoriesOnly(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.MkdirAll(dir+"/a/b", 0o755))
	mustWrite(t, dir+"/top.dat", 3)
	mustWrite(t, dir+"/a/mid.dat", 2)
	mustWrite(t, dir+"/a/b/leaf.dat", 1)

	records, report, err := collect(t, Options{Path: dir})
	require.NoError(t, err)

	paths := make([]string, 0, len(records))
	for _, record := range records {
		paths = append(paths, record.Path)
	}

	assert.ElementsMatch(t, []string{dir, dir + "/a", dir + "/a/b"}, paths, "only directories are reported")

	// Each subtotal is the directory's own usage plus its contents.
	kbB := ownKB(t, dir+"/a/b") + ownKB(t, dir+"/a/b/leaf.dat")
	kbA := ownKB(t, dir+"/a") + ownKB(t, dir+"/a/mid.dat") + kbB
	kbRoot := ownKB(t, dir) + ownKB(t, dir+"/top.dat") + kbA

	assert.Equal(t, kbB, kbOf(t, records, dir+"/a/b"))
	assert.Equal(t, kbA, kbOf(t, records, dir+"/a"))
	assert.Equal(t, kbRoot, kbOf(t, records, dir))

	assert.Equal(t, kbRoot, report.TotalKB)
	assert.Equal(t, treeKB(t, dir), report.TotalKB, "total matches an independent walk")
	assert.Equal(t, int64(6), report.Entries, "files count as entries even when unreported")
}

// TestRunAllModePostOrder tests that All reports every entry and that
// children always precede their directory.
func TestRunAllModePostOrder(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.MkdirAll(dir+"/sub/deep", 0o755))
	mustWrite(t, dir+"/sub/deep/x.dat", 1)
	mustWrite(t, dir+"/sub/y.dat", 1)
	mustWrite(t, dir+"/z.dat", 1)

	records, _, err := collect(t, Options{Path: dir, All: true})
	require.NoError(t, err)
	require.Len(t, records, 6)

	idx := func(path string) int {
		i := recordIndex(records, path)
		require.GreaterOrEqual(t, i, 0, "expected a record for %s", path)

		return i
	}

	assert.Less(t, idx(dir+"/sub/deep/x.dat"), idx(dir+"/sub/deep"))
	assert.Less(t, idx(dir+"/sub/deep"), idx(dir+"/sub"))
	assert.Less(t, idx(dir+"/sub/y.dat"), idx(dir+"/sub"))
	assert.Less(t, idx(dir+"/z.dat"), idx(dir))
	assert.Equal(t, dir, records[len(records)-1].Path, "root record comes last")
}

// TestRunFileRoot tests that a plain file root is reported even without
// All.
func TestRunFileRoot(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, dir+"/solo.dat", 2)

	records, report, err := collect(t, Options{Path: dir + "/solo.dat"})
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, dir+"/solo.dat", records[0].Path)
	assert.Equal(t, ownKB(t, dir+"/solo.dat"), records[0].UsageKB)
	assert.Equal(t, records[0].UsageKB, report.TotalKB)
}

// TestRunMissingRoot tests that a nonexistent root fails with an error
// naming the path, producing no records.
func TestRunMissingRoot(t *testing.T) {
	dir := t.TempDir()

	records, report, err := collect(t, Options{Path: dir + "/absent"})
	require.Error(t, err)

	assert.Nil(t, report)
	assert.Empty(t, records)

	var pathErr *fs.PathError

	require.ErrorAs(t, err, &pathErr)
	assert.Equal(t, dir+"/absent", pathErr.Path, "error names the failing path")
}

// TestRunMaxDepth tests that depth limiting suppresses deep records
// without changing any subtotal.
func TestRunMaxDepth(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.MkdirAll(dir+"/a/b", 0o755))
	mustWrite(t, dir+"/top.dat", 1)
	mustWrite(t, dir+"/a/mid.dat", 1)
	mustWrite(t, dir+"/a/b/leaf.dat", 1)

	full, fullReport, err := collect(t, Options{Path: dir, All: true})
	require.NoError(t, err)

	limited, limitedReport, err := collect(t, Options{Path: dir, All: true, MaxDepth: 1})
	require.NoError(t, err)

	paths := make([]string, 0, len(limited))
	for _, record := range limited {
		paths = append(paths, record.Path)
	}

	assert.ElementsMatch(t, []string{dir, dir + "/top.dat", dir + "/a"}, paths)

	assert.Equal(t, fullReport.TotalKB, limitedReport.TotalKB, "depth limiting never changes accounting")
	assert.Equal(t, fullReport.Entries, limitedReport.Entries)
	assert.Equal(t, kbOf(t, full, dir+"/a"), kbOf(t, limited, dir+"/a"), "subtotals include suppressed levels")
}

// TestRunRootPathReportedVerbatim tests that records extend the root
// argument exactly as given, including a trailing slash.
func TestRunRootPathReportedVerbatim(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.Mkdir(dir+"/sub", 0o755))
	mustWrite(t, dir+"/sub/f.dat", 1)

	records, _, err := collect(t, Options{Path: dir + "/sub/", All: true})
	require.NoError(t, err)

	paths := make([]string, 0, len(records))
	for _, record := range records {
		paths = append(paths, record.Path)
	}

	assert.ElementsMatch(t, []string{dir + "/sub/", dir + "/sub/f.dat"}, paths)
}

// TestRunRelativeRoot tests that relative roots produce relative
// records.
func TestRunRelativeRoot(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.Mkdir(dir+"/sub", 0o755))
	mustWrite(t, dir+"/sub/f.dat", 1)

	oldwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(oldwd) })

	records, _, err := collect(t, Options{Path: ".", All: true})
	require.NoError(t, err)

	paths := make([]string, 0, len(records))
	for _, record := range records {
		paths = append(paths, record.Path)
	}

	assert.ElementsMatch(t, []string{".", "./sub", "./sub/f.dat"}, paths)
}

// TestRunDefaultsToCurrentDirectory tests that an empty path means ".".
func TestRunDefaultsToCurrentDirectory(t *testing.T) {
	dir := t.TempDir()

	oldwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(oldwd) })

	records, _, err := collect(t, Options{})
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, ".", records[0].Path)
}

// TestJoinChild tests child path construction.
func TestJoinChild(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		dir  string
		elem string
		want string
	}{
		{"plain", "a", "b", "a/b"},
		{"nested", "./x", "y", "./x/y"},
		{"trailing slash", "a/", "b", "a/b"},
		{"filesystem root", "/", "etc", "/etc"},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := joinChild(tc.dir, tc.elem)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// TestJoinChildTooLong tests the constructed path length limit.
func TestJoinChildTooLong(t *testing.T) {
	t.Parallel()

	_, err := joinChild(strings.Repeat("a", maxPathLen), "b")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPathTooLong)

	// The limit itself is still allowed.
	almost, err := joinChild(strings.Repeat("a", maxPathLen-2), "b")
	require.NoError(t, err)
	assert.Len(t, almost, maxPathLen)
}
