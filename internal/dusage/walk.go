package dusage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// maxPathLen bounds constructed child paths, matching PATH_MAX on Linux.
const maxPathLen = 4096

// ErrPathTooLong is returned when a constructed child path exceeds
// maxPathLen.
var ErrPathTooLong = errors.New("path name too long")

// walker carries the state shared by one traversal: the options, the
// hard-link registry, the live counters, the record emitter and the
// logger.
type walker struct {
	opt  Options
	reg  *registry
	acc  *accumulator
	emit func(Record)
	log  *logrus.Logger
}

// walk accounts path and everything below it, returning the subtree's
// usage in kilobytes. The first error aborts the whole traversal;
// records already emitted stand.
//
// Symbolic links are never followed: each is accounted as the link
// object itself. Directory records are emitted after their contents,
// which yields the post-order report.
func (w *walker) walk(ctx context.Context, path string, depth int) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	info, err := os.Lstat(path)
	if err != nil {
		return 0, err
	}

	md := statFor(info)

	if !info.IsDir() {
		// An additional hard link to an already-counted file is
		// skipped entirely: no record, no contribution to the parent.
		if info.Mode().IsRegular() && md.ok && md.nlink > 1 {
			if w.reg.contains(md.id) {
				w.log.Debugf("skipping %s: inode %d on device %d already counted", path, md.id.Ino, md.id.Dev)

				return 0, nil
			}

			w.reg.insert(md.id)
		}

		w.acc.add(md.usageKB)

		// A non-directory root is always reported, even without All.
		w.report(path, md.usageKB, depth, w.opt.All || depth == 0)

		return md.usageKB, nil
	}

	w.acc.add(md.usageKB)

	total := md.usageKB

	// The handle is closed before recursing, so open directories never
	// stack up with the recursion depth.
	dir, err := os.Open(path)
	if err != nil {
		return 0, err
	}

	entries, err := dir.ReadDir(-1)

	_ = dir.Close()

	if err != nil {
		return 0, err
	}

	for _, entry := range entries {
		child, err := joinChild(path, entry.Name())
		if err != nil {
			return 0, err
		}

		kb, err := w.walk(ctx, child, depth+1)
		if err != nil {
			return 0, err
		}

		total += kb
	}

	w.report(path, total, depth, true)

	return total, nil
}

// report emits one record unless the mode or the depth limit suppresses
// it. Suppression never affects accounting.
func (w *walker) report(path string, kb int64, depth int, enabled bool) {
	if !enabled {
		return
	}

	if w.opt.MaxDepth > 0 && depth > w.opt.MaxDepth {
		return
	}

	w.emit(Record{Path: path, UsageKB: kb})
}

// joinChild appends name to dir with a slash. The parent is kept exactly
// as given, so emitted paths always extend the root argument verbatim.
func joinChild(dir, name string) (string, error) {
	child := dir + "/" + name
	if strings.HasSuffix(dir, "/") {
		child = dir + name
	}

	if len(child) > maxPathLen {
		return "", fmt.Errorf("%w: %s", ErrPathTooLong, child)
	}

	return child, nil
}
