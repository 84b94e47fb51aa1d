package dusage

import (
	"context"
	"io/fs"
	"os"

	"github.com/charlievieth/fastwalk"
)

// summarize computes the root total on fastwalk's worker pool and emits
// a single record for it. With only one observable record, visit order
// does not matter, which is what makes the parallel walk safe to use
// here. Hard links are still deduplicated through the shared registry.
func (w *walker) summarize(ctx context.Context) (int64, error) {
	info, err := os.Lstat(w.opt.Path)
	if err != nil {
		return 0, err
	}

	// A non-directory root needs no walk.
	if !info.IsDir() {
		md := statFor(info)

		w.acc.add(md.usageKB)
		w.emit(Record{Path: w.opt.Path, UsageKB: md.usageKB})

		return md.usageKB, nil
	}

	conf := &fastwalk.Config{
		Follow: false,
	}

	err = fastwalk.Walk(conf, w.opt.Path, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		info, err := entry.Info()
		if err != nil {
			return err
		}

		md := statFor(info)

		if info.Mode().IsRegular() && md.ok && md.nlink > 1 && w.reg.seen(md.id) {
			w.log.Debugf("skipping %s: inode %d on device %d already counted", path, md.id.Ino, md.id.Dev)

			return nil
		}

		w.acc.add(md.usageKB)

		return nil
	})
	if err != nil {
		return 0, err
	}

	_, total := w.acc.snapshot()

	w.emit(Record{Path: w.opt.Path, UsageKB: total})

	return total, nil
}
