//go:build windows

package dusage

import "os"

// metadata holds the platform fields a visit needs: identity, link count
// and allocated size.
type metadata struct {
	id      FileID
	nlink   uint64
	usageKB int64
	// ok reports whether identity data was available. Without it,
	// hard-link deduplication is disabled for the entry.
	ok bool
}

// statFor approximates usage on Windows from the apparent size, since
// block allocation and inode identity are not exposed through os.Lstat.
// ok stays false, so hard links are counted once per path here.
func statFor(info os.FileInfo) metadata {
	return metadata{usageKB: clusterKB(info.Size())}
}

// clusterKB rounds size up to 4096-byte clusters and converts to
// kilobytes.
func clusterKB(size int64) int64 {
	if size <= 0 {
		return 0
	}

	const cluster = 4096

	return (size + cluster - 1) / cluster * cluster / 1024
}
