//go:build !windows

package dusage

import (
	"os"
	"syscall"
)

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

// statFor extracts identity and allocation data from info. st_blocks
// counts 512-byte units, so two blocks make one kilobyte; sparse files
// report what they occupy, not their apparent size.
func statFor(info os.FileInfo) metadata {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return metadata{usageKB: clusterKB(info.Size())}
	}

	return metadata{
		id:      FileID{Dev: uint64(st.Dev), Ino: uint64(st.Ino)},
		nlink:   uint64(st.Nlink),
		usageKB: int64(st.Blocks) / 2,
		ok:      true,
	}
}

// clusterKB approximates usage from the apparent size, rounded up to
// 4096-byte clusters. Only used when raw stat data is unavailable.
func clusterKB(size int64) int64 {
	if size <= 0 {
		return 0
	}

	const cluster = 4096

	return (size + cluster - 1) / cluster * cluster / 1024
}
