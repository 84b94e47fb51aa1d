// Package dusage implements disk usage accounting for file trees.
//
// It walks a root path depth-first, sums allocated blocks per directory
// in kilobytes, skips additional hard links to already-counted files
// through an inode registry, and emits one usage record per accounted
// entry in post-order. A parallel fastwalk-based engine serves summarize
// mode, where only the root total is observable.
package dusage
