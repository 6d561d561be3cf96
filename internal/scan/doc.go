// Package scan searches byte ranges of a file for a literal alert marker.
//
// A Scanner reads the range in fixed-size chunks and carries the last
// len(marker)-1 bytes of each chunk into the next, so a marker that straddles
// a chunk boundary is still found while memory stays bounded by the chunk
// size.
package scan
