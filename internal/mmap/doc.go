// Package mmap maps local input files read-only into memory.
//
// Point files and PPM images are parsed front to back once, so a mapping is
// usually advised as AccessSequential right after Open:
//
//	m, err := mmap.Open("photo.ppm")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.AccessSequential)
//	r := io.NewSectionReader(m, 0, int64(m.Size()))
//
// Unix systems use mmap(2) and madvise(2). Windows uses
// CreateFileMapping/MapViewOfFile and ignores access hints.
//
// A Mapping is safe for concurrent reads. Close is idempotent; slices
// returned by Bytes must not be used after it.
package mmap
