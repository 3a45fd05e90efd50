// Package storage implements the paged file substrate underneath the
// B-tree: a fixed-page-size file abstraction, an LRU write-back pager,
// and a binary B-tree node codec plus a root-only insert/search façade.
//
// Grounded on the Python backend package (os_interface.py, pager.py,
// b_tree.py); restyled after the teacher's pager package, which keeps
// page layout constants and (de)serialization in their own files
// separate from cache management.
package storage

import (
	"fmt"
	"os"

	"github.com/coredb/coredb/internal/dberrors"
)

// DefaultPageSize is the page size used when a Config does not
// override it.
const DefaultPageSize = 4096

// File is a single-file, fixed-page-size random-access store. The
// first page always exists: opening a file that does not yet exist
// creates it with one zero-filled page.
type File struct {
	path     string
	pageSize int
	f        *os.File
}

// OpenFile opens path for paged access, creating it with a single
// zero-filled page if it does not already exist.
func OpenFile(path string, pageSize int) (*File, error) {
	_, statErr := os.Stat(path)
	existed := statErr == nil

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, dberrors.NewStorageError("opening file", err)
	}

	if !existed {
		zeroPage := make([]byte, pageSize)
		if _, err := f.WriteAt(zeroPage, 0); err != nil {
			f.Close()
			return nil, dberrors.NewStorageError("writing initial page", err)
		}
		if err := f.Sync(); err != nil {
			f.Close()
			return nil, dberrors.NewStorageError("syncing initial page", err)
		}
	}

	return &File{path: path, pageSize: pageSize, f: f}, nil
}

func (sf *File) Close() error {
	if sf.f == nil {
		return nil
	}
	err := sf.f.Close()
	sf.f = nil
	if err != nil {
		return dberrors.NewStorageError("closing file", err)
	}
	return nil
}

// ReadPage reads the full contents of the given absolute page number.
func (sf *File) ReadPage(pageNumber int) ([]byte, error) {
	buf := make([]byte, sf.pageSize)
	offset := int64(pageNumber) * int64(sf.pageSize)
	if _, err := sf.f.ReadAt(buf, offset); err != nil {
		return nil, dberrors.NewStorageError(fmt.Sprintf("reading page %d", pageNumber), err)
	}
	return buf, nil
}

// WritePage writes data, which must be exactly PageSize() bytes, to
// the given absolute page number and fsyncs the file.
func (sf *File) WritePage(pageNumber int, data []byte) error {
	if len(data) != sf.pageSize {
		return dberrors.NewStorageError(fmt.Sprintf("writing page %d", pageNumber),
			fmt.Errorf("data must be exactly %d bytes, got %d", sf.pageSize, len(data)))
	}
	offset := int64(pageNumber) * int64(sf.pageSize)
	if _, err := sf.f.WriteAt(data, offset); err != nil {
		return dberrors.NewStorageError(fmt.Sprintf("writing page %d", pageNumber), err)
	}
	if err := sf.f.Sync(); err != nil {
		return dberrors.NewStorageError(fmt.Sprintf("syncing page %d", pageNumber), err)
	}
	return nil
}

// NumPages reports how many pages the file currently spans, counting a
// trailing partial page as a whole page.
func (sf *File) NumPages() (int, error) {
	info, err := sf.f.Stat()
	if err != nil {
		return 0, dberrors.NewStorageError("statting file", err)
	}
	size := info.Size()
	return int((size + int64(sf.pageSize) - 1) / int64(sf.pageSize)), nil
}

func (sf *File) PageSize() int { return sf.pageSize }
