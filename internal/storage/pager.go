package storage

import (
	"container/list"

	"github.com/coredb/coredb/internal/dberrors"
)

// Page is a single cached page: its absolute number, its raw bytes,
// and whether it has been modified since it was last flushed.
type Page struct {
	Number int
	Data   []byte
	Dirty  bool
}

// Pager is an LRU, write-back page cache sitting in front of a File.
// Reads populate the cache; writes go through MarkDirty and are only
// flushed to disk on eviction or FlushAll. Like the Python OrderedDict
// cache it is modeled on, get and mark-dirty both bump a page to the
// most-recently-used end.
type Pager struct {
	file     *File
	capacity int

	order *list.List            // front = LRU, back = MRU
	elems map[int]*list.Element // page number -> list element
	pages map[int]*Page         // page number -> page, indexed by elems' values
}

// NewPager returns a pager backed by file with room for capacity
// resident pages.
func NewPager(file *File, capacity int) *Pager {
	return &Pager{
		file:     file,
		capacity: capacity,
		order:    list.New(),
		elems:    make(map[int]*list.Element),
		pages:    make(map[int]*Page),
	}
}

// GetPage returns a page from cache, loading it from disk on a miss.
func (p *Pager) GetPage(pageNumber int) (*Page, error) {
	if elem, ok := p.elems[pageNumber]; ok {
		p.order.MoveToBack(elem)
		return p.pages[pageNumber], nil
	}

	data, err := p.file.ReadPage(pageNumber)
	if err != nil {
		return nil, err
	}
	page := &Page{Number: pageNumber, Data: data}
	if err := p.cachePage(page); err != nil {
		return nil, err
	}
	return page, nil
}

// MarkDirty flags a page as modified and refreshes its LRU position.
func (p *Pager) MarkDirty(page *Page) error {
	page.Dirty = true
	return p.cachePage(page)
}

// FlushAll writes every dirty resident page to disk and empties the
// cache.
func (p *Pager) FlushAll() error {
	for e := p.order.Front(); e != nil; e = e.Next() {
		pageNumber := e.Value.(int)
		if err := p.flushPage(p.pages[pageNumber]); err != nil {
			return err
		}
	}
	p.order.Init()
	p.elems = make(map[int]*list.Element)
	p.pages = make(map[int]*Page)
	return nil
}

func (p *Pager) flushPage(page *Page) error {
	if !page.Dirty {
		return nil
	}
	if err := p.file.WritePage(page.Number, page.Data); err != nil {
		return err
	}
	page.Dirty = false
	return nil
}

// cachePage inserts or refreshes page's LRU position, evicting the
// least-recently-used resident page (flushing it first if dirty) when
// the cache is at capacity.
func (p *Pager) cachePage(page *Page) error {
	if elem, ok := p.elems[page.Number]; ok {
		p.pages[page.Number] = page
		p.order.MoveToBack(elem)
		return nil
	}

	if len(p.pages) >= p.capacity {
		oldest := p.order.Front()
		if oldest == nil {
			return dberrors.NewStorageError("evicting page", nil)
		}
		oldestNumber := oldest.Value.(int)
		if err := p.flushPage(p.pages[oldestNumber]); err != nil {
			return err
		}
		p.order.Remove(oldest)
		delete(p.elems, oldestNumber)
		delete(p.pages, oldestNumber)
	}

	elem := p.order.PushBack(page.Number)
	p.elems[page.Number] = elem
	p.pages[page.Number] = page
	return nil
}

// NumPages delegates to the underlying file's on-disk page count.
func (p *Pager) NumPages() (int, error) { return p.file.NumPages() }

// PageSize delegates to the underlying file's page size.
func (p *Pager) PageSize() int { return p.file.PageSize() }

// PageSummary reports a resident page's number and dirty state for
// test and CLI introspection, without any console rendering attached.
type PageSummary struct {
	Number int
	Dirty  bool
}

// DebugPages returns a summary of the pages currently resident in the
// cache, from least- to most-recently-used.
func (p *Pager) DebugPages() []PageSummary {
	out := make([]PageSummary, 0, p.order.Len())
	for e := p.order.Front(); e != nil; e = e.Next() {
		num := e.Value.(int)
		out = append(out, PageSummary{Number: num, Dirty: p.pages[num].Dirty})
	}
	return out
}
