package storage

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/coredb/coredb/internal/dberrors"
)

// DefaultMaxKeys is the sanity cap on a deserialized node's key
// count used when a BTree is constructed without an explicit limit.
const DefaultMaxKeys = 1024

// node layout: [0] is_leaf byte, [1:5] key_count u32 LE, [5:5+4*n] keys
// u32 LE, zero-padded to the page size.
type node struct {
	keys   []uint32
	isLeaf bool
}

func (n *node) serialize(pageSize int) ([]byte, error) {
	size := 5 + 4*len(n.keys)
	if size > pageSize {
		return nil, dberrors.NewBTreeError("serializing node", fmt.Errorf("node exceeds page size"))
	}
	buf := make([]byte, pageSize)
	if n.isLeaf {
		buf[0] = 1
	}
	binary.LittleEndian.PutUint32(buf[1:5], uint32(len(n.keys)))
	for i, k := range n.keys {
		off := 5 + 4*i
		binary.LittleEndian.PutUint32(buf[off:off+4], k)
	}
	return buf, nil
}

func deserializeNode(data []byte, maxKeys int) (*node, error) {
	if len(data) < 5 {
		return nil, dberrors.NewBTreeError("deserializing node", fmt.Errorf("page too small"))
	}
	isLeaf := data[0] != 0
	keyCount := binary.LittleEndian.Uint32(data[1:5])
	if keyCount > uint32(maxKeys) {
		return nil, dberrors.NewBTreeError("deserializing node", fmt.Errorf("unrealistic key count: %d", keyCount))
	}
	need := 5 + 4*int(keyCount)
	if len(data) < need {
		return nil, dberrors.NewBTreeError("deserializing node", fmt.Errorf("page too small for declared key count"))
	}
	keys := make([]uint32, keyCount)
	for i := range keys {
		off := 5 + 4*i
		keys[i] = binary.LittleEndian.Uint32(data[off : off+4])
	}
	return &node{keys: keys, isLeaf: isLeaf}, nil
}

// BTree is a root-only B-tree façade: every key lives in a single
// sorted root node persisted at page 0, matching the teaching-grade
// original it is grounded on. It trades branching for simplicity
// while keeping the page codec and pager wiring a real multi-level
// tree would also need.
type BTree struct {
	pager       *Pager
	rootPageNum int
	root        *node
	maxKeys     int
}

// NewBTree loads the root node from page 0 of pager, using
// DefaultMaxKeys as the deserialization sanity cap. If page 0 cannot
// be read or decoded as a node, it writes a fresh empty leaf root
// instead. An all-zero page decodes as an empty node and is loaded.
func NewBTree(pager *Pager) (*BTree, error) {
	return NewBTreeWithLimit(pager, DefaultMaxKeys)
}

// NewBTreeWithLimit is NewBTree with an explicit key-count sanity cap,
// wired to Config.BTreeMaxKeys by the engine.
func NewBTreeWithLimit(pager *Pager, maxKeys int) (*BTree, error) {
	t := &BTree{pager: pager, rootPageNum: 0, maxKeys: maxKeys}

	n, err := t.loadNode(t.rootPageNum)
	if err != nil {
		t.root = &node{isLeaf: true}
		if werr := t.writeNode(t.rootPageNum, t.root); werr != nil {
			return nil, werr
		}
		return t, nil
	}
	t.root = n
	return t, nil
}

func (t *BTree) loadNode(pageNum int) (*node, error) {
	page, err := t.pager.GetPage(pageNum)
	if err != nil {
		return nil, err
	}
	n, err := deserializeNode(page.Data, t.maxKeys)
	if err != nil {
		return nil, dberrors.NewBTreeError(fmt.Sprintf("loading node from page %d", pageNum), err)
	}
	return n, nil
}

func (t *BTree) writeNode(pageNum int, n *node) error {
	data, err := n.serialize(t.pager.PageSize())
	if err != nil {
		return err
	}
	page, err := t.pager.GetPage(pageNum)
	if err != nil {
		return err
	}
	page.Data = data
	if err := t.pager.MarkDirty(page); err != nil {
		return dberrors.NewBTreeError(fmt.Sprintf("writing node to page %d", pageNum), err)
	}
	return nil
}

// Insert adds key to the root node's sorted key list, a no-op if the
// key is already present. The root's keys are only updated once the
// new node has been serialized and written; a page-size overflow (or
// any other write failure) leaves the in-memory root untouched.
func (t *BTree) Insert(key uint32) error {
	for _, k := range t.root.keys {
		if k == key {
			return nil
		}
	}
	keys := make([]uint32, len(t.root.keys), len(t.root.keys)+1)
	copy(keys, t.root.keys)
	keys = append(keys, key)
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	candidate := &node{keys: keys, isLeaf: t.root.isLeaf}
	if err := t.writeNode(t.rootPageNum, candidate); err != nil {
		return err
	}
	t.root = candidate
	return nil
}

// Search reports whether key is present in the root node.
func (t *BTree) Search(key uint32) bool {
	for _, k := range t.root.keys {
		if k == key {
			return true
		}
	}
	return false
}
