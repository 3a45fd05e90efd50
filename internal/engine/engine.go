// Package engine wires the tokenizer, parser, planner, and virtual
// machine to a catalog and a paged storage substrate, exposing a
// single Execute entry point.
//
// What: Engine.Execute runs one SQL statement end to end — tokenize,
// parse, build a Command, compile to an opcode Program, run it
// against the in-memory catalog — and tags the run with a UUID that is
// logged and returned as Result.ExecutionID, which the network front
// end passes back to its clients.
// How: mirrors the teacher's compile-then-run split in
// internal/engine/compile.go and exec.go, and the Python
// DatabaseEngine's constructor wiring (tokenizer/parser/codegen/
// planner/vm all built once against a shared schema registry).
// Why: one Engine owns both the in-memory catalog and the on-disk
// B-tree/pager so Close can flush and sync them together.
package engine

import (
	"log"

	"github.com/google/uuid"

	"github.com/coredb/coredb/internal/catalog"
	"github.com/coredb/coredb/internal/config"
	"github.com/coredb/coredb/internal/dberrors"
	"github.com/coredb/coredb/internal/parser"
	"github.com/coredb/coredb/internal/plan"
	"github.com/coredb/coredb/internal/storage"
	"github.com/coredb/coredb/internal/token"
	"github.com/coredb/coredb/internal/vm"
)

// Engine executes SQL statements against an in-memory catalog backed
// by a paged B-tree file. It is not safe for concurrent use; callers
// serialize access (the network front end does this with a single
// worker queue).
type Engine struct {
	cfg     config.Config
	catalog *catalog.Catalog
	gen     *plan.Generator
	vm      *vm.VM

	file  *storage.File
	pager *storage.Pager
	btree *storage.BTree
}

// Open constructs an Engine backed by dbFile, preseeding the catalog
// with the demonstration "products" table and opening (or creating)
// the on-disk B-tree file described by cfg.
func Open(dbFile string, cfg config.Config) (*Engine, error) {
	cat := catalog.New()
	cat.Seed()

	f, err := storage.OpenFile(dbFile, cfg.PageSize)
	if err != nil {
		return nil, err
	}
	pager := storage.NewPager(f, cfg.PagerCapacity)
	tree, err := storage.NewBTreeWithLimit(pager, cfg.BTreeMaxKeys)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &Engine{
		cfg:     cfg,
		catalog: cat,
		gen:     plan.NewGenerator(),
		vm:      vm.New(cat),
		file:    f,
		pager:   pager,
		btree:   tree,
	}, nil
}

// Result is the outcome of one Execute call: the rows produced (for
// SELECT), a run identifier for correlating logs, and the compiled
// program that was run (for CLI/debug inspection).
type Result struct {
	ExecutionID string
	Rows        []catalog.Row
	Program     plan.Program
}

// Execute tokenizes, parses, plans, and runs a single SQL statement.
func (e *Engine) Execute(sql string) (*Result, error) {
	execID := uuid.New().String()

	tokens, err := token.NewLexer(sql).Tokenize()
	if err != nil {
		return nil, err
	}

	stmt, err := parser.New(tokens).Parse()
	if err != nil {
		return nil, err
	}

	cmd, err := plan.Build(stmt)
	if err != nil {
		return nil, err
	}

	prog, err := e.gen.Generate(cmd)
	if err != nil {
		return nil, err
	}

	log.Printf("execution %s: running %d-instruction program against table %q", execID, len(prog), cmd.TableName())

	rows, err := e.vm.Execute(prog)
	if err != nil {
		return nil, err
	}

	return &Result{ExecutionID: execID, Rows: rows, Program: prog}, nil
}

// DebugBTreeInsert inserts a key directly into the on-disk B-tree,
// bypassing SQL entirely; it stands in for the original
// implementation's INSERT_BTEST diagnostic. The CLI does not expose it.
func (e *Engine) DebugBTreeInsert(key uint32) error {
	return e.btree.Insert(key)
}

// DebugBTreeSearch reports whether key is present in the B-tree.
func (e *Engine) DebugBTreeSearch(key uint32) bool {
	return e.btree.Search(key)
}

// DebugPagerResident returns a summary of the pages currently cached
// by the pager, for CLI/diagnostic inspection.
func (e *Engine) DebugPagerResident() []storage.PageSummary {
	return e.pager.DebugPages()
}

// Checkpoint flushes every dirty page to disk without closing the
// underlying file, so a long-running process can persist writes on a
// schedule rather than only at shutdown.
func (e *Engine) Checkpoint() error {
	if err := e.pager.FlushAll(); err != nil {
		return dberrors.NewStorageError("checkpointing pager", err)
	}
	return nil
}

// Close flushes all dirty pages and closes the underlying file; the
// file is closed even when the flush fails. It wraps any failure as a
// StorageError, matching the teacher's pattern
// of tagging the outermost failure with the layer that surfaced it.
func (e *Engine) Close() error {
	flushErr := e.pager.FlushAll()
	closeErr := e.file.Close()
	if flushErr != nil {
		return dberrors.NewStorageError("flushing pager on close", flushErr)
	}
	return closeErr
}
