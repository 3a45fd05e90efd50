// Package vm implements the opcode virtual machine: a stack-based
// interpreter over plan.Program that reads and mutates a catalog.Catalog.
//
// What: one interpreter loop with a value stack, a program counter,
// a cursor over the currently open table, and a label index resolved
// once per Execute call.
// How: mirrors the Python VirtualMachine.execute dispatch loop opcode
// for opcode, including its PC-before-increment jump arithmetic
// (jumping to labels[target]-1 so the loop's PC++ lands exactly on
// the label) and its "pop stack in reverse column order" INSERT_ROW
// binding.
// Why: keeping the interpreter a single flat switch, with no opcode
// calling back into the compiler, keeps execution semantics easy to
// audit against the generated program.
package vm

import (
	"fmt"

	"github.com/coredb/coredb/internal/ast"
	"github.com/coredb/coredb/internal/catalog"
	"github.com/coredb/coredb/internal/dberrors"
	"github.com/coredb/coredb/internal/plan"
)

// VM is a single-use-per-Execute interpreter; its scan cursor state
// is reset at the start of every Execute call.
type VM struct {
	catalog *catalog.Catalog

	stack []ast.Value

	labels map[string]int
	pc     int

	currentTable string
	cursorRows   []catalog.Row
	cursorIndex  int
	currentRow   catalog.Row
	currentIdx   int
	hasRow       bool
}

// New returns a VM bound to the given catalog. The catalog outlives
// any single Execute call.
func New(cat *catalog.Catalog) *VM {
	return &VM{catalog: cat}
}

func (m *VM) push(v ast.Value) { m.stack = append(m.stack, v) }

func (m *VM) pop() (ast.Value, error) {
	if len(m.stack) == 0 {
		return ast.Value{}, fmt.Errorf("stack underflow")
	}
	top := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return top, nil
}

// Execute runs a compiled program to completion and returns the rows
// emitted along the way, in emission order.
func (m *VM) Execute(prog plan.Program) ([]catalog.Row, error) {
	m.pc = 0
	m.stack = nil
	m.currentTable = ""
	m.cursorRows = nil
	m.cursorIndex = 0
	m.currentRow = nil
	m.hasRow = false

	m.labels = make(map[string]int, len(prog))
	for idx, o := range prog {
		if o.Mnemonic == plan.Label {
			m.labels[o.Args[0].(string)] = idx
		}
	}

	var results []catalog.Row

	for m.pc < len(prog) {
		o := prog[m.pc]

		var err error
		switch o.Mnemonic {
		case plan.OpenTable:
			err = m.openTable(o.Args[0].(string))
		case plan.CreateTable:
			err = m.createTable(o.Args[0].(string), o.Args[1].([]ast.ColumnDef))
		case plan.DropTable:
			err = m.dropTable(o.Args[0].(string))
		case plan.InsertRow:
			err = m.insertRow(o.Args[0].(string))
		case plan.ScanStart:
			err = m.scanStart()
		case plan.ScanNext:
			err = m.scanNext()
			if err == nil && !m.hasRow {
				return results, nil
			}
		case plan.ScanEnd:
			m.scanEnd()
		case plan.LoadConst:
			m.push(o.Args[0].(ast.Value))
		case plan.LoadColumn:
			err = m.loadColumn(o.Args[0].(string))
		case plan.CompareEq, plan.CompareNeq, plan.CompareLt, plan.CompareLte, plan.CompareGt, plan.CompareGte:
			err = m.compare(o.Mnemonic)
		case plan.JumpIfFalse:
			err = m.jumpIfFalse(o.Args[0].(string))
		case plan.Jump:
			target, ok := m.labels[o.Args[0].(string)]
			if !ok {
				err = fmt.Errorf("undefined label %q", o.Args[0].(string))
			} else {
				m.pc = target - 1
			}
		case plan.Label:
			// no-op marker, resolved up front
		case plan.EmitRow:
			var row catalog.Row
			row, err = m.emitRow(o.Args[0].([]string))
			if err == nil {
				results = append(results, row)
			}
		case plan.UpdateColumn:
			err = m.updateColumn(o.Args[0].(string))
		case plan.DeleteRow:
			err = m.deleteRow()
		default:
			err = fmt.Errorf("unknown opcode %q", o.Mnemonic)
		}

		if err != nil {
			return nil, dberrors.WrapExecError(string(o.Mnemonic), err)
		}
		m.pc++
	}

	return results, nil
}

func (m *VM) openTable(name string) error {
	if !m.catalog.HasTable(name) {
		return fmt.Errorf("table %q not found", name)
	}
	m.currentTable = name
	return nil
}

func (m *VM) createTable(name string, columns []ast.ColumnDef) error {
	return m.catalog.CreateTable(name, columns)
}

func (m *VM) dropTable(name string) error {
	return m.catalog.DropTable(name)
}

func (m *VM) insertRow(table string) error {
	if !m.catalog.HasTable(table) {
		return fmt.Errorf("table %q does not exist", table)
	}
	names := m.catalog.ColumnNames(table)
	if len(m.stack) < len(names) {
		return fmt.Errorf("not enough values for insertion")
	}
	row := make(catalog.Row, len(names))
	for i := len(names) - 1; i >= 0; i-- {
		v, err := m.pop()
		if err != nil {
			return err
		}
		row[names[i]] = v
	}
	m.catalog.AppendRow(table, row)
	return nil
}

func (m *VM) scanStart() error {
	if m.currentTable == "" {
		return fmt.Errorf("no table opened for scanning")
	}
	rows, _ := m.catalog.Rows(m.currentTable)
	m.cursorRows = rows
	m.cursorIndex = 0
	m.currentRow = nil
	m.hasRow = false
	return nil
}

// scanNext advances the cursor and pushes whether a row was found.
// The generated loop's JUMP_IF_FALSE immediately following SCAN_NEXT
// consumes a true result; a false result also ends Execute right after
// SCAN_NEXT, so a plan without the loop/label skeleton still stops.
func (m *VM) scanNext() error {
	if m.cursorIndex >= len(m.cursorRows) {
		m.currentRow = nil
		m.hasRow = false
		m.push(ast.BoolValue(false))
		return nil
	}
	m.currentRow = m.cursorRows[m.cursorIndex]
	m.currentIdx = m.cursorIndex
	m.cursorIndex++
	m.hasRow = true
	m.push(ast.BoolValue(true))
	return nil
}

func (m *VM) scanEnd() {
	m.cursorRows = nil
	m.currentRow = nil
	m.hasRow = false
}

func (m *VM) loadColumn(name string) error {
	if !m.hasRow {
		return fmt.Errorf("no active row for column access")
	}
	v, ok := m.currentRow[name]
	if !ok {
		return fmt.Errorf("column %q not found", name)
	}
	m.push(v)
	return nil
}

func (m *VM) compare(mnemonic plan.Mnemonic) error {
	right, err := m.pop()
	if err != nil {
		return err
	}
	left, err := m.pop()
	if err != nil {
		return err
	}

	switch mnemonic {
	case plan.CompareEq:
		m.push(ast.BoolValue(left.Equal(right)))
		return nil
	case plan.CompareNeq:
		m.push(ast.BoolValue(!left.Equal(right)))
		return nil
	}

	cmp, ok := left.Compare(right)
	if !ok {
		// Mismatched or unordered kinds compare false, never error.
		m.push(ast.BoolValue(false))
		return nil
	}
	switch mnemonic {
	case plan.CompareLt:
		m.push(ast.BoolValue(cmp < 0))
	case plan.CompareLte:
		m.push(ast.BoolValue(cmp <= 0))
	case plan.CompareGt:
		m.push(ast.BoolValue(cmp > 0))
	case plan.CompareGte:
		m.push(ast.BoolValue(cmp >= 0))
	default:
		return fmt.Errorf("unsupported comparison %q", mnemonic)
	}
	return nil
}

func (m *VM) jumpIfFalse(label string) error {
	v, err := m.pop()
	if err != nil {
		return fmt.Errorf("no condition to jump on")
	}
	if !v.B {
		target, ok := m.labels[label]
		if !ok {
			return fmt.Errorf("undefined label %q", label)
		}
		m.pc = target - 1
	}
	return nil
}

func (m *VM) emitRow(columns []string) (catalog.Row, error) {
	if !m.hasRow {
		return nil, fmt.Errorf("no row to emit")
	}
	if len(columns) == 1 && columns[0] == "*" {
		out := make(catalog.Row, len(m.currentRow))
		for k, v := range m.currentRow {
			out[k] = v
		}
		return out, nil
	}
	out := make(catalog.Row, len(columns))
	for _, c := range columns {
		v, ok := m.currentRow[c]
		if !ok {
			return nil, fmt.Errorf("column %q not found", c)
		}
		out[c] = v
	}
	return out, nil
}

func (m *VM) updateColumn(name string) error {
	if !m.hasRow {
		return fmt.Errorf("no active row to update")
	}
	if _, ok := m.currentRow[name]; !ok {
		return fmt.Errorf("column %q not found", name)
	}
	v, err := m.pop()
	if err != nil {
		return fmt.Errorf("no value to update with")
	}
	m.currentRow[name] = v
	return nil
}

func (m *VM) deleteRow() error {
	if !m.hasRow || m.currentTable == "" {
		return fmt.Errorf("no active row to delete")
	}
	m.catalog.DeleteRow(m.currentTable, m.currentIdx)
	// catalog.DeleteRow already left-shifted the backing array our
	// cursor aliases; only the length needs to shrink here, or the
	// shift would be applied a second time and corrupt the cursor.
	m.cursorRows = m.cursorRows[:len(m.cursorRows)-1]
	m.cursorIndex--
	m.hasRow = false
	return nil
}
