// Package catalog holds the in-memory table registry the virtual
// machine operates on: table schemas and their row storage.
//
// What: a name -> column-list schema map plus a name -> row-slice
// table map, seeded at startup with a small demonstration table.
// How: mirrors the Python engine's Database class, which keeps
// schema and tables as two parallel dicts rather than one combined
// structure.
package catalog

import (
	"fmt"

	"github.com/coredb/coredb/internal/ast"
)

// Row is a set of column values keyed by name. It is a map, so it
// keeps no column order; use Catalog.ColumnNames for declaration order.
type Row map[string]ast.Value

// Catalog is the engine's table registry: schemas plus row storage.
// It is not safe for concurrent use; callers serialize access.
type Catalog struct {
	schema map[string][]ast.ColumnDef
	tables map[string][]Row
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		schema: make(map[string][]ast.ColumnDef),
		tables: make(map[string][]Row),
	}
}

func (c *Catalog) HasTable(name string) bool {
	_, ok := c.tables[name]
	return ok
}

func (c *Catalog) CreateTable(name string, columns []ast.ColumnDef) error {
	if c.HasTable(name) {
		return fmt.Errorf("table %q already exists", name)
	}
	c.schema[name] = columns
	c.tables[name] = []Row{}
	return nil
}

func (c *Catalog) DropTable(name string) error {
	if !c.HasTable(name) {
		return fmt.Errorf("table %q does not exist", name)
	}
	delete(c.schema, name)
	delete(c.tables, name)
	return nil
}

func (c *Catalog) Schema(name string) ([]ast.ColumnDef, bool) {
	cols, ok := c.schema[name]
	return cols, ok
}

// ColumnNames returns the schema's column names in declaration order.
func (c *Catalog) ColumnNames(name string) []string {
	cols := c.schema[name]
	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = col.Name
	}
	return names
}

// Rows returns the live row slice for a table so the VM cursor can
// delete through it in place.
func (c *Catalog) Rows(name string) ([]Row, bool) {
	rows, ok := c.tables[name]
	return rows, ok
}

func (c *Catalog) AppendRow(name string, row Row) {
	c.tables[name] = append(c.tables[name], row)
}

// DeleteRow removes the row at idx from table name, preserving the
// relative order of the remaining rows.
func (c *Catalog) DeleteRow(name string, idx int) {
	rows := c.tables[name]
	c.tables[name] = append(rows[:idx], rows[idx+1:]...)
}

// Seed preloads the demonstration "products" table. engine.Open calls
// it for every engine, so the CLI and the network front end always
// start with this table.
func (c *Catalog) Seed() {
	columns := []ast.ColumnDef{
		{Name: "product_id", Type: ast.ColInt, Constraints: []ast.Constraint{ast.PrimaryKey}},
		{Name: "name", Type: ast.ColText},
		{Name: "price", Type: ast.ColReal},
		{Name: "stock", Type: ast.ColInt},
	}
	_ = c.CreateTable("products", columns)
	c.AppendRow("products", Row{
		"product_id": ast.IntValue(1),
		"name":       ast.TextValue("Widget"),
		"price":      ast.RealValue(9.99),
		"stock":      ast.IntValue(100),
	})
	c.AppendRow("products", Row{
		"product_id": ast.IntValue(2),
		"name":       ast.TextValue("Gadget"),
		"price":      ast.RealValue(19.99),
		"stock":      ast.IntValue(50),
	})
	c.AppendRow("products", Row{
		"product_id": ast.IntValue(3),
		"name":       ast.TextValue("Gizmo"),
		"price":      ast.RealValue(14.99),
		"stock":      ast.IntValue(75),
	})
}
