package plan

import (
	"testing"

	"github.com/coredb/coredb/internal/ast"
)

func TestGenerateCreateTable(t *testing.T) {
	cmd := &CreateTableCommand{Table: "users", Columns: []ast.ColumnDef{{Name: "id", Type: ast.ColInt}}}
	prog, err := NewGenerator().Generate(cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prog) != 1 || prog[0].Mnemonic != CreateTable {
		t.Fatalf("expected single CREATE_TABLE op, got %+v", prog)
	}
}

func TestGenerateInsert(t *testing.T) {
	cmd := &InsertCommand{Table: "users", Values: []ast.Value{ast.IntValue(1), ast.TextValue("Alice")}}
	prog, err := NewGenerator().Generate(cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prog) != 3 {
		t.Fatalf("expected 3 ops, got %d: %+v", len(prog), prog)
	}
	if prog[0].Mnemonic != LoadConst || prog[1].Mnemonic != LoadConst {
		t.Errorf("expected two LOAD_CONST ops, got %+v", prog[:2])
	}
	if prog[2].Mnemonic != InsertRow || prog[2].Args[0] != "users" {
		t.Errorf("expected INSERT_ROW users, got %+v", prog[2])
	}
}

func TestGenerateUpdateHasExactlyOneCompareAndUpdateColumn(t *testing.T) {
	cmd := &UpdateCommand{
		Table:   "users",
		Updates: []ast.Assignment{{Column: "name", Value: ast.TextValue("Bob")}},
		Where:   &ast.Condition{Column: "id", Operator: ast.OpEq, Value: ast.IntValue(1)},
	}
	prog, err := NewGenerator().Generate(cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	compares, updates := 0, 0
	for _, o := range prog {
		if o.Mnemonic == CompareEq {
			compares++
		}
		if o.Mnemonic == UpdateColumn {
			updates++
		}
	}
	if compares != 1 || updates != 1 {
		t.Fatalf("expected exactly one COMPARE_EQ and one UPDATE_COLUMN, got %d/%d in %+v", compares, updates, prog)
	}
}

func TestGenerateSelectLabelsAreUniquePerInvocation(t *testing.T) {
	g := NewGenerator()
	cmd := &SelectTableCommand{Table: "users", Columns: []string{"*"}}
	p1, _ := g.Generate(cmd)
	p2, _ := g.Generate(cmd)

	labels := map[string]bool{}
	for _, prog := range []Program{p1, p2} {
		for _, o := range prog {
			if o.Mnemonic == Label {
				name := o.Args[0].(string)
				if labels[name] {
					t.Fatalf("label %q reused across invocations", name)
				}
				labels[name] = true
			}
		}
	}
}

func TestGenerateSelectWithoutWhereHasNoCompare(t *testing.T) {
	cmd := &SelectTableCommand{Table: "users", Columns: []string{"*"}}
	prog, err := NewGenerator().Generate(cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, o := range prog {
		switch o.Mnemonic {
		case CompareEq, CompareNeq, CompareLt, CompareLte, CompareGt, CompareGte:
			t.Fatalf("unexpected comparison op in WHERE-less SELECT: %+v", prog)
		}
	}
}

func TestEveryJumpTargetsALabelPresent(t *testing.T) {
	cmd := &DeleteCommand{Table: "users", Where: &ast.Condition{Column: "id", Operator: ast.OpEq, Value: ast.IntValue(1)}}
	prog, err := NewGenerator().Generate(cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	labels := map[string]bool{}
	for _, o := range prog {
		if o.Mnemonic == Label {
			labels[o.Args[0].(string)] = true
		}
	}
	for _, o := range prog {
		if o.Mnemonic == Jump || o.Mnemonic == JumpIfFalse {
			target := o.Args[0].(string)
			if !labels[target] {
				t.Errorf("jump target %q has no matching LABEL", target)
			}
		}
	}
}
