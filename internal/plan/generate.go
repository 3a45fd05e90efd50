package plan

import (
	"fmt"

	"github.com/coredb/coredb/internal/ast"
	"github.com/coredb/coredb/internal/dberrors"
)

// Generator compiles a Command to an opcode program, minting a fresh
// set of labels per invocation so I6 (label uniqueness) always holds.
type Generator struct {
	labelCounter int
}

// NewGenerator returns a Generator with its label counter reset.
func NewGenerator() *Generator { return &Generator{} }

func (g *Generator) newLabel() string {
	g.labelCounter++
	return fmt.Sprintf("label_%d", g.labelCounter)
}

// Generate compiles a command to an opcode program. Unsupported
// command kinds produce a code-generation error.
func (g *Generator) Generate(cmd Command) (Program, error) {
	switch c := cmd.(type) {
	case *InsertCommand:
		return g.generateInsert(c), nil
	case *CreateTableCommand:
		return g.generateCreateTable(c), nil
	case *DropCommand:
		return g.generateDropTable(c), nil
	case *SelectTableCommand:
		return g.generateSelect(c), nil
	case *UpdateCommand:
		return g.generateUpdate(c), nil
	case *DeleteCommand:
		return g.generateDelete(c), nil
	default:
		return nil, dberrors.NewCodeGenError(fmt.Sprintf("unsupported command type %T", cmd), nil)
	}
}

// generateInsert: [LOAD_CONST v1, LOAD_CONST v2, ..., INSERT_ROW table]
func (g *Generator) generateInsert(c *InsertCommand) Program {
	var prog Program
	for _, v := range c.Values {
		prog = append(prog, op(LoadConst, v))
	}
	prog = append(prog, op(InsertRow, c.Table))
	return prog
}

// generateCreateTable: [(CREATE_TABLE, table, col_defs)]
func (g *Generator) generateCreateTable(c *CreateTableCommand) Program {
	return Program{op(CreateTable, c.Table, c.Columns)}
}

// generateDropTable: [(DROP_TABLE, table)]
func (g *Generator) generateDropTable(c *DropCommand) Program {
	return Program{op(DropTable, c.Table)}
}

// scanSkeleton emits the shared OPEN_TABLE/SCAN_START/loop/SCAN_NEXT/
// JUMP_IF_FALSE preamble and WHERE-guarded body shared by SELECT,
// UPDATE, and DELETE:
//
//	OPEN_TABLE t ; SCAN_START ; LABEL loop ; SCAN_NEXT ; JUMP_IF_FALSE end
//	[ LOAD_COLUMN c ; LOAD_CONST v ; COMPARE_<op> ; JUMP_IF_FALSE skip ]
//	<body>
//	LABEL skip
//	JUMP loop ; LABEL end ; SCAN_END
func (g *Generator) scanSkeleton(table string, where *ast.Condition, body Program) Program {
	loopLabel := g.newLabel()
	endLabel := g.newLabel()

	prog := Program{
		op(OpenTable, table),
		op(ScanStart),
		op(Label, loopLabel),
		op(ScanNext),
		op(JumpIfFalse, endLabel),
	}

	if where != nil {
		skipLabel := g.newLabel()
		prog = append(prog,
			op(LoadColumn, where.Column),
			op(LoadConst, where.Value),
			op(compareOpFor(where.Operator)),
			op(JumpIfFalse, skipLabel),
		)
		prog = append(prog, body...)
		prog = append(prog, op(Label, skipLabel))
	} else {
		prog = append(prog, body...)
	}

	prog = append(prog,
		op(Jump, loopLabel),
		op(Label, endLabel),
		op(ScanEnd),
	)
	return prog
}

// generateSelect's body is EMIT_ROW cols.
func (g *Generator) generateSelect(c *SelectTableCommand) Program {
	body := Program{op(EmitRow, c.Columns)}
	return g.scanSkeleton(c.Table, c.Where, body)
}

// generateUpdate's body is (LOAD_CONST v ; UPDATE_COLUMN c)* over the
// SET clause assignments.
func (g *Generator) generateUpdate(c *UpdateCommand) Program {
	var body Program
	for _, a := range c.Updates {
		body = append(body, op(LoadConst, a.Value), op(UpdateColumn, a.Column))
	}
	return g.scanSkeleton(c.Table, c.Where, body)
}

// generateDelete's body is a single DELETE_ROW.
func (g *Generator) generateDelete(c *DeleteCommand) Program {
	body := Program{op(DeleteRow)}
	return g.scanSkeleton(c.Table, c.Where, body)
}
