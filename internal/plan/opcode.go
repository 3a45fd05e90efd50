package plan

import "github.com/coredb/coredb/internal/ast"

// Mnemonic is the closed instruction set the VM understands.
type Mnemonic string

const (
	LoadConst    Mnemonic = "LOAD_CONST"
	LoadColumn   Mnemonic = "LOAD_COLUMN"
	CompareEq    Mnemonic = "COMPARE_EQ"
	CompareNeq   Mnemonic = "COMPARE_NEQ"
	CompareLt    Mnemonic = "COMPARE_LT"
	CompareLte   Mnemonic = "COMPARE_LTE"
	CompareGt    Mnemonic = "COMPARE_GT"
	CompareGte   Mnemonic = "COMPARE_GTE"
	JumpIfFalse  Mnemonic = "JUMP_IF_FALSE"
	Jump         Mnemonic = "JUMP"
	Label        Mnemonic = "LABEL"
	OpenTable    Mnemonic = "OPEN_TABLE"
	ScanStart    Mnemonic = "SCAN_START"
	ScanNext     Mnemonic = "SCAN_NEXT"
	ScanEnd      Mnemonic = "SCAN_END"
	EmitRow      Mnemonic = "EMIT_ROW"
	UpdateColumn Mnemonic = "UPDATE_COLUMN"
	DeleteRow    Mnemonic = "DELETE_ROW"
	InsertRow    Mnemonic = "INSERT_ROW"
	CreateTable  Mnemonic = "CREATE_TABLE"
	DropTable    Mnemonic = "DROP_TABLE"
)

// Op is a single instruction: a mnemonic plus its operands. Program
// addresses are slice indices; LABEL operands are symbolic jump
// targets resolved to indices at VM execution start.
type Op struct {
	Mnemonic Mnemonic
	Args     []any
}

func op(m Mnemonic, args ...any) Op { return Op{Mnemonic: m, Args: args} }

// Program is the ordered opcode sequence the VM executes.
type Program []Op

func compareOpFor(operator ast.Operator) Mnemonic {
	switch operator {
	case ast.OpEq:
		return CompareEq
	case ast.OpNeq:
		return CompareNeq
	case ast.OpLt:
		return CompareLt
	case ast.OpLte:
		return CompareLte
	case ast.OpGt:
		return CompareGt
	case ast.OpGte:
		return CompareGte
	default:
		return CompareEq
	}
}
