package ast

import (
	"fmt"

	"github.com/zutxo/sigma/value"
)

// Header bits of an ErgoTree.
const (
	VersionMask               byte = 0x07
	SizeFlag                  byte = 0x08
	ConstantSegregationFlag   byte = 0x10
	MaxSupportedScriptVersion byte = 3
)

// ErgoTree is a script as guarded by a box: a header, the segregated
// constants and the root expression. When the body could not be parsed
// (typically because it uses operations introduced by a later version),
// Root is nil and Unparsed holds the raw bytes.
type ErgoTree struct {
	Header    byte
	Constants []value.Value
	Root      Expr
	Unparsed  []byte
}

// NewTree builds a tree of the given version. The constant segregation flag
// is set when constants are given.
func NewTree(version byte, root Expr, constants ...value.Value) *ErgoTree {
	h := version & VersionMask
	if len(constants) > 0 {
		h |= ConstantSegregationFlag
	}
	return &ErgoTree{Header: h, Constants: constants, Root: root}
}

// Version returns the script version of t.
func (t *ErgoTree) Version() byte {
	return t.Header & VersionMask
}

// IsConstantSegregated reports whether constants are stored apart from the body.
func (t *ErgoTree) IsConstantSegregated() bool {
	return t.Header&ConstantSegregationFlag != 0
}

// Parsed reports whether the body of t is available.
func (t *ErgoTree) Parsed() bool {
	return t.Root != nil && t.Unparsed == nil
}

func (t *ErgoTree) String() string {
	return fmt.Sprintf("ErgoTree(v%d, %d constants)", t.Version(), len(t.Constants))
}

// Children returns the direct sub-expressions of e, in evaluation order.
// Absent optional children are skipped.
func Children(e Expr) []Expr {
	var out []Expr
	add := func(es ...Expr) {
		for _, x := range es {
			if x != nil {
				out = append(out, x)
			}
		}
	}
	switch n := e.(type) {
	case ValDef:
		add(n.RHS)
	case BlockValue:
		for _, d := range n.Items {
			add(d.RHS)
		}
		add(n.Result)
	case FuncValue:
		add(n.Body)
	case Apply:
		add(n.Func)
		add(n.Args...)
	case If:
		add(n.Cond, n.Then, n.Else)
	case ArithOp:
		add(n.Left, n.Right)
	case Relation:
		add(n.Left, n.Right)
	case BinAnd:
		add(n.Left, n.Right)
	case BinOr:
		add(n.Left, n.Right)
	case BinXor:
		add(n.Left, n.Right)
	case LogicalNot:
		add(n.Input)
	case Negation:
		add(n.Input)
	case Upcast:
		add(n.Input)
	case Downcast:
		add(n.Input)
	case LogicalAnd:
		add(n.Input)
	case LogicalOr:
		add(n.Input)
	case SigmaAnd:
		add(n.Items...)
	case SigmaOr:
		add(n.Items...)
	case AtLeast:
		add(n.Bound, n.Input)
	case BoolToSigmaProp:
		add(n.Input)
	case CreateProveDlog:
		add(n.Value)
	case CreateProveDHTuple:
		add(n.G, n.H, n.U, n.V)
	case SigmaPropBytes:
		add(n.Input)
	case ConcreteCollection:
		add(n.Items...)
	case Tuple:
		add(n.Items...)
	case SelectField:
		add(n.Input)
	case SizeOf:
		add(n.Input)
	case ByIndex:
		add(n.Input, n.Index, n.Default)
	case Slice:
		add(n.Input, n.From, n.Until)
	case Append:
		add(n.Left, n.Right)
	case MapCollection:
		add(n.Input, n.Mapper)
	case Filter:
		add(n.Input, n.Condition)
	case Fold:
		add(n.Input, n.Zero, n.Folder)
	case FlatMap:
		add(n.Input, n.Mapper)
	case Exists:
		add(n.Input, n.Condition)
	case ForAll:
		add(n.Input, n.Condition)
	case OptionGet:
		add(n.Input)
	case OptionIsDefined:
		add(n.Input)
	case OptionGetOrElse:
		add(n.Input, n.Default)
	case ExtractAmount:
		add(n.Input)
	case ExtractScriptBytes:
		add(n.Input)
	case ExtractID:
		add(n.Input)
	case ExtractRegisterAs:
		add(n.Input)
	case ExtractCreationInfo:
		add(n.Input)
	case CalcBlake2b256:
		add(n.Input)
	case CalcSha256:
		add(n.Input)
	case Exponentiate:
		add(n.Left, n.Right)
	case MultiplyGroup:
		add(n.Left, n.Right)
	case DecodePoint:
		add(n.Input)
	case Xor:
		add(n.Left, n.Right)
	case LongToByteArray:
		add(n.Input)
	case ByteArrayToLong:
		add(n.Input)
	case ByteArrayToBigInt:
		add(n.Input)
	case MethodCall:
		add(n.Receiver)
		add(n.Args...)
	}
	return out
}

// Stats summarises the static shape of a tree.
type Stats struct {
	Nodes   int
	Depth   int
	Unknown []byte
}

// Analyze walks e without recursion and returns its size, its depth and the
// opcodes of the Unknown nodes it contains.
func Analyze(e Expr) Stats {
	type item struct {
		e     Expr
		depth int
	}
	var st Stats
	if e == nil {
		return st
	}
	stack := []item{{e, 1}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		st.Nodes++
		if it.depth > st.Depth {
			st.Depth = it.depth
		}
		if u, ok := it.e.(Unknown); ok {
			st.Unknown = append(st.Unknown, u.OpCode)
		}
		for _, c := range Children(it.e) {
			stack = append(stack, item{c, it.depth + 1})
		}
	}
	return st
}
