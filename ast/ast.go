// Package ast defines the typed expression trees the evaluator reduces.
//
// Trees are produced by an external compiler or deserializer and are never
// mutated once built. Expr is a closed sum type: the evaluator switches over
// the concrete node types below.
package ast

import (
	"github.com/zutxo/sigma/value"
)

// Expr is a node of an expression tree.
type Expr interface {
	isExpr()
}

// Constant is a typed literal.
type Constant struct {
	Value value.Value
}

// ConstantPlaceholder refers to the Index-th segregated constant of the tree.
type ConstantPlaceholder struct {
	Index int
	Type  value.Type
}

// ValUse reads a variable bound by a ValDef or a function argument.
type ValUse struct {
	ID   int
	Type value.Type
}

// ValDef binds the value of RHS to ID inside a BlockValue.
type ValDef struct {
	ID  int
	RHS Expr
}

// BlockValue evaluates its definitions in order, each seeing the previous
// ones, then evaluates Result.
type BlockValue struct {
	Items  []ValDef
	Result Expr
}

// FuncArg is a formal argument of a lambda.
type FuncArg struct {
	ID   int
	Type value.Type
}

// FuncValue is a lambda capturing its defining environment.
type FuncValue struct {
	Args []FuncArg
	Body Expr
}

// Apply calls Func with Args.
type Apply struct {
	Func Expr
	Args []Expr
}

// If evaluates Cond then only the selected branch.
type If struct {
	Cond, Then, Else Expr
}

// ArithKind is an arithmetic operator.
type ArithKind byte

// Arithmetic operators.
const (
	Plus ArithKind = iota
	Minus
	Multiply
	Division
	Modulo
	Min
	Max
)

var arithNames = [...]string{"+", "-", "*", "/", "%", "min", "max"}

func (k ArithKind) String() string {
	if int(k) < len(arithNames) {
		return arithNames[k]
	}
	return "?"
}

// ArithOp applies an arithmetic operator to two numbers of the same type.
type ArithOp struct {
	Kind        ArithKind
	Left, Right Expr
}

// RelationKind is a comparison operator.
type RelationKind byte

// Comparison operators.
const (
	LT RelationKind = iota
	LE
	GT
	GE
	EQ
	NEQ
)

var relationNames = [...]string{"<", "<=", ">", ">=", "==", "!="}

func (k RelationKind) String() string {
	if int(k) < len(relationNames) {
		return relationNames[k]
	}
	return "?"
}

// Relation compares two values.
type Relation struct {
	Kind        RelationKind
	Left, Right Expr
}

// BinAnd is the lazy boolean conjunction: Right is skipped when Left is false.
type BinAnd struct {
	Left, Right Expr
}

// BinOr is the lazy boolean disjunction: Right is skipped when Left is true.
type BinOr struct {
	Left, Right Expr
}

// BinXor is the boolean exclusive or.
type BinXor struct {
	Left, Right Expr
}

// LogicalNot negates a boolean.
type LogicalNot struct {
	Input Expr
}

// Negation negates a number.
type Negation struct {
	Input Expr
}

// Upcast widens a number to a larger numeric type.
type Upcast struct {
	Input Expr
	To    value.PrimType
}

// Downcast narrows a number, failing if it does not fit.
type Downcast struct {
	Input Expr
	To    value.PrimType
}

// LogicalAnd is true when every item of a Coll[Boolean] is true.
type LogicalAnd struct {
	Input Expr
}

// LogicalOr is true when some item of a Coll[Boolean] is true.
type LogicalOr struct {
	Input Expr
}

// SigmaAnd builds the conjunction of sigma propositions.
type SigmaAnd struct {
	Items []Expr
}

// SigmaOr builds the disjunction of sigma propositions.
type SigmaOr struct {
	Items []Expr
}

// AtLeast builds the threshold of Bound out of a Coll[SigmaProp].
type AtLeast struct {
	Bound Expr
	Input Expr
}

// BoolToSigmaProp lifts a boolean to a trivial proposition.
type BoolToSigmaProp struct {
	Input Expr
}

// CreateProveDlog builds a discrete log statement from a group element.
type CreateProveDlog struct {
	Value Expr
}

// CreateProveDHTuple builds a Diffie-Hellman tuple statement.
type CreateProveDHTuple struct {
	G, H, U, V Expr
}

// SigmaPropBytes returns the canonical bytes of a proposition.
type SigmaPropBytes struct {
	Input Expr
}

// ConcreteCollection builds a collection from its items.
type ConcreteCollection struct {
	Elem  value.Type
	Items []Expr
}

// Tuple builds a tuple from its items.
type Tuple struct {
	Items []Expr
}

// SelectField returns the Index-th (1-based) field of a tuple.
type SelectField struct {
	Input Expr
	Index int
}

// SizeOf returns the length of a collection.
type SizeOf struct {
	Input Expr
}

// ByIndex returns an item of a collection; Default, if set, is returned
// for an out of bounds index.
type ByIndex struct {
	Input   Expr
	Index   Expr
	Default Expr
}

// Slice returns the items of a collection in [From, Until).
type Slice struct {
	Input, From, Until Expr
}

// Append concatenates two collections.
type Append struct {
	Left, Right Expr
}

// MapCollection applies Mapper to each item.
type MapCollection struct {
	Input, Mapper Expr
}

// Filter keeps the items Condition holds for.
type Filter struct {
	Input, Condition Expr
}

// Fold reduces a collection with Folder, applied to (accumulator, item).
type Fold struct {
	Input, Zero, Folder Expr
}

// FlatMap applies Mapper, which returns collections, and concatenates the results.
type FlatMap struct {
	Input, Mapper Expr
}

// Exists is true if Condition holds for some item. Evaluation stops at the
// first match.
type Exists struct {
	Input, Condition Expr
}

// ForAll is true if Condition holds for every item. Evaluation stops at the
// first failure.
type ForAll struct {
	Input, Condition Expr
}

// OptionGet returns the content of a defined option.
type OptionGet struct {
	Input Expr
}

// OptionIsDefined tests an option.
type OptionIsDefined struct {
	Input Expr
}

// OptionGetOrElse returns the content of an option or Default.
type OptionGetOrElse struct {
	Input, Default Expr
}

// Context accessors.
type (
	Height      struct{}
	Inputs      struct{}
	Outputs     struct{}
	Self        struct{}
	DataInputs  struct{}
	Headers     struct{}
	PreHeader   struct{}
	MinerPubKey struct{}
)

// GetVar reads a context extension variable as Option[Type].
type GetVar struct {
	ID   byte
	Type value.Type
}

// ExtractAmount returns the value of a box.
type ExtractAmount struct {
	Input Expr
}

// ExtractScriptBytes returns the proposition bytes of a box.
type ExtractScriptBytes struct {
	Input Expr
}

// ExtractID returns the identifier of a box.
type ExtractID struct {
	Input Expr
}

// ExtractRegisterAs reads a box register as Option[Type].
type ExtractRegisterAs struct {
	Input    Expr
	Register int
	Type     value.Type
}

// ExtractCreationInfo returns (creation height, output reference) of a box.
type ExtractCreationInfo struct {
	Input Expr
}

// CalcBlake2b256 hashes a byte array with blake2b-256.
type CalcBlake2b256 struct {
	Input Expr
}

// CalcSha256 hashes a byte array with sha256.
type CalcSha256 struct {
	Input Expr
}

// Exponentiate multiplies a group element by a BigInt scalar.
type Exponentiate struct {
	Left, Right Expr
}

// MultiplyGroup adds two group elements.
type MultiplyGroup struct {
	Left, Right Expr
}

// DecodePoint decodes a group element from its bytes.
type DecodePoint struct {
	Input Expr
}

// GroupGenerator is the generator of the group.
type GroupGenerator struct{}

// Xor xors two byte arrays of the same length.
type Xor struct {
	Left, Right Expr
}

// LongToByteArray encodes a Long as 8 big-endian bytes.
type LongToByteArray struct {
	Input Expr
}

// ByteArrayToLong decodes the first 8 bytes of an array as a big-endian Long.
type ByteArrayToLong struct {
	Input Expr
}

// ByteArrayToBigInt decodes a two's complement big-endian BigInt.
type ByteArrayToBigInt struct {
	Input Expr
}

// MethodCall invokes Method on Receiver. A nil Receiver calls a method of
// the Global object.
type MethodCall struct {
	Receiver Expr
	Method   string
	Args     []Expr
}

// Unknown is an operation this evaluator does not know. Reaching it is a
// soft-fork condition, not an evaluation failure.
type Unknown struct {
	OpCode byte
}

func (Constant) isExpr()            {}
func (ConstantPlaceholder) isExpr() {}
func (ValUse) isExpr()              {}
func (ValDef) isExpr()              {}
func (BlockValue) isExpr()          {}
func (FuncValue) isExpr()           {}
func (Apply) isExpr()               {}
func (If) isExpr()                  {}
func (ArithOp) isExpr()             {}
func (Relation) isExpr()            {}
func (BinAnd) isExpr()              {}
func (BinOr) isExpr()               {}
func (BinXor) isExpr()              {}
func (LogicalNot) isExpr()          {}
func (Negation) isExpr()            {}
func (Upcast) isExpr()              {}
func (Downcast) isExpr()            {}
func (LogicalAnd) isExpr()          {}
func (LogicalOr) isExpr()           {}
func (SigmaAnd) isExpr()            {}
func (SigmaOr) isExpr()             {}
func (AtLeast) isExpr()             {}
func (BoolToSigmaProp) isExpr()     {}
func (CreateProveDlog) isExpr()     {}
func (CreateProveDHTuple) isExpr()  {}
func (SigmaPropBytes) isExpr()      {}
func (ConcreteCollection) isExpr()  {}
func (Tuple) isExpr()               {}
func (SelectField) isExpr()         {}
func (SizeOf) isExpr()              {}
func (ByIndex) isExpr()             {}
func (Slice) isExpr()               {}
func (Append) isExpr()              {}
func (MapCollection) isExpr()       {}
func (Filter) isExpr()              {}
func (Fold) isExpr()                {}
func (FlatMap) isExpr()             {}
func (Exists) isExpr()              {}
func (ForAll) isExpr()              {}
func (OptionGet) isExpr()           {}
func (OptionIsDefined) isExpr()     {}
func (OptionGetOrElse) isExpr()     {}
func (Height) isExpr()              {}
func (Inputs) isExpr()              {}
func (Outputs) isExpr()             {}
func (Self) isExpr()                {}
func (DataInputs) isExpr()          {}
func (Headers) isExpr()             {}
func (PreHeader) isExpr()           {}
func (MinerPubKey) isExpr()         {}
func (GetVar) isExpr()              {}
func (ExtractAmount) isExpr()       {}
func (ExtractScriptBytes) isExpr()  {}
func (ExtractID) isExpr()           {}
func (ExtractRegisterAs) isExpr()   {}
func (ExtractCreationInfo) isExpr() {}
func (CalcBlake2b256) isExpr()      {}
func (CalcSha256) isExpr()          {}
func (Exponentiate) isExpr()        {}
func (MultiplyGroup) isExpr()       {}
func (DecodePoint) isExpr()         {}
func (GroupGenerator) isExpr()      {}
func (Xor) isExpr()                 {}
func (LongToByteArray) isExpr()     {}
func (ByteArrayToLong) isExpr()     {}
func (ByteArrayToBigInt) isExpr()   {}
func (MethodCall) isExpr()          {}
func (Unknown) isExpr()             {}
