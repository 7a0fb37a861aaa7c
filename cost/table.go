package cost

import (
	"fmt"

	"github.com/zutxo/sigma/value"
)

// numericCost returns onNumeric for the fixed size integer types and onBig
// for BigInt.
func numericCost(onNumeric, onBig JitCost) func(value.Type) (JitCost, error) {
	return func(t value.Type) (JitCost, error) {
		p, ok := t.(value.PrimType)
		switch {
		case ok && p == value.TBigInt:
			return onBig, nil
		case ok && p.IsNumeric(), t == value.TAny:
			return onNumeric, nil
		default:
			return 0, fmt.Errorf("no numeric cost for type %s", t)
		}
	}
}

// Operation costs, in JitCost.
var (
	Constant            = Fixed("Constant", 5)
	ConstantPlaceholder = Fixed("ConstantPlaceholder", 1)
	ValUse              = Fixed("ValUse", 5)
	ValDef              = Fixed("ValDef", 1)
	BlockValue          = PerItem("BlockValue", 1, 1, 10)
	FuncValue           = Fixed("FuncValue", 5)
	Apply               = Fixed("Apply", 30)
	If                  = Fixed("If", 10)

	ArithPlusMinus = TypeBased("ArithOp+-", numericCost(15, 20))
	ArithMulDiv    = TypeBased("ArithOp*/%", numericCost(15, 30))
	ArithMinMax    = TypeBased("ArithOpMinMax", numericCost(15, 20))
	Compare        = TypeBased("Relation", numericCost(20, 30))
	Equals         = PerItem("EQ", 3, 1, 16)
	Negation       = TypeBased("Negation", numericCost(30, 40))
	Upcast         = Fixed("Upcast", 10)
	Downcast       = Fixed("Downcast", 10)
	BinAnd         = Fixed("BinAnd", 20)
	BinOr          = Fixed("BinOr", 20)
	BinXor         = Fixed("BinXor", 20)
	LogicalNot     = Fixed("LogicalNot", 15)
	LogicalAnd     = PerItem("LogicalAnd", 10, 5, 32)
	LogicalOr      = PerItem("LogicalOr", 10, 5, 32)

	SigmaAnd           = PerItem("SigmaAnd", 10, 2, 1)
	SigmaOr            = PerItem("SigmaOr", 10, 2, 1)
	AtLeast            = PerItem("AtLeast", 20, 3, 5)
	BoolToSigmaProp    = Fixed("BoolToSigmaProp", 15)
	CreateProveDlog    = Fixed("CreateProveDlog", 10)
	CreateProveDHTuple = Fixed("CreateProveDHTuple", 20)
	SigmaPropBytes     = PerItem("SigmaPropBytes", 35, 6, 1)

	ConcreteCollection = PerItem("ConcreteCollection", 20, 1, 1)
	Tuple              = Fixed("Tuple", 15)
	SelectField        = Fixed("SelectField", 10)
	SizeOf             = Fixed("SizeOf", 14)
	ByIndex            = Fixed("ByIndex", 30)
	Slice              = PerItem("Slice", 10, 2, 100)
	Append             = PerItem("Append", 20, 2, 100)
	Map                = PerItem("MapCollection", 20, 1, 10)
	Filter             = PerItem("Filter", 20, 1, 10)
	Fold               = PerItem("Fold", 3, 1, 10)
	FlatMap            = PerItem("FlatMap", 60, 10, 8)
	Exists             = PerItem("Exists", 3, 1, 10)
	ForAll             = PerItem("ForAll", 3, 1, 10)

	OptionGet       = Fixed("OptionGet", 15)
	OptionIsDefined = Fixed("OptionIsDefined", 10)
	OptionGetOrElse = Fixed("OptionGetOrElse", 20)

	Height      = Fixed("Height", 26)
	Inputs      = Fixed("Inputs", 10)
	Outputs     = Fixed("Outputs", 10)
	Self        = Fixed("Self", 10)
	DataInputs  = Fixed("DataInputs", 15)
	Headers     = Fixed("Headers", 15)
	PreHeader   = Fixed("PreHeader", 10)
	MinerPubKey = Fixed("MinerPubKey", 20)
	GetVar      = Fixed("GetVar", 100)

	ExtractAmount       = Fixed("ExtractAmount", 8)
	ExtractScriptBytes  = Fixed("ExtractScriptBytes", 10)
	ExtractID           = Fixed("ExtractId", 12)
	ExtractRegisterAs   = Fixed("ExtractRegisterAs", 50)
	ExtractCreationInfo = Fixed("ExtractCreationInfo", 16)

	CalcBlake2b256    = PerItem("CalcBlake2b256", 20, 7, 128)
	CalcSha256        = PerItem("CalcSha256", 80, 8, 64)
	Exponentiate      = Fixed("Exponentiate", 900)
	MultiplyGroup     = Fixed("MultiplyGroup", 40)
	DecodePoint       = Fixed("DecodePoint", 1100)
	GroupGenerator    = Fixed("GroupGenerator", 10)
	Xor               = PerItem("Xor", 10, 2, 128)
	LongToByteArray   = Fixed("LongToByteArray", 17)
	ByteArrayToLong   = Fixed("ByteArrayToLong", 16)
	ByteArrayToBigInt = Fixed("ByteArrayToBigInt", 30)

	MethodCall = Fixed("MethodCall", 4)
)

// Costs of the cryptographic verification of a proposition, charged before
// any group operation is performed.
var (
	// ProveDlogVerify covers two scalar multiplications and a point addition.
	ProveDlogVerify = Fixed("ProveDlogVerify", 2*900+40)
	// ProveDHTupleVerify covers four scalar multiplications and two point additions.
	ProveDHTupleVerify = Fixed("ProveDHTupleVerify", 4*900+2*40)
	// ConnectiveVerify is charged per connective node for its children.
	ConnectiveVerify = PerItem("ConnectiveVerify", 10, 2, 1)
	// ThresholdVerify adds polynomial evaluation per child.
	ThresholdVerify = PerItem("ThresholdVerify", 40, 20, 1)
	// FiatShamir is charged per chunk of serialized tree bytes hashed.
	FiatShamir = PerItem("FiatShamir", 20, 7, 128)
)
