package infer

import (
	"tao/internal/ast"
	"tao/internal/types"
)

// binaryResult returns the result type of op applied to two p operands.
func binaryResult(op ast.BinaryOp, p types.Prim) (types.Prim, bool) {
	switch op {
	case ast.BinAdd, ast.BinMul, ast.BinDiv, ast.BinRem:
		switch p {
		case types.PrimNat, types.PrimInt, types.PrimReal:
			return p, true
		}
	case ast.BinSub:
		switch p {
		case types.PrimNat:
			return types.PrimInt, true
		case types.PrimInt, types.PrimReal:
			return p, true
		}
	case ast.BinLess, ast.BinLessEq, ast.BinMore, ast.BinMoreEq:
		switch p {
		case types.PrimNat, types.PrimInt, types.PrimReal, types.PrimChar:
			return types.PrimBool, true
		}
	case ast.BinEq, ast.BinNotEq:
		switch p {
		case types.PrimNat, types.PrimInt, types.PrimReal, types.PrimChar, types.PrimBool:
			return types.PrimBool, true
		}
	case ast.BinAnd, ast.BinOr, ast.BinXor:
		if p == types.PrimBool {
			return types.PrimBool, true
		}
	}
	return 0, false
}

// BinaryResult exposes the operator table for later stages.
func BinaryResult(op ast.BinaryOp, p types.Prim) (types.Prim, bool) { return binaryResult(op, p) }
