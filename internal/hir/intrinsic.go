package hir

// Intrinsic enumerates the operations built into the language.
type Intrinsic uint8

const (
	IntrinsicTypeName Intrinsic = iota + 1
	IntrinsicNegNat
	IntrinsicNegInt
	IntrinsicNegReal
	IntrinsicEqChar
	IntrinsicEqNat
	IntrinsicGo
	IntrinsicPrint
	IntrinsicInput
	IntrinsicLenList
	IntrinsicSkipList
	IntrinsicTrimList
	IntrinsicSuspend
)

var intrinsics = [...]struct {
	name  string
	arity int
}{
	IntrinsicTypeName: {"type_name", 1},
	IntrinsicNegNat:   {"neg_nat", 1},
	IntrinsicNegInt:   {"neg_int", 1},
	IntrinsicNegReal:  {"neg_real", 1},
	IntrinsicEqChar:   {"eq_char", 2},
	IntrinsicEqNat:    {"eq_nat", 2},
	IntrinsicGo:       {"go", 2},
	IntrinsicPrint:    {"print", 2},
	IntrinsicInput:    {"input", 1},
	IntrinsicLenList:  {"len_list", 1},
	IntrinsicSkipList: {"skip_list", 2},
	IntrinsicTrimList: {"trim_list", 2},
	IntrinsicSuspend:  {"suspend", 1},
}

// LookupIntrinsic finds an intrinsic by its source name.
func LookupIntrinsic(name string) (Intrinsic, bool) {
	for i := range intrinsics {
		if i > 0 && intrinsics[i].name == name {
			return Intrinsic(i), true // #nosec G115 -- table is small
		}
	}
	return 0, false
}

func (i Intrinsic) String() string {
	if int(i) < len(intrinsics) && i > 0 {
		return intrinsics[i].name
	}
	return "?intrinsic"
}

// Arity is the number of arguments the intrinsic takes.
func (i Intrinsic) Arity() int {
	if int(i) < len(intrinsics) && i > 0 {
		return intrinsics[i].arity
	}
	return -1
}
