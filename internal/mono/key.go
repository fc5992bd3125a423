package mono

import (
	"strconv"
	"strings"

	"tao/internal/types"
)

// KeyKind tells what a key specializes.
type KeyKind uint8

const (
	// KeyDef is a definition body.
	KeyDef KeyKind = iota
	// KeyMember is one field body of a class member.
	KeyMember
)

// ArgsKey is a stable encoding of interned type arguments. Interned ids are
// unique per shape, so equal keys mean equal arguments.
type ArgsKey string

func argsKey(args []types.ConTyID) ArgsKey {
	if len(args) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, a := range args {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatUint(uint64(a), 10))
	}
	return ArgsKey(sb.String())
}

// Key identifies one specialization.
type Key struct {
	Kind  KeyKind `json:"kind"`
	ID    uint32  `json:"id"` // DefID or MemberID
	Field string  `json:"field,omitempty"`
	Args  ArgsKey `json:"args,omitempty"`
}

func defKey(id types.DefID, args []types.ConTyID) Key {
	return Key{Kind: KeyDef, ID: uint32(id), Args: argsKey(args)}
}

func memberKey(id types.MemberID, field string, args []types.ConTyID) Key {
	return Key{Kind: KeyMember, ID: uint32(id), Field: field, Args: argsKey(args)}
}

func compareKeys(a, b Key) int {
	switch {
	case a.Kind != b.Kind:
		return int(a.Kind) - int(b.Kind)
	case a.ID != b.ID:
		if a.ID < b.ID {
			return -1
		}
		return 1
	case a.Field != b.Field:
		return strings.Compare(a.Field, b.Field)
	}
	return strings.Compare(string(a.Args), string(b.Args))
}
