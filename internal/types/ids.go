package types

// TyID identifies a node in the generic Store.
type TyID uint32

// NoTyID marks the absence of a type.
const NoTyID TyID = 0

// ConTyID identifies a concrete type inside the Interner.
type ConTyID uint32

// NoConTyID marks the absence of a concrete type.
const NoConTyID ConTyID = 0

// GenScopeID identifies a generic parameter list registered in the Store.
type GenScopeID uint32

// NoGenScope is the empty generic scope.
const NoGenScope GenScopeID = 0

// EffectID identifies an effect descriptor registered in the Store.
type EffectID uint32

// Registry ids are plain indices into the symbol tables.
type (
	DataID       uint32
	ClassID      uint32
	EffectDeclID uint32
	AliasID      uint32
	DefID        uint32
	MemberID     uint32
)
