package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Semantic: declarations, names, lowering
	SemaInfo                  Code = 3000
	SemaNoEntryPoint          Code = 3001
	SemaMultipleEntryPoints   Code = 3002
	SemaGenericEntryPoint     Code = 3003
	SemaWrongNumberOfGenerics Code = 3004
	SemaWrongNumberOfParams   Code = 3005
	SemaNoSuchLocal           Code = 3006
	SemaNoSuchData            Code = 3007
	SemaNoSuchCons            Code = 3008
	SemaNoSuchClass           Code = 3009
	SemaNoSuchEffect          Code = 3010
	SemaNoSuchClassField      Code = 3011
	SemaDuplicateGenName      Code = 3012
	SemaDuplicateItem         Code = 3013
	SemaSelfNotValidHere      Code = 3014
	SemaPatternNotSupported   Code = 3015
	SemaNoBranches            Code = 3016
	SemaDefTypeNotSpecified   Code = 3017
	SemaRecursiveAlias        Code = 3018
	SemaNoBasin               Code = 3019
	SemaInvalidIntrinsic      Code = 3020
	SemaMissingMemberField    Code = 3021
	SemaUninhabitedData       Code = 3022
	SemaNoSuchAssoc           Code = 3023
	SemaDuplicateField        Code = 3024
	SemaMalformedTree         Code = 3025
	SemaMissingLangItem       Code = 3026

	// Semantic: solver
	SemaTypeMismatch         Code = 3100
	SemaRecursiveType        Code = 3101
	SemaCannotInfer          Code = 3102
	SemaNoSuchField          Code = 3103
	SemaNoBinaryOp           Code = 3104
	SemaAmbiguousClassField  Code = 3105
	SemaUnresolvedObligation Code = 3106
	SemaAmbiguousImpl        Code = 3107

	// I/O
	IOLoadFileError Code = 4001
	IODecodeError   Code = 4002

	// Project
	ProjInfo          Code = 5000
	ProjInvalidConfig Code = 5001

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var codeDescription = map[Code]string{
	UnknownCode:               "Unknown error",
	SemaInfo:                  "Semantic information",
	SemaNoEntryPoint:          "No entry point",
	SemaMultipleEntryPoints:   "Multiple entry points",
	SemaGenericEntryPoint:     "Entry point must not be generic",
	SemaWrongNumberOfGenerics: "Wrong number of generic arguments",
	SemaWrongNumberOfParams:   "Wrong number of parameters",
	SemaNoSuchLocal:           "Unresolved name",
	SemaNoSuchData:            "Unknown type",
	SemaNoSuchCons:            "Unknown constructor",
	SemaNoSuchClass:           "Unknown class",
	SemaNoSuchEffect:          "Unknown effect",
	SemaNoSuchClassField:      "No class declares this member",
	SemaDuplicateGenName:      "Duplicate generic parameter",
	SemaDuplicateItem:         "Duplicate item",
	SemaSelfNotValidHere:      "Self is not valid here",
	SemaPatternNotSupported:   "Pattern is not supported",
	SemaNoBranches:            "Function has no branches",
	SemaDefTypeNotSpecified:   "Definition type not specified",
	SemaRecursiveAlias:        "Recursive type alias",
	SemaNoBasin:               "No enclosing effect basin",
	SemaInvalidIntrinsic:      "Invalid intrinsic",
	SemaMissingMemberField:    "Member does not define class field",
	SemaUninhabitedData:       "Data type has no inhabitants",
	SemaNoSuchAssoc:           "No class declares this associated type",
	SemaDuplicateField:        "Duplicate field",
	SemaMalformedTree:         "Malformed syntax tree",
	SemaMissingLangItem:       "Missing language item",
	SemaTypeMismatch:          "Type mismatch",
	SemaRecursiveType:         "Recursive type",
	SemaCannotInfer:           "Cannot infer type",
	SemaNoSuchField:           "No such field",
	SemaNoBinaryOp:            "Operator not defined for operands",
	SemaAmbiguousClassField:   "Ambiguous class member",
	SemaUnresolvedObligation:  "Unresolved class obligation",
	SemaAmbiguousImpl:         "Ambiguous class implementation",
	IOLoadFileError:           "I/O load file error",
	IODecodeError:             "Syntax tree decode error",
	ProjInfo:                  "Project information",
	ProjInvalidConfig:         "Invalid project configuration",
	ObsInfo:                   "Observability information",
	ObsTimings:                "Pipeline timings",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
