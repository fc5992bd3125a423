package trace

import "time"

// Kind is the kind of an event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
)

var kindNames = [...]string{
	KindSpanBegin: "begin",
	KindSpanEnd:   "end",
	KindPoint:     "point",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Scope is how fine-grained an event is.
type Scope uint8

const (
	// ScopeDriver covers whole files and commands.
	ScopeDriver Scope = iota + 1
	// ScopePass covers lowering, solving and concretization of one file.
	ScopePass
	// ScopeItem covers one definition or one specialization.
	ScopeItem
	// ScopeNode is below items; nothing emits it yet.
	ScopeNode
)

var scopeNames = [...]string{
	ScopeDriver: "driver",
	ScopePass:   "pass",
	ScopeItem:   "item",
	ScopeNode:   "node",
}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// Event is one trace record.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for roots
	Name     string // "lower", "infer_def", "mono:def" ...
	Detail   string
	Extra    map[string]string
}
