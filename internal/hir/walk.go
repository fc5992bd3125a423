package hir

// Walk visits e and its sub-expressions depth first. Returning false from fn
// skips the children of that node. Bindings are not visited; see WalkBinding.
func Walk(e *Expr, fn func(*Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, c := range Children(e) {
		Walk(c, fn)
	}
}

// Children lists the direct sub-expressions of e in evaluation order.
func Children(e *Expr) []*Expr {
	switch d := e.Data.(type) {
	case TupleData:
		return d.Items
	case ListData:
		return append(append([]*Expr(nil), d.Items...), d.Tails...)
	case RecordData:
		return fieldValues(d.Fields)
	case AccessData:
		return []*Expr{d.Record}
	case UnaryData:
		return []*Expr{d.Operand}
	case BinaryData:
		return []*Expr{d.Lhs, d.Rhs}
	case MatchData:
		out := []*Expr{d.Scrutinee}
		for _, a := range d.Arms {
			out = append(out, a.Body)
		}
		return out
	case FuncData:
		return []*Expr{d.Body}
	case ApplyData:
		return []*Expr{d.Func, d.Arg}
	case ConsData:
		return []*Expr{d.Inner}
	case IntrinsicData:
		return d.Args
	case UpdateData:
		return append([]*Expr{d.Record}, fieldValues(d.Fields)...)
	case BasinData:
		return []*Expr{d.Body}
	case SuspendData:
		return []*Expr{d.Inner}
	case HandleData:
		return []*Expr{d.Expr, d.Recv}
	}
	return nil
}

func fieldValues(fs []FieldInit) []*Expr {
	out := make([]*Expr, len(fs))
	for i, f := range fs {
		out[i] = f.Value
	}
	return out
}

// WalkBinding visits b and every nested binding.
func WalkBinding(b *Binding, fn func(*Binding)) {
	if b == nil {
		return
	}
	fn(b)
	for _, c := range subBindings(&b.Pat) {
		WalkBinding(c, fn)
	}
}

func subBindings(p *Pat) []*Binding {
	out := make([]*Binding, 0, len(p.Items)+2)
	if p.Inner != nil {
		out = append(out, p.Inner)
	}
	out = append(out, p.Items...)
	for _, f := range p.Fields {
		out = append(out, f.Binding)
	}
	if p.Tail != nil {
		out = append(out, p.Tail)
	}
	return out
}

// WalkAll visits every expression and every binding under e.
func WalkAll(e *Expr, onExpr func(*Expr), onBinding func(*Binding)) {
	Walk(e, func(x *Expr) bool {
		onExpr(x)
		if m, ok := x.Data.(MatchData); ok && onBinding != nil {
			for _, a := range m.Arms {
				WalkBinding(a.Binding, onBinding)
			}
		}
		return true
	})
}
