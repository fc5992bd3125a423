package mono

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"tao/internal/ast"
	"tao/internal/diag"
	"tao/internal/hir"
	"tao/internal/trace"
	"tao/internal/types"
)

// Options tunes concretization.
type Options struct {
	// EntryAttr is the attribute marking the entry definition; "main" when empty.
	EntryAttr string
	// Jobs bounds the workers specializing one wave; 1 when zero or negative.
	Jobs int
	// MaxInstances caps the number of specializations. A program whose
	// generics grow without bound hits it instead of running forever.
	MaxInstances int
}

const defaultMaxInstances = 1 << 16

func (o Options) withDefaults() Options {
	if o.EntryAttr == "" {
		o.EntryAttr = "main"
	}
	if o.Jobs <= 0 {
		o.Jobs = 1
	}
	if o.MaxInstances <= 0 {
		o.MaxInstances = defaultMaxInstances
	}
	return o
}

type keyState uint8

const (
	stateUnvisited keyState = iota
	stateInProgress
	stateDone
)

// request asks for one specialization. A key is requested at most once.
type request struct {
	key    Key
	def    types.DefID
	member types.MemberID
	field  string
	args   []types.ConTyID
}

// shared is the state every worker of a run sees.
type shared struct {
	prog   *hir.Program
	out    *Program
	opts   Options
	tracer trace.Tracer
	parent uint64

	mu    sync.Mutex
	state map[Key]keyState
	next  []request
}

func newShared(prog *hir.Program, opts Options) *shared {
	return &shared{
		prog: prog,
		out: &Program{
			Types: types.NewInterner(),
			Names: prog.Table,
			Defs:  make(map[Key]*Def),
			src:   prog,
		},
		opts:  opts,
		state: make(map[Key]keyState),
	}
}

// enqueue schedules r unless its key was seen before. It reports false when
// the instance limit would be exceeded.
func (s *shared) enqueue(r request) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state[r.key] != stateUnvisited {
		return true
	}
	if len(s.state) >= s.opts.MaxInstances {
		return false
	}
	s.state[r.key] = stateInProgress
	s.next = append(s.next, r)
	return true
}

func (s *shared) take() []request {
	s.mu.Lock()
	defer s.mu.Unlock()
	wave := s.next
	s.next = nil
	return wave
}

func (s *shared) finish(d *Def) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out.Defs[d.Key] = d
	s.state[d.Key] = stateDone
}

// concretizer specializes one key: generics of scope stand for args and
// Self stands for self.
type concretizer struct {
	s     *shared
	key   Key
	scope types.GenScopeID
	args  []types.ConTyID
	self  types.ConTyID
}

// with returns a concretizer for another generic context within the same key.
func (c *concretizer) with(scope types.GenScopeID, args []types.ConTyID, self types.ConTyID) *concretizer {
	return &concretizer{s: c.s, key: c.key, scope: scope, args: args, self: self}
}

// Concretize specializes every definition reachable from the entry point of
// prog. Entry point problems are reported to rep and yield a nil program with
// a nil error; a non-nil error is an InternalError or a cancelled context.
func Concretize(ctx context.Context, prog *hir.Program, opts Options, rep diag.Reporter) (*Program, error) {
	opts = opts.withDefaults()
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePass, "mono", trace.CurrentSpan(ctx).SpanID)
	defer span.End("")

	entry, ok := findEntry(prog, opts.EntryAttr, rep)
	if !ok {
		return nil, nil
	}

	s := newShared(prog, opts)
	s.tracer = tracer
	s.parent = span.ID()
	s.out.Entry = defKey(entry, nil)
	s.enqueue(request{key: s.out.Entry, def: entry})

	waves := 0
	for wave := s.take(); len(wave) > 0; wave = s.take() {
		waves++
		if err := s.run(ctx, wave); err != nil {
			return nil, err
		}
	}
	span.WithExtra("defs", strconv.Itoa(len(s.out.Defs))).WithExtra("waves", strconv.Itoa(waves))
	return s.out, nil
}

// run specializes one wave. Workers never wait on each other: a key met while
// lowering is only enqueued for the next wave, so recursion cannot deadlock.
func (s *shared) run(ctx context.Context, wave []request) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Jobs)
	for _, r := range wave {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return s.specialize(r)
		})
	}
	return g.Wait()
}

func (s *shared) specialize(r request) (err error) {
	defer recoverInternal(&err)
	sp := trace.Begin(s.tracer, trace.ScopeItem, "mono:def", s.parent)
	defer sp.End("")
	sp.WithExtra("key", r.key.String())

	table := s.prog.Table
	c := &concretizer{s: s, key: r.key, args: r.args}
	var (
		body *hir.Expr
		name string
	)
	switch r.key.Kind {
	case KeyDef:
		d := table.Def(r.def)
		if d == nil {
			c.fail("unknown definition %d", r.def)
		}
		c.scope = d.GenScope
		name = d.Name
		body = s.prog.Defs[r.def]
		if body == nil {
			c.fail("definition %s has no body", d.Name)
		}
	case KeyMember:
		m := table.Member(r.member)
		if m == nil {
			c.fail("unknown member %d", r.member)
		}
		c.scope = m.GenScope
		c.self = c.ty(m.Self)
		b, ok := s.prog.MemberField(r.member, r.field)
		if !ok || b == nil {
			c.fail("member of %s has no field %s", table.ClassName(m.Class), r.field)
		}
		body = b
		name = fmt.Sprintf("%s::%s", s.out.Types.Display(c.self, table), r.field)
	}
	if n := s.prog.Store.GenScope(c.scope).Len(); n != len(c.args) {
		c.fail("expected %d generic arguments, got %d", n, len(c.args))
	}

	s.finish(&Def{
		Key:  r.key,
		Name: name,
		Args: c.args,
		Self: c.self,
		Body: c.expr(body),
	})
	return nil
}

// need returns the key for a use of def or member field at args and makes
// sure it gets specialized.
func (c *concretizer) need(r request) Key {
	if !c.s.enqueue(r) {
		panic(&InternalError{
			Key: c.key,
			Msg: fmt.Sprintf("more than %d specializations", c.s.opts.MaxInstances),
			Err: ErrTooManyInstances,
		})
	}
	return r.key
}

// findEntry locates the single non-generic definition carrying attr.
func findEntry(prog *hir.Program, attr string, rep diag.Reporter) (types.DefID, bool) {
	table := prog.Table
	var found []types.DefID
	for i := uint32(1); i <= table.Defs.Len(); i++ {
		if _, ok := ast.FindAttr(table.Defs.Get(i).Attrs, attr); ok {
			found = append(found, types.DefID(i))
		}
	}
	switch len(found) {
	case 0:
		diag.ReportError(rep, diag.SemaNoEntryPoint, prog.Root,
			fmt.Sprintf("no definition is marked `$[%s]`", attr)).Emit()
		return 0, false
	case 1:
	default:
		first, second := table.Def(found[0]), table.Def(found[1])
		diag.ReportError(rep, diag.SemaMultipleEntryPoints, second.Span,
			fmt.Sprintf("`%s` and `%s` are both marked `$[%s]`", first.Name, second.Name, attr)).
			WithNote(first.Span, "first entry point").
			Emit()
		return 0, false
	}

	id := found[0]
	d := table.Def(id)
	if g := prog.Store.GenScope(d.GenScope); g.Len() > 0 {
		a, _ := ast.FindAttr(d.Attrs, attr)
		diag.ReportError(rep, diag.SemaGenericEntryPoint, d.Span,
			fmt.Sprintf("entry point `%s` must not be generic", d.Name)).
			WithNote(g.Span, "generics declared here").
			WithNote(a.Name.Span.In(d.Span.File), "marked as the entry point here").
			Emit()
		return 0, false
	}
	return id, true
}
