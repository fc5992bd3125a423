package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"tao/internal/ast"
	"tao/internal/buildpipeline"
	"tao/internal/diag"
)

func mainDef(body *ast.Expr) ast.Def {
	return ast.Def{
		Name:  ast.Ident{Name: "main"},
		Attrs: []ast.Attr{{Name: ast.Ident{Name: "main"}}},
		Body:  body,
	}
}

func writeTree(t *testing.T, dir, name string, mod *ast.Module) string {
	t.Helper()
	path := filepath.Join(dir, name)
	format, err := ast.FormatForPath(path)
	if err != nil {
		t.Fatalf("FormatForPath: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := ast.Encode(f, mod, format); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return path
}

type recorder struct {
	mu     sync.Mutex
	events []buildpipeline.Event
}

func (r *recorder) OnEvent(ev buildpipeline.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) statuses(file string) map[buildpipeline.Stage]buildpipeline.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[buildpipeline.Stage]buildpipeline.Status)
	for _, ev := range r.events {
		if ev.File == file {
			out[ev.Stage] = ev.Status
		}
	}
	return out
}

func codes(bag *diag.Bag) []diag.Code {
	var out []diag.Code
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func TestCheckFileBoolEntry(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"ok.json", "ok.tast"} {
		path := writeTree(t, dir, name, &ast.Module{
			Source: ast.Source{Path: "ok.tao", Text: "def main = true\n"},
			Defs:   []ast.Def{mainDef(ast.BoolLit(true))},
		})
		rec := &recorder{}
		res, err := CheckFile(context.Background(), path, Options{Progress: rec})
		if err != nil {
			t.Fatalf("%s: CheckFile: %v", name, err)
		}
		if res.Failed() {
			t.Fatalf("%s: diagnostics: %s", name, spew.Sdump(res.Bag.Items()))
		}
		if res.Mono == nil || len(res.Mono.Defs) != 1 {
			t.Fatalf("%s: mono program: %s", name, spew.Sdump(res.Mono))
		}
		if got := res.FileSet.Get(res.File).Path; got != filepath.ToSlash(filepath.Join(dir, "ok.tao")) {
			t.Fatalf("%s: source path %q", name, got)
		}
		st := rec.statuses(path)
		if st[buildpipeline.StageMono] != buildpipeline.StatusDone || st[buildpipeline.StageEmit] != buildpipeline.StatusSkipped {
			t.Fatalf("%s: statuses %v", name, st)
		}
	}
}

func TestCheckFileErrorsStopBeforeMono(t *testing.T) {
	path := writeTree(t, t.TempDir(), "bad.json", &ast.Module{
		Defs: []ast.Def{mainDef(ast.Local("nope"))},
	})
	rec := &recorder{}
	res, err := CheckFile(context.Background(), path, Options{Progress: rec})
	if err != nil {
		t.Fatalf("CheckFile: %v", err)
	}
	if !res.Failed() || res.HIR == nil || res.Mono != nil {
		t.Fatalf("want lowering errors and no mono program: %s", spew.Sdump(codes(res.Bag)))
	}
	st := rec.statuses(path)
	if st[buildpipeline.StageLower] != buildpipeline.StatusError || st[buildpipeline.StageMono] != buildpipeline.StatusSkipped {
		t.Fatalf("statuses %v", st)
	}
}

func TestCheckFileMalformedTreeStopsBeforeMono(t *testing.T) {
	ext := ast.Def{Name: ast.Ident{Name: "ext"}, Hint: ast.Named("Bool")}
	path := writeTree(t, t.TempDir(), "hollow.json", &ast.Module{
		Defs: []ast.Def{ext, mainDef(ast.Tuple(ast.Local("ext"), nil))},
	})
	res, err := CheckFile(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("CheckFile: %v", err)
	}
	if !res.Failed() || res.Mono != nil {
		t.Fatalf("want a failed check and no mono program: %s", spew.Sdump(codes(res.Bag)))
	}
	if n := len(slices.DeleteFunc(codes(res.Bag), func(c diag.Code) bool { return c != diag.SemaMalformedTree })); n != 2 {
		t.Fatalf("want 2 malformed tree errors, got %v", codes(res.Bag))
	}
}

func TestCheckFileNoEntry(t *testing.T) {
	path := writeTree(t, t.TempDir(), "lib.json", &ast.Module{
		Defs: []ast.Def{{Name: ast.Ident{Name: "one"}, Body: ast.NatLit(1)}},
	})
	res, err := CheckFile(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("CheckFile: %v", err)
	}
	if got := codes(res.Bag); !slices.Equal(got, []diag.Code{diag.SemaNoEntryPoint}) {
		t.Fatalf("codes = %v", got)
	}
}

func TestCheckFileInputProblems(t *testing.T) {
	dir := t.TempDir()
	corrupt := filepath.Join(dir, "corrupt.json")
	if err := os.WriteFile(corrupt, []byte("{\"defs\": 3"), 0o600); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		path string
		code diag.Code
	}{
		{filepath.Join(dir, "missing.json"), diag.IOLoadFileError},
		{filepath.Join(dir, "tree.txt"), diag.IOLoadFileError},
		{corrupt, diag.IODecodeError},
	}
	for _, tt := range tests {
		res, err := CheckFile(context.Background(), tt.path, Options{})
		if err != nil {
			t.Fatalf("%s: CheckFile: %v", tt.path, err)
		}
		if got := codes(res.Bag); !slices.Equal(got, []diag.Code{tt.code}) {
			t.Fatalf("%s: codes = %v, want %v", tt.path, got, tt.code)
		}
		if res.FileSet.Get(res.File) == nil {
			t.Fatalf("%s: file not registered", tt.path)
		}
	}
}

func TestCheckFileTimingsAndEmit(t *testing.T) {
	path := writeTree(t, t.TempDir(), "ok.json", &ast.Module{Defs: []ast.Def{mainDef(ast.NatLit(1))}})
	emitted := 0
	res, err := CheckFile(context.Background(), path, Options{
		Timings: true,
		Emit: func(r *Result) error {
			if r.Mono == nil {
				return errors.New("no program")
			}
			emitted++
			return nil
		},
	})
	if err != nil {
		t.Fatalf("CheckFile: %v", err)
	}
	if emitted != 1 {
		t.Fatalf("emit ran %d times", emitted)
	}
	if got := codes(res.Bag); !slices.Equal(got, []diag.Code{diag.ObsTimings}) {
		t.Fatalf("codes = %v", got)
	}
	var names []string
	for _, p := range res.Timer.Phases() {
		names = append(names, p.Name)
	}
	if want := []string{"decode", "lower", "mono", "emit"}; !slices.Equal(names, want) {
		t.Fatalf("phases = %v, want %v", names, want)
	}
}

func TestCheckFileEmitError(t *testing.T) {
	path := writeTree(t, t.TempDir(), "ok.json", &ast.Module{Defs: []ast.Def{mainDef(ast.NatLit(1))}})
	boom := errors.New("boom")
	_, err := CheckFile(context.Background(), path, Options{Emit: func(*Result) error { return boom }})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}

func TestCheckFileCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := CheckFile(ctx, "whatever.json", Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestCheckFilesKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	good := writeTree(t, dir, "good.json", &ast.Module{Defs: []ast.Def{mainDef(ast.BoolLit(false))}})
	bad := writeTree(t, dir, "bad.json", &ast.Module{Defs: []ast.Def{mainDef(ast.Local("nope"))}})
	paths := []string{good, bad, good}
	rec := &recorder{}
	results, err := CheckFiles(context.Background(), paths, []string{"g1", "b", "g2"}, Options{Progress: rec}, 2)
	if err != nil {
		t.Fatalf("CheckFiles: %v", err)
	}
	if len(results) != 3 || results[0].Failed() || !results[1].Failed() || results[2].Failed() {
		t.Fatalf("unexpected results: %v", []bool{results[0].Failed(), results[1].Failed(), results[2].Failed()})
	}
	if !Failed(results) {
		t.Fatal("Failed should report the bad file")
	}
	if results[0].Bag == results[2].Bag {
		t.Fatal("files share a bag")
	}
	if st := rec.statuses("g2"); st[buildpipeline.StageMono] != buildpipeline.StatusDone {
		t.Fatalf("g2 statuses %v", st)
	}
}
