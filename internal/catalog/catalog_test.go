package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"

	"github.com/ziadkadry99/puter-gallery/internal/platform"
	"github.com/ziadkadry99/puter-gallery/internal/platform/platformtest"
)

func noop(context.Context, Section) {}

func TestNewPreservesOrder(t *testing.T) {
	keyed := orderedmap.New[string, Example]()
	keyed.Set("zeta", Example{Action: noop})
	keyed.Set("alpha", Example{Title: "Alpha!", Action: noop})

	c, err := New(
		Entry{Name: "B", Examples: List{{Title: "one", Action: noop}, {Title: "two", Action: noop}}},
		Entry{Name: "A", Examples: NewKeyed(keyed)},
		Entry{Name: "Empty"},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := strings.Join(c.Names(), ","); got != "B,A,Empty" {
		t.Errorf("Names = %s", got)
	}
	if c.First() != "B" {
		t.Errorf("First = %q", c.First())
	}

	examples, ok := c.Examples("A")
	if !ok || len(examples) != 2 {
		t.Fatalf("Examples(A) = %v, %v", examples, ok)
	}
	if examples[0].Title != "zeta" || examples[1].Title != "Alpha!" {
		t.Errorf("keyed titles = %q, %q", examples[0].Title, examples[1].Title)
	}

	if ex, ok := c.Examples("Empty"); !ok || len(ex) != 0 {
		t.Errorf("Empty category = %v, %v", ex, ok)
	}
}

func TestNewRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
	}{
		{"empty name", []Entry{{Name: ""}}},
		{"duplicate", []Entry{{Name: "A"}, {Name: "A"}}},
		{"nil action", []Entry{{Name: "A", Examples: List{{Title: "x"}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.entries...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLookupAndFind(t *testing.T) {
	c, err := New(Entry{Name: "A", Examples: List{{Title: "one", Action: noop}, {Title: "two", Action: noop}}})
	if err != nil {
		t.Fatal(err)
	}
	if ex, ok := c.Lookup("A", 1); !ok || ex.Title != "two" {
		t.Errorf("Lookup(A,1) = %q, %v", ex.Title, ok)
	}
	for _, idx := range []int{-1, 2} {
		if _, ok := c.Lookup("A", idx); ok {
			t.Errorf("Lookup(A,%d) should fail", idx)
		}
	}
	if _, ok := c.Lookup("missing", 0); ok {
		t.Error("Lookup on unknown category should fail")
	}
	if _, i, ok := c.Find("A", "two"); !ok || i != 1 {
		t.Errorf("Find = %d, %v", i, ok)
	}
	if _, _, ok := c.Find("A", "three"); ok {
		t.Error("Find should miss")
	}
}

func TestOutputDetach(t *testing.T) {
	o := NewOutput()
	o.Write("first")
	o.Write("second")
	if o.String() != "first\nsecond" {
		t.Errorf("String = %q", o.String())
	}
	o.Detach()
	o.Write("late")
	if !o.Detached() || o.Dropped() != 1 {
		t.Errorf("Detached=%v Dropped=%d", o.Detached(), o.Dropped())
	}
	if strings.Contains(o.String(), "late") {
		t.Error("write after detach was kept")
	}
}

func TestFormatError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{errors.New("disk full"), "Error: disk full"},
		{fmt.Errorf("kv set: %w", platform.ErrNotAuthenticated), "Error: kv set: authentication required\nPlease make sure you are authenticated with Puter."},
	}
	for _, tt := range tests {
		if got := FormatError(tt.err); got != tt.want {
			t.Errorf("FormatError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestInvoke(t *testing.T) {
	ctx := context.Background()

	out := NewOutput()
	Invoke(ctx, out, zap.NewNop(), func(context.Context) (int, error) { return 42, nil },
		func(n int) string { return fmt.Sprintf("got %d", n) })
	if out.String() != "got 42" {
		t.Errorf("success output = %q", out.String())
	}

	out = NewOutput()
	formatted := false
	Invoke(ctx, out, zap.NewNop(), func(context.Context) (int, error) { return 0, errors.New("boom") },
		func(int) string { formatted = true; return "" })
	if out.String() != "Error: boom" {
		t.Errorf("failure output = %q", out.String())
	}
	if formatted {
		t.Error("format called on failure")
	}
}

func runExample(t *testing.T, c *Catalog, category, title string) string {
	t.Helper()
	ex, _, ok := c.Find(category, title)
	if !ok {
		t.Fatalf("example %s/%s not found", category, title)
	}
	out := NewOutput()
	ex.Action(context.Background(), out)
	return out.String()
}

func TestDefaultCatalogShape(t *testing.T) {
	c, err := Default(platformtest.New().Platform(), zap.NewNop())
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	want := []string{CategoryAuth, CategoryFS, CategoryKV, CategoryAI, CategoryHosting}
	if got := c.Names(); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("Names = %v", got)
	}
	kv, _ := c.Examples(CategoryKV)
	var titles []string
	for _, ex := range kv {
		titles = append(titles, ex.Title)
	}
	if strings.Join(titles, "|") != "Set Value|Get Value|List Keys|Increment Counter" {
		t.Errorf("kv titles = %v", titles)
	}
}

func TestDefaultExamples(t *testing.T) {
	doubles := platformtest.New()
	c, err := Default(doubles.Platform(), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	steps := []struct {
		category, title, want string
	}{
		{CategoryAuth, "Current User", "Signed in as puter-smith (id u1)"},
		{CategoryFS, "List Directory", "Directory is empty"},
		{CategoryFS, "Write File", "File written successfully: /hello.txt"},
		{CategoryFS, "Read File", "File content: Hello, world!"},
		{CategoryFS, "Make Directory", "Directory created: /documents"},
		{CategoryFS, "List Directory", "Directory contents: documents/, hello.txt"},
		{CategoryKV, "Get Value", `No value stored for "name"`},
		{CategoryKV, "Set Value", "Key-value pair set successfully"},
		{CategoryKV, "Get Value", `Value for "name": Puter Smith`},
		{CategoryKV, "Increment Counter", `Counter "visits" is now 1`},
		{CategoryKV, "Increment Counter", `Counter "visits" is now 2`},
		{CategoryKV, "List Keys", "Keys: name, visits"},
		{CategoryAI, "Chat", "AI response: Paris"},
		{CategoryHosting, "Create Website", "Website hosted at: https://site-2.gallery.test"},
	}
	for _, s := range steps {
		if got := runExample(t, c, s.category, s.title); got != s.want {
			t.Errorf("%s/%s = %q, want %q", s.category, s.title, got, s.want)
		}
	}

	if doubles.AI.Prompts[0] != "What is the capital of France?" {
		t.Errorf("prompt = %q", doubles.AI.Prompts[0])
	}
	if _, err := doubles.FS.Read(context.Background(), "/site-1/index.html"); err != nil {
		t.Errorf("site index not written: %v", err)
	}
}

func TestDefaultExamplesReportFailures(t *testing.T) {
	doubles := platformtest.New()
	doubles.KV.Err = fmt.Errorf("kv: %w", platform.ErrNotAuthenticated)
	doubles.FS.Err = errors.New("quota exceeded")
	c, err := Default(doubles.Platform(), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	if got := runExample(t, c, CategoryKV, "Set Value"); got != "Error: kv: authentication required\n"+AuthHint {
		t.Errorf("kv failure = %q", got)
	}
	if got := runExample(t, c, CategoryFS, "Read File"); got != "Error: quota exceeded" {
		t.Errorf("fs failure = %q", got)
	}
	if got := runExample(t, c, CategoryHosting, "Create Website"); got != "Error: quota exceeded" {
		t.Errorf("hosting failure = %q", got)
	}
}

func TestReadFileRejectsBinary(t *testing.T) {
	doubles := platformtest.New()
	if _, err := doubles.FS.Write(context.Background(), "hello.txt", []byte{0xff, 0xfe}); err != nil {
		t.Fatal(err)
	}
	c, _ := Default(doubles.Platform(), zap.NewNop())
	got := runExample(t, c, CategoryFS, "Read File")
	if got != "Error: "+platform.ErrNotText.Error() {
		t.Errorf("Read File = %q", got)
	}
}
