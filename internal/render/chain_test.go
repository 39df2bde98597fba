package render

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"forge/internal/collection"
	"forge/internal/identifier"
	"forge/internal/prompt"
	"forge/internal/store"
	"forge/internal/template"
)

func baseCollection() *collection.Collection {
	return &collection.Collection{
		Profiles: map[string]*collection.Profile{},
		Recipes:  map[string]*collection.Recipe{},
		Chains:   map[string]*collection.Chain{},
	}
}

// Scenario C (§8): a Command chain with Trim(Both) strips surrounding
// whitespace from the captured stdout.
func TestScenarioC_commandTrimBoth(t *testing.T) {
	col := baseCollection()
	col.Chains["chain1"] = &collection.Chain{
		ID: identifier.MustParse("chain1"),
		Source: collection.ChainSource{
			Kind: collection.SourceCommand,
			Command: &collection.CommandSource{
				Command: []template.Template{
					template.Raw("printf"),
					template.Raw("  hello!  "),
				},
			},
		},
		Trim: collection.TrimBoth,
	}
	ctx := NewContextBuilder(col).Build()

	tmpl, _ := template.Parse("{{chains.chain1}}")
	got, err := RenderString(context.Background(), ctx, tmpl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello!" {
		t.Fatalf("got %q, want %q", got, "hello!")
	}
}

// Scenario D (§8): a File chain reading a nonexistent file surfaces a
// ChainWrapError(FileError) naming the chain and the path.
func TestScenarioD_fileChainMissing(t *testing.T) {
	col := baseCollection()
	col.Chains["chain1"] = &collection.Chain{
		ID: identifier.MustParse("chain1"),
		Source: collection.ChainSource{
			Kind: collection.SourceFile,
			File: &collection.FileSource{Path: template.Raw("bogus.txt")},
		},
	}
	ctx := NewContextBuilder(col).Build()

	tmpl, _ := template.Parse("{{chains.chain1}}")
	_, err := Render(context.Background(), ctx, tmpl)
	if err == nil {
		t.Fatal("expected error")
	}

	var wrap *ChainWrapError
	if !errors.As(err, &wrap) || wrap.ChainID != "chain1" {
		t.Fatalf("got %v, want ChainWrapError for chain1", err)
	}
	var fileErr *FileError
	if !errors.As(err, &fileErr) || fileErr.Path != "bogus.txt" {
		t.Fatalf("got %v, want FileError for bogus.txt", err)
	}
}

// Scenario E (§8): a chain can reference another chain's template, nesting
// through the render driver.
func TestScenarioE_nestedChain(t *testing.T) {
	col := baseCollection()
	col.Chains["inner"] = &collection.Chain{
		ID: identifier.MustParse("inner"),
		Source: collection.ChainSource{
			Kind: collection.SourceCommand,
			Command: &collection.CommandSource{
				Command: []template.Template{template.Raw("printf"), template.Raw("hello!")},
			},
		},
	}

	answerTmpl, _ := template.Parse("answer: {{chains.inner}}")
	col.Chains["outer"] = &collection.Chain{
		ID: identifier.MustParse("outer"),
		Source: collection.ChainSource{
			Kind: collection.SourceCommand,
			Command: &collection.CommandSource{
				Command: []template.Template{template.Raw("printf"), answerTmpl},
			},
		},
	}
	ctx := NewContextBuilder(col).Build()

	tmpl, _ := template.Parse("{{chains.outer}}")
	got, err := RenderString(context.Background(), ctx, tmpl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "answer: hello!" {
		t.Fatalf("got %q, want %q", got, "answer: hello!")
	}
}

// Scenario F (§8): invalid UTF-8 stdout is preserved as raw bytes for a
// byte-oriented render, but fails a string render.
func TestScenarioF_invalidUTF8Stdout(t *testing.T) {
	col := baseCollection()
	col.Chains["chain1"] = &collection.Chain{
		ID: identifier.MustParse("chain1"),
		Source: collection.ChainSource{
			Kind: collection.SourceCommand,
			Command: &collection.CommandSource{
				Command: []template.Template{
					template.Raw("printf"),
					template.Raw("\\xc3\\x28"),
				},
			},
		},
	}
	ctx := NewContextBuilder(col).Build()

	tmpl, _ := template.Parse("{{chains.chain1}}")

	b, err := Render(context.Background(), ctx, tmpl)
	if err != nil {
		t.Fatalf("byte render should not fail: %v", err)
	}
	if string(b) != "\xc3\x28" {
		t.Fatalf("got %q raw bytes", b)
	}

	_, err = RenderString(context.Background(), ctx, tmpl)
	if err == nil {
		t.Fatal("expected string render to fail on invalid UTF-8")
	}
}

func TestChain_fileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.txt")
	if err := os.WriteFile(path, []byte("file contents"), 0o644); err != nil {
		t.Fatal(err)
	}

	col := baseCollection()
	col.Chains["chain1"] = &collection.Chain{
		ID: identifier.MustParse("chain1"),
		Source: collection.ChainSource{
			Kind: collection.SourceFile,
			File: &collection.FileSource{Path: template.Raw(path)},
		},
	}
	ctx := NewContextBuilder(col).Build()

	tmpl, _ := template.Parse("{{chains.chain1}}")
	got, err := RenderString(context.Background(), ctx, tmpl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "file contents" {
		t.Fatalf("got %q", got)
	}
}

func TestChain_promptSourceWithDefault(t *testing.T) {
	col := baseCollection()
	col.Chains["chain1"] = &collection.Chain{
		ID: identifier.MustParse("chain1"),
		Source: collection.ChainSource{
			Kind: collection.SourcePrompt,
			Prompt: &collection.PromptSource{
				Message: ptrTemplate(template.Raw("name?")),
				Default: ptrTemplate(template.Raw("fallback")),
			},
		},
	}
	ctx := NewContextBuilder(col).WithPrompter(prompt.Static{}).Build()

	tmpl, _ := template.Parse("{{chains.chain1}}")
	got, err := RenderString(context.Background(), ctx, tmpl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "fallback" {
		t.Fatalf("got %q, want fallback", got)
	}
}

func TestChain_promptSourceNoResponseNoDefault(t *testing.T) {
	col := baseCollection()
	col.Chains["chain1"] = &collection.Chain{
		ID: identifier.MustParse("chain1"),
		Source: collection.ChainSource{
			Kind: collection.SourcePrompt,
			Prompt: &collection.PromptSource{
				Message: ptrTemplate(template.Raw("name?")),
			},
		},
	}
	ctx := NewContextBuilder(col).WithPrompter(prompt.Static{}).Build()

	tmpl, _ := template.Parse("{{chains.chain1}}")
	_, err := Render(context.Background(), ctx, tmpl)
	if !errors.Is(err, ErrPromptNoResponse) {
		t.Fatalf("got %v, want ErrPromptNoResponse", err)
	}
}

func TestChain_sensitiveFlagPropagates(t *testing.T) {
	col := baseCollection()
	col.Chains["secret"] = &collection.Chain{
		ID: identifier.MustParse("secret"),
		Source: collection.ChainSource{
			Kind: collection.SourceCommand,
			Command: &collection.CommandSource{
				Command: []template.Template{template.Raw("printf"), template.Raw("topsecret")},
			},
		},
		Sensitive: true,
	}
	ctx := NewContextBuilder(col).Build()

	tmpl, _ := template.Parse("{{chains.secret}}")
	chunks := Expand(context.Background(), ctx, tmpl)
	if len(chunks) != 1 || !chunks[0].Sensitive {
		t.Fatalf("got %+v, want one sensitive chunk", chunks)
	}
}

func TestChain_requestSourceNeverWithoutHistory(t *testing.T) {
	col := baseCollection()
	col.Recipes["r1"] = &collection.Recipe{
		ID:     identifier.MustParse("r1"),
		Method: template.Raw("GET"),
		URL:    template.Raw("http://example.invalid"),
	}
	col.Chains["chain1"] = &collection.Chain{
		ID: identifier.MustParse("chain1"),
		Source: collection.ChainSource{
			Kind: collection.SourceRequest,
			Request: &collection.RequestSource{
				Recipe:  identifier.MustParse("r1"),
				Trigger: collection.Trigger{Kind: collection.TriggerNever},
				Section: collection.Section{Kind: collection.SectionBody},
			},
		},
	}
	ctx := NewContextBuilder(col).WithStore(store.NewMemory()).Build()

	tmpl, _ := template.Parse("{{chains.chain1}}")
	_, err := Render(context.Background(), ctx, tmpl)
	if !errors.Is(err, ErrNoResponse) {
		t.Fatalf("got %v, want ErrNoResponse", err)
	}
}

func TestChain_requestSourceNoHistoryReusesStore(t *testing.T) {
	col := baseCollection()
	col.Recipes["r1"] = &collection.Recipe{
		ID:     identifier.MustParse("r1"),
		Method: template.Raw("GET"),
		URL:    template.Raw("http://example.invalid"),
	}
	col.Chains["chain1"] = &collection.Chain{
		ID: identifier.MustParse("chain1"),
		Source: collection.ChainSource{
			Kind: collection.SourceRequest,
			Request: &collection.RequestSource{
				Recipe:  identifier.MustParse("r1"),
				Trigger: collection.Trigger{Kind: collection.TriggerNoHistory},
				Section: collection.Section{Kind: collection.SectionBody},
			},
		},
	}

	st := store.NewMemory()
	if err := st.InsertExchange(store.Exchange{
		RecipeID:  "r1",
		Body:      []byte("cached"),
		EndTime:   time.Now(),
	}); err != nil {
		t.Fatal(err)
	}

	ctx := NewContextBuilder(col).WithStore(st).Build()
	tmpl, _ := template.Parse("{{chains.chain1}}")
	got, err := RenderString(context.Background(), ctx, tmpl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "cached" {
		t.Fatalf("got %q, want cached", got)
	}
}

// recordingPrompter captures the Request it was asked, so tests can assert
// on fields Static/Interactive don't expose (e.g. Sensitive).
type recordingPrompter struct {
	got   prompt.Request
	reply prompt.Reply
}

func (p *recordingPrompter) Prompt(req prompt.Request) <-chan prompt.Reply {
	p.got = req
	ch := make(chan prompt.Reply, 1)
	ch <- p.reply
	close(ch)
	return ch
}

func TestChain_promptSourceSensitiveFlagThreaded(t *testing.T) {
	col := baseCollection()
	col.Chains["secret"] = &collection.Chain{
		ID: identifier.MustParse("secret"),
		Source: collection.ChainSource{
			Kind: collection.SourcePrompt,
			Prompt: &collection.PromptSource{
				Message: ptrTemplate(template.Raw("password?")),
			},
		},
		Sensitive: true,
	}
	rec := &recordingPrompter{reply: prompt.Reply{Value: "hunter2", OK: true}}
	ctx := NewContextBuilder(col).WithPrompter(rec).Build()

	tmpl, _ := template.Parse("{{chains.secret}}")
	got, err := RenderString(context.Background(), ctx, tmpl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hunter2" {
		t.Fatalf("got %q", got)
	}
	if !rec.got.Sensitive {
		t.Fatal("expected Request.Sensitive to be true for a sensitive chain")
	}
}

// blockingPrompter never replies, so a render using it only ever completes
// via the caller's context being cancelled.
type blockingPrompter struct{}

func (blockingPrompter) Prompt(prompt.Request) <-chan prompt.Reply {
	return make(chan prompt.Reply)
}

func TestChain_promptSourceCancellation(t *testing.T) {
	col := baseCollection()
	col.Chains["chain1"] = &collection.Chain{
		ID: identifier.MustParse("chain1"),
		Source: collection.ChainSource{
			Kind: collection.SourcePrompt,
			Prompt: &collection.PromptSource{
				Message: ptrTemplate(template.Raw("name?")),
			},
		},
	}
	ctx := NewContextBuilder(col).WithPrompter(blockingPrompter{}).Build()

	goCtx, cancel := context.WithCancel(context.Background())
	cancel()

	tmpl, _ := template.Parse("{{chains.chain1}}")
	_, err := Render(goCtx, ctx, tmpl)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

func ptrTemplate(t template.Template) *template.Template {
	return &t
}
