package pandoc

import (
	"context"
	"strings"
	"testing"
)

func TestService_RenderStandaloneDocument(t *testing.T) {
	t.Parallel()

	v := newFakeVault("/vault", map[string]string{
		"Report.md": "---\ntitle: Quarterly Report\nauthor: sam\n---\n" +
			"# Summary\n\nSee [[Appendix]].\n\n" +
			`<svg width="40" height="20"><rect/></svg>` + "\n",
		"notes/Appendix.md": "appendix body\n",
	})
	svc := newTestService(t, v, WithExtensionAppend("md"))

	result, err := svc.Render(context.Background(), RenderRequest{
		NotePath: "/vault/Report.md",
		Format:   FormatPDF,
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>Quarterly Report</title>",
		"<style>",
		"<h1",
		"Summary",
		`href="/vault/notes/Appendix.md"`,
		`src="data:image/png;base64,`, // svg rasterized for PDF target
	} {
		if !strings.Contains(result.HTML, want) {
			t.Errorf("document missing %q:\n%s", want, result.HTML)
		}
	}
	if result.Metadata["author"] != "sam" {
		t.Errorf("metadata = %v, want author=sam", result.Metadata)
	}
}

func TestService_TitleFallsBackToBaseName(t *testing.T) {
	t.Parallel()

	v := newFakeVault("/vault", map[string]string{
		"notes/Untitled Ideas.md": "body\n",
	})
	svc := newTestService(t, v)

	result, err := svc.Render(context.Background(), RenderRequest{
		NotePath: "/vault/notes/Untitled Ideas.md",
		Format:   FormatHTML,
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(result.HTML, "<title>Untitled Ideas</title>") {
		t.Errorf("fallback title missing:\n%s", result.HTML)
	}
}

func TestService_EmbeddedRenderReturnsFragment(t *testing.T) {
	t.Parallel()

	v := newFakeVault("/vault", map[string]string{
		"Child.md": "child body\n",
	})
	svc := newTestService(t, v)

	result, err := svc.Render(context.Background(), RenderRequest{
		NotePath:  "/vault/Child.md",
		Format:    FormatPDF,
		Ancestors: []string{"/vault/Parent.md"},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(result.HTML, "<!DOCTYPE") || strings.Contains(result.HTML, "<title>") {
		t.Errorf("embedded render must not be a standalone document:\n%s", result.HTML)
	}
	if !strings.Contains(result.HTML, "child body") {
		t.Errorf("fragment content missing:\n%s", result.HTML)
	}
}

func TestService_HTMLFormatKeepsVectorDiagrams(t *testing.T) {
	t.Parallel()

	raster := &fakeRasterizer{}
	v := newFakeVault("/vault", map[string]string{
		"D.md": `<svg width="10" height="10"></svg>` + "\n",
	})
	svc := newTestService(t, v, WithRasterizer(raster))

	result, err := svc.Render(context.Background(), RenderRequest{
		NotePath: "/vault/D.md",
		Format:   FormatHTML,
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(result.HTML, "<svg") {
		t.Errorf("HTML target must keep SVG markup:\n%s", result.HTML)
	}
	if raster.calls != 0 {
		t.Errorf("rasterizer called %d times for HTML target, want 0", raster.calls)
	}
}

func TestService_MarkdownFormatRewritesRawMarkdown(t *testing.T) {
	t.Parallel()

	v := newFakeVault("/vault", map[string]string{
		"Note.md":            "---\ntitle: t\n---\nintro ![[diagram.png|300]]\n",
		"assets/diagram.png": "",
	})
	svc := newTestService(t, v)

	result, err := svc.Render(context.Background(), RenderRequest{
		NotePath: "/vault/Note.md",
		Format:   FormatMarkdown,
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "intro ![diagram.png](file:///vault/assets/diagram.png){width=300px}\n"
	if result.HTML != want {
		t.Errorf("markdown export:\ngot  %q\nwant %q", result.HTML, want)
	}
	if result.Metadata["title"] != "t" {
		t.Errorf("metadata = %v", result.Metadata)
	}
}

func TestService_RenderValidation(t *testing.T) {
	t.Parallel()

	v := newFakeVault("/vault", map[string]string{"A.md": "x"})
	svc := newTestService(t, v)

	tests := []struct {
		name string
		req  RenderRequest
	}{
		{name: "empty note path", req: RenderRequest{Format: FormatPDF}},
		{name: "invalid format", req: RenderRequest{NotePath: "/vault/A.md", Format: "rtf"}},
		{name: "unreadable root note", req: RenderRequest{NotePath: "/vault/Missing.md", Format: FormatPDF}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := svc.Render(context.Background(), tt.req); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNewService_Validation(t *testing.T) {
	t.Parallel()

	if _, err := NewService(nil); err == nil {
		t.Fatal("expected error for nil vault")
	}

	v := newFakeVault("/vault", nil)
	if _, err := NewService(v, WithLinkPolicy("bogus"), WithRasterizer(&fakeRasterizer{})); err == nil {
		t.Fatal("expected error for invalid link policy")
	}
	if _, err := NewService(v, WithCSSMode("bogus"), WithRasterizer(&fakeRasterizer{})); err == nil {
		t.Fatal("expected error for invalid CSS mode")
	}
}

func TestService_ConcurrentRenders(t *testing.T) {
	t.Parallel()

	v := newFakeVault("/vault", map[string]string{
		"A.md": "alpha ![[B]]\n",
		"B.md": "beta\n",
	})
	svc := newTestService(t, v)

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := svc.Render(context.Background(), RenderRequest{
				NotePath: "/vault/A.md",
				Format:   FormatPDF,
			})
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		if err := <-done; err != nil {
			t.Errorf("concurrent render failed: %v", err)
		}
	}
}
