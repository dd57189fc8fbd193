// Package pandoc prepares notes from an Obsidian-style vault as portable,
// self-contained HTML suitable for downstream converters such as Pandoc.
//
// # Quick Start
//
// Open a vault, create a service, and render a note:
//
//	v, err := vault.Open("/path/to/vault")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer v.Close()
//
//	svc, err := pandoc.NewService(v)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer svc.Close()
//
//	result, err := svc.Render(ctx, pandoc.RenderRequest{
//	    NotePath: "/path/to/vault/Note.md",
//	    Format:   pandoc.FormatPDF,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("note.html", []byte(result.HTML), 0644)
//
// The result contains a standalone HTML document plus the note's front-matter
// metadata. Hand result.HTML to Pandoc (or any HTML-consuming converter) to
// produce the final PDF, DOCX, or other output.
//
// # Render Pipeline
//
// Rendering a note follows these stages:
//
//  1. Front-matter split and markdown-to-HTML rendering via Goldmark
//     (GFM, footnotes, syntax highlighting, wiki-link recognition)
//  2. Asset rewriting (image embeds resolved to absolute file:// URIs)
//  3. Recursive expansion of embedded notes, cycle-safe
//  4. Internal link rewriting per the configured link policy
//  5. SVG diagram styling and, for non-HTML targets, rasterization
//  6. Document assembly (title, stylesheet, body) for the top-level note
//
// Each embedded note runs the same pipeline recursively; failures while
// expanding a single embed are logged and leave that element untouched
// rather than aborting the render.
//
// # Configuration
//
// Use functional options to customize the service:
//
//	svc, err := pandoc.NewService(v,
//	    pandoc.WithLinkPolicy(pandoc.LinkPolicyText),
//	    pandoc.WithCSSMode(pandoc.CSSDark),
//	    pandoc.WithExtensionAppend("md"),
//	    pandoc.WithHighDPIDiagrams(true),
//	)
//
// # Browser Requirements
//
// Diagram rasterization for non-HTML targets uses headless Chrome via go-rod,
// which downloads a managed Chromium on first run. Set ROD_BROWSER_BIN to use
// a pre-installed browser and ROD_NO_SANDBOX=1 in containers. Rendering to
// FormatHTML never launches a browser.
package pandoc
