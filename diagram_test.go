package pandoc

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func testDiagramProcessor(raster *fakeRasterizer, highDPI bool) *diagramProcessor {
	return &diagramProcessor{
		raster:   raster,
		themeCSS: "text { fill: black; }",
		highDPI:  highDPI,
		logger:   quietLogger(),
	}
}

func TestDiagramProcessor_InjectsStyleAlways(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		markup string
	}{
		{
			name:   "creates style element when absent",
			markup: `<svg width="100" height="50"><rect/></svg>`,
		},
		{
			name:   "prepends to existing style element",
			markup: `<svg width="100" height="50"><style>rect { stroke: red; }</style><rect/></svg>`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := testDiagramProcessor(&fakeRasterizer{}, false)
			frag := mustParse(t, tt.markup)
			d.Process(context.Background(), frag, renderContext{format: FormatHTML})

			got := frag.String()
			if !strings.Contains(got, "text { fill: black; }") {
				t.Errorf("theme CSS missing from diagram:\n%s", got)
			}
			if strings.Contains(tt.markup, "stroke: red") && !strings.Contains(got, "stroke: red") {
				t.Errorf("existing style content lost:\n%s", got)
			}
		})
	}
}

func TestDiagramProcessor_NormalizesSelfRefs(t *testing.T) {
	t.Parallel()

	d := testDiagramProcessor(&fakeRasterizer{}, false)
	frag := mustParse(t,
		`<svg width="10" height="10"><path marker-end="url(app://obsidian.md/index.html#arrow)"/></svg>`)
	d.Process(context.Background(), frag, renderContext{format: FormatHTML})

	got := frag.String()
	if !strings.Contains(got, `marker-end="url(#arrow)"`) {
		t.Errorf("self-reference not normalized:\n%s", got)
	}
}

func TestDiagramProcessor_RasterizesForNonHTML(t *testing.T) {
	t.Parallel()

	raster := &fakeRasterizer{png: []byte{1, 2, 3}}
	d := testDiagramProcessor(raster, false)
	frag := mustParse(t, `<svg width="120" height="80"><rect/></svg>`)
	d.Process(context.Background(), frag, renderContext{format: FormatPDF})

	got := frag.String()
	if strings.Contains(got, "<svg") {
		t.Errorf("vector markup should be replaced for non-HTML targets:\n%s", got)
	}
	for _, want := range []string{`src="data:image/png;base64,`, `width="120"`, `height="80"`} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if raster.calls != 1 {
		t.Errorf("rasterizer called %d times, want 1", raster.calls)
	}
}

func TestDiagramProcessor_KeepsVectorForHTML(t *testing.T) {
	t.Parallel()

	raster := &fakeRasterizer{}
	d := testDiagramProcessor(raster, false)
	frag := mustParse(t, `<svg width="120" height="80"><rect/></svg>`)
	d.Process(context.Background(), frag, renderContext{format: FormatHTML})

	if !strings.Contains(frag.String(), "<svg") {
		t.Errorf("HTML target must keep vector markup:\n%s", frag.String())
	}
	if raster.calls != 0 {
		t.Errorf("rasterizer called %d times, want 0", raster.calls)
	}
}

func TestDiagramProcessor_HighDPIUsesDoubleScale(t *testing.T) {
	t.Parallel()

	raster := &fakeRasterizer{}
	d := testDiagramProcessor(raster, true)
	frag := mustParse(t, `<svg width="10" height="10"></svg>`)
	d.Process(context.Background(), frag, renderContext{format: FormatDOCX})

	if len(raster.scales) != 1 || raster.scales[0] != 2.0 {
		t.Errorf("scales = %v, want [2]", raster.scales)
	}
}

func TestDiagramProcessor_FailureKeepsVector(t *testing.T) {
	t.Parallel()

	raster := &fakeRasterizer{err: errors.New("no browser")}
	d := testDiagramProcessor(raster, false)
	frag := mustParse(t, `<svg width="10" height="10"></svg>`)
	d.Process(context.Background(), frag, renderContext{format: FormatPDF})

	if !strings.Contains(frag.String(), "<svg") {
		t.Errorf("failed rasterization must leave the vector element:\n%s", frag.String())
	}
}

func TestDiagramDimensions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		markup string
		wantW  float64
		wantH  float64
	}{
		{
			name:   "explicit attributes",
			markup: `<svg width="640" height="480"></svg>`,
			wantW:  640, wantH: 480,
		},
		{
			name:   "px suffix tolerated",
			markup: `<svg width="640px" height="480px"></svg>`,
			wantW:  640, wantH: 480,
		},
		{
			name:   "viewBox fallback",
			markup: `<svg viewBox="0 0 200 100"></svg>`,
			wantW:  200, wantH: 100,
		},
		{
			name:   "intrinsic default",
			markup: `<svg></svg>`,
			wantW:  defaultDiagramWidth, wantH: defaultDiagramHeight,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			frag := mustParse(t, tt.markup)
			svgs := frag.findAll(kindDiagram)
			if len(svgs) != 1 {
				t.Fatalf("found %d diagrams, want 1", len(svgs))
			}
			w, h := diagramDimensions(svgs[0])
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("dimensions = %vx%v, want %vx%v", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}
