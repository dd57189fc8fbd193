package main

import (
	"fmt"

	flag "github.com/spf13/pflag"
)

// cliFlags holds parsed command-line flags. Zero values mean "not set";
// mergeConfig applies them over the loaded config.
type cliFlags struct {
	config          string
	vault           string
	format          string
	output          string
	linkPolicy      string
	cssMode         string
	extensionAppend string
	highDPI         bool
	highDPISet      bool
	customCSS       string
	verbose         bool
	version         bool
}

// parseFlags parses args (excluding the program name) and returns the flags
// plus the positional note paths.
func parseFlags(args []string) (*cliFlags, []string, error) {
	f := &cliFlags{}
	fs := flag.NewFlagSet("obsidian-pandoc", flag.ContinueOnError)

	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVar(&f.vault, "vault", "", "vault root directory (default: the note's directory)")
	fs.StringVarP(&f.format, "format", "f", "", "output format: html, pdf, docx, latex, epub, markdown")
	fs.StringVarP(&f.output, "output", "o", "", "output directory (default: next to each note)")
	fs.StringVar(&f.linkPolicy, "link-policy", "", "internal link policy: keep-as-link, strip, text-only, literal")
	fs.StringVar(&f.cssMode, "css-mode", "", "CSS injection mode: none, light, dark, current-theme")
	fs.StringVar(&f.extensionAppend, "extension", "", "extension appended to extensionless link targets (e.g. md)")
	fs.BoolVar(&f.highDPI, "hidpi", false, "rasterize diagrams at 2x pixel density")
	fs.StringVar(&f.customCSS, "custom-css", "", "extra stylesheet path, absolute or vault-relative")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "verbose output")
	fs.BoolVar(&f.version, "version", false, "print version and exit")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: obsidian-pandoc [flags] <note.md> [<note.md> ...]\n\n")
		fmt.Fprintf(fs.Output(), "Renders vault notes as portable HTML for Pandoc.\n\nFlags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	f.highDPISet = fs.Changed("hidpi")
	return f, fs.Args(), nil
}

// mergeConfig overlays set flags onto cfg.
func (f *cliFlags) mergeConfig(cfg *Config) {
	if f.vault != "" {
		cfg.Vault = f.vault
	}
	if f.format != "" {
		cfg.Format = f.format
	}
	if f.output != "" {
		cfg.Output = f.output
	}
	if f.linkPolicy != "" {
		cfg.LinkPolicy = f.linkPolicy
	}
	if f.cssMode != "" {
		cfg.CSSMode = f.cssMode
	}
	if f.extensionAppend != "" {
		cfg.ExtensionAppend = f.extensionAppend
	}
	if f.highDPISet {
		cfg.HighDPI = f.highDPI
	}
	if f.customCSS != "" {
		cfg.CustomCSS = f.customCSS
	}
}
