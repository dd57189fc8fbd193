package pandoc

import (
	"fmt"
	"strings"

	"github.com/Xdavlar/obsidian-pandoc/internal/yamlutil"
)

const frontMatterDelimiter = "---"

// splitFrontMatter separates a leading YAML front-matter block from the note
// body. Scalar fields become string metadata; nested structures are rendered
// with their default formatting. A malformed block is treated as body text
// rather than failing the render.
func splitFrontMatter(text string) (map[string]string, string) {
	meta := map[string]string{}

	rest, ok := strings.CutPrefix(text, frontMatterDelimiter+"\n")
	if !ok {
		if rest, ok = strings.CutPrefix(text, frontMatterDelimiter+"\r\n"); !ok {
			return meta, text
		}
	}

	end := strings.Index(rest, "\n"+frontMatterDelimiter)
	if end < 0 {
		return meta, text
	}
	block := rest[:end]
	body := rest[end+len("\n"+frontMatterDelimiter):]
	if nl := strings.Index(body, "\n"); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = ""
	}

	var fields map[string]any
	if err := yamlutil.Unmarshal([]byte(block), &fields); err != nil {
		return meta, text
	}
	for k, v := range fields {
		meta[k] = fmt.Sprintf("%v", v)
	}
	return meta, body
}
