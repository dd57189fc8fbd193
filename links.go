package pandoc

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// linkRewriter finalizes hyperlinks that carry the vault's internal-link
// prefix, according to the configured link policy.
type linkRewriter struct {
	resolver        *resolver
	policy          LinkPolicy
	extensionAppend string // appended to extensionless targets, e.g. "md"
}

// Rewrite applies the effective policy to every internal link in the
// fragment. The HTML format always keeps links regardless of configuration,
// since the output stays a hypertext document.
func (l *linkRewriter) Rewrite(frag *Fragment, rc renderContext) {
	policy := l.policy
	if rc.format == FormatHTML {
		policy = LinkPolicyKeep
	}

	for _, n := range frag.findAll(kindInternalLink) {
		switch policy {
		case LinkPolicyStrip:
			removeNode(n)
		case LinkPolicyText:
			replaceNode(n, newTextNode(textContent(n)))
		case LinkPolicyLiteral:
			replaceNode(n, newTextNode("[["+textContent(n)+"]]"))
		default:
			l.keepAsLink(n, rc)
		}
	}
}

// keepAsLink resolves the internal reference and rewrites the href to an
// absolute path, falling back to a path relative to the current note's
// folder when the reference doesn't resolve.
func (l *linkRewriter) keepAsLink(n *html.Node, rc renderContext) {
	ref := strings.TrimPrefix(getAttr(n, "href"), internalLinkPrefix)
	if decoded, err := url.PathUnescape(ref); err == nil {
		ref = decoded
	}
	base, anchor := splitAnchor(ref)

	var target string
	if rf, ok := l.resolver.Resolve(base, rc.notePath); ok {
		target = rf.AbsPath
	} else {
		target = filepath.Join(filepath.Dir(rc.notePath), base)
	}
	target = filepath.ToSlash(target)

	if l.extensionAppend != "" && filepath.Ext(target) == "" {
		target += "." + l.extensionAppend
	}
	setAttr(n, "href", target+anchor)
}
