// Package textclean strips presentation artifacts from translation and
// narration text before it is stored.
package textclean

import (
	"html"
	"log"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	footnoteMarker = regexp.MustCompile(`\[\d+\]|\(\d+\)`)
	leftoverTag    = regexp.MustCompile(`<[^<>]*>`)
	// Markup that only appears once doubly escaped entities are decoded.
	// Restricted to element names so decoded comparisons like "3 < 4" survive.
	escapedTag = regexp.MustCompile(`(?i)</?(?:sup|sub|span|p|br|i|b|u|em|strong|a|div|font|small)\b[^<>]*>`)
	spaceBeforeEnd = regexp.MustCompile(`\s+([.,;:!?])`)
)

// Clean removes <sup> footnotes, HTML tags and [n]/(n) markers, decodes
// entities and collapses whitespace. Tags are removed before entities are
// decoded, so escaped text such as "&lt;" comes out as a literal "<".
// Clean(Clean(s)) == Clean(s).
func Clean(s string) string {
	if s == "" {
		return s
	}
	if strings.Contains(s, "<") {
		s = stripMarkup(s)
	}
	for i := 0; i < 3; i++ {
		unescaped := html.UnescapeString(s)
		if unescaped == s {
			break
		}
		s = unescaped
	}
	s = escapedTag.ReplaceAllString(s, " ")
	s = footnoteMarker.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")
	return spaceBeforeEnd.ReplaceAllString(s, "$1")
}

func stripMarkup(s string) string {
	context := &nethtml.Node{Type: nethtml.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := nethtml.ParseFragment(strings.NewReader(s), context)
	if err != nil {
		log.Printf("textclean: parse fragment: %v", err)
		return leftoverTag.ReplaceAllString(s, " ")
	}
	root := &nethtml.Node{Type: nethtml.ElementNode, Data: "div", DataAtom: atom.Div}
	for _, n := range nodes {
		root.AppendChild(n)
	}

	doc := goquery.NewDocumentFromNode(root)
	doc.Find("sup").Remove()
	// Block-level breaks become spaces so words do not run together.
	for _, n := range doc.Find("br, p, div, li").Nodes {
		n.Parent.InsertBefore(&nethtml.Node{Type: nethtml.TextNode, Data: " "}, n)
		if n.NextSibling != nil {
			n.Parent.InsertBefore(&nethtml.Node{Type: nethtml.TextNode, Data: " "}, n.NextSibling)
		} else {
			n.Parent.AppendChild(&nethtml.Node{Type: nethtml.TextNode, Data: " "})
		}
	}
	return doc.Text()
}
