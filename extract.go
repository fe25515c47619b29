package main

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	defaultVersionLabel = "Release"
	versionPrefix       = "version"
)

// Links starting with one of these are left untouched
var absoluteHrefPrefixes = []string{"http://", "https://", "#", "mailto:"}

// VersionSection is the heading of a release and the nodes that follow it
type VersionSection struct {
	HeadingText string
	BodyNodes   []*html.Node
}

// extractLatestVersion finds the most recent version section in doc and
// returns its heading label and its body as normalized HTML with links
// resolved against baseURL.
func extractLatestVersion(doc *goquery.Document, baseURL string) (string, string, error) {
	section := findLatestSection(doc)
	if section == nil {
		return defaultVersionLabel, "", nil
	}

	container := detachSection(section.BodyNodes)
	if base, err := url.Parse(baseURL); err == nil {
		rewriteLinks(container, base)
	} else {
		debugLog("skipping link rewrite, bad base URL %q: %v", baseURL, err)
	}

	body, err := renderChildren(container)
	if err != nil {
		return "", "", fmt.Errorf("rendering version section: %w", err)
	}

	return section.HeadingText, normalizeText(body), nil
}

// findLatestSection picks the first h2-h4 whose text starts with "version",
// falling back to the first h2-h4 of any kind. Nil means no headings at all.
func findLatestSection(doc *goquery.Document) *VersionSection {
	headings := doc.Find("h2, h3, h4").Nodes
	if len(headings) == 0 {
		return nil
	}

	var anchor *html.Node
	for _, h := range headings {
		if strings.HasPrefix(strings.ToLower(headingText(h)), versionPrefix) {
			anchor = h
			break
		}
	}
	if anchor == nil {
		anchor = headings[0]
	}

	return &VersionSection{
		HeadingText: headingText(anchor),
		BodyNodes:   collectSiblings(anchor),
	}
}

// collectSiblings returns the siblings after anchor up to, not including,
// the next section heading.
func collectSiblings(anchor *html.Node) []*html.Node {
	var nodes []*html.Node
	for n := anchor.NextSibling; n != nil; n = n.NextSibling {
		if isSectionHeading(n) {
			break
		}
		nodes = append(nodes, n)
	}
	return nodes
}

func isSectionHeading(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.H2, atom.H3, atom.H4:
		return true
	}
	return false
}

func headingText(n *html.Node) string {
	return strings.Join(strings.Fields(goquery.NewDocumentFromNode(n).Text()), " ")
}

// detachSection moves nodes out of their document into a fresh container,
// keeping their order.
func detachSection(nodes []*html.Node) *html.Node {
	container := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	for _, n := range nodes {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		container.AppendChild(n)
	}
	return container
}

func rewriteLinks(container *html.Node, base *url.URL) {
	goquery.NewDocumentFromNode(container).Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if isAbsoluteHref(href) {
			return
		}
		resolved, err := base.Parse(href)
		if err != nil {
			debugLog("leaving unparseable href %q: %v", href, err)
			return
		}
		a.SetAttr("href", resolved.String())
	})
}

func isAbsoluteHref(href string) bool {
	for _, prefix := range absoluteHrefPrefixes {
		if strings.HasPrefix(href, prefix) {
			return true
		}
	}
	return false
}

func renderChildren(container *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := container.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}
