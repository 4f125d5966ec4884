package assemble

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/net/html"
)

// ModifyLinks makes every anchor of the HTML file at path open in a new
// tab. Reports shown inside an iframe would otherwise navigate the frame.
func ModifyLinks(path string) error {
	return rewriteHTML(path, func(doc *html.Node) {
		walk(doc, func(n *html.Node) {
			if n.Type == html.ElementNode && n.Data == "a" {
				setAttr(n, "target", "_blank")
			}
		})
	})
}

func rewriteHTML(path string, edit func(*html.Node)) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	edit(doc)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// walk visits n and its descendants depth-first.
func walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
