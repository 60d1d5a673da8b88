package scanner

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Document is the parsed view of the fetched page: only the pieces the
// checks need. A parse failure degrades the document-dependent checks, not
// the scan.
type Document struct {
	Title    string
	Forms    []Form
	Headings []string
}

type Form struct {
	Action string
	Method string
	Inputs []FormInput
}

type FormInput struct {
	Type string
	Name string
}

// ParseDocument parses an HTML body into a Document. html.Parse is lenient,
// so errors here mean the body was not HTML at all.
func ParseDocument(body []byte) (*Document, error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	doc := &Document{}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if doc.Title == "" {
					doc.Title = strings.TrimSpace(textContent(n))
				}
			case "form":
				doc.Forms = append(doc.Forms, parseForm(n))
			case "h1", "h2", "h3":
				if text := strings.TrimSpace(textContent(n)); text != "" {
					doc.Headings = append(doc.Headings, text)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return doc, nil
}

func parseForm(n *html.Node) Form {
	form := Form{
		Action: attr(n, "action"),
		Method: strings.ToUpper(attr(n, "method")),
	}
	if form.Method == "" {
		form.Method = "GET"
	}

	var walk func(c *html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.ElementNode && (c.Data == "input" || c.Data == "select" || c.Data == "textarea") {
			form.Inputs = append(form.Inputs, FormInput{
				Type: strings.ToLower(attr(c, "type")),
				Name: attr(c, "name"),
			})
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			walk(cc)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return form
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(c *html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			walk(cc)
		}
	}
	walk(n)
	return b.String()
}
