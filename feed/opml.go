package feed

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
)

// Subscription is one feed in the OPML list.
type Subscription struct {
	Title string
	URL   string
}

// OPML manages the outline document that holds the ordered feed list.
// A missing file reads as an empty list and is created on first Add.
type OPML struct {
	path string
}

func NewOPML(path string) *OPML {
	return &OPML{path: path}
}

type opmlDoc struct {
	XMLName xml.Name `xml:"opml"`
	Version string   `xml:"version,attr"`
	Head    opmlHead `xml:"head"`
	Body    opmlBody `xml:"body"`
}

type opmlHead struct {
	Title string `xml:"title,omitempty"`
}

type opmlBody struct {
	Outlines []opmlOutline `xml:"outline"`
}

type opmlOutline struct {
	Text     string        `xml:"text,attr"`
	Title    string        `xml:"title,attr,omitempty"`
	Type     string        `xml:"type,attr,omitempty"`
	XMLURL   string        `xml:"xmlUrl,attr,omitempty"`
	Outlines []opmlOutline `xml:"outline,omitempty"`
}

// URLs returns the feed URLs in document order.
func (o *OPML) URLs() ([]string, error) {
	subs, err := o.Subscriptions()
	if err != nil {
		return []string{}, err
	}

	urls := make([]string, 0, len(subs))
	for _, sub := range subs {
		urls = append(urls, sub.URL)
	}

	return urls, nil
}

func (o *OPML) Subscriptions() ([]Subscription, error) {
	doc, err := o.load()
	if err != nil {
		return []Subscription{}, err
	}

	subs := []Subscription{}
	collect(doc.Body.Outlines, &subs)

	return subs, nil
}

// outlines can nest, some exporters group feeds in folders
func collect(outlines []opmlOutline, subs *[]Subscription) {
	for _, outline := range outlines {
		if outline.XMLURL != "" {
			title := outline.Title
			if title == "" {
				title = outline.Text
			}
			*subs = append(*subs, Subscription{Title: title, URL: outline.XMLURL})
		}
		collect(outline.Outlines, subs)
	}
}

func (o *OPML) Add(title, url string) error {
	doc, err := o.load()
	if err != nil {
		return err
	}

	doc.Body.Outlines = append(doc.Body.Outlines, opmlOutline{
		Text:   title,
		Title:  title,
		Type:   "rss",
		XMLURL: url,
	})

	return o.store(doc)
}

// Remove drops the feed at the given position in the top-level outline
// list.
func (o *OPML) Remove(index int) error {
	doc, err := o.load()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(doc.Body.Outlines) {
		return fmt.Errorf("no feed at index %d", index)
	}

	doc.Body.Outlines = append(doc.Body.Outlines[:index], doc.Body.Outlines[index+1:]...)

	return o.store(doc)
}

func (o *OPML) load() (*opmlDoc, error) {
	data, err := os.ReadFile(o.path)
	switch {
	case os.IsNotExist(err):
		return &opmlDoc{Version: "1.0"}, nil
	case err != nil:
		return &opmlDoc{}, fmt.Errorf("read opml: %w", err)
	}

	var doc opmlDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return &opmlDoc{}, fmt.Errorf("parse opml: %w", err)
	}

	return &doc, nil
}

func (o *OPML) store(doc *opmlDoc) error {
	if err := os.MkdirAll(filepath.Dir(o.path), 0o755); err != nil {
		return fmt.Errorf("create opml directory: %w", err)
	}

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal opml: %w", err)
	}
	data = append([]byte(xml.Header), data...)

	if err := os.WriteFile(o.path, data, 0o644); err != nil {
		return fmt.Errorf("write opml: %w", err)
	}

	return nil
}
