// Package extractor turns fetched HTML into plain text for word counting.
package extractor

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html/charset"
)

// Article is the readable text of a page.
type Article struct {
	Title string
	Text  string
}

const blockSelector = "h1,h2,h3,h4,h5,h6,p,li,td,th,pre,blockquote"

// Extract pulls the main article text out of html. When readability finds no
// content the whole body text is used instead.
func Extract(rawURL, html string) (*Article, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	readabilityParser := readability.NewParser()
	article, err := readabilityParser.Parse(strings.NewReader(html), parsedURL)
	if err == nil && strings.TrimSpace(article.Content) != "" {
		text, terr := Text(article.Content)
		if terr == nil && text != "" {
			return &Article{Title: normalizeText(article.Title), Text: text}, nil
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Find("script,style,noscript,nav,footer").Remove()
	return &Article{
		Title: normalizeText(doc.Find("title").First().Text()),
		Text:  normalizeText(doc.Find("body").Text()),
	}, nil
}

// Decode converts page bytes to UTF-8, using contentType when it names a
// charset and the page's own meta declaration otherwise.
func Decode(data []byte, contentType string) (string, error) {
	enc, name, _ := charset.DetermineEncoding(data, contentType)
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s page: %w", name, err)
	}
	return string(out), nil
}

// Text joins the text of block-level elements in html, one per line.
func Text(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	var lines []string
	doc.Find(blockSelector).Each(func(i int, s *goquery.Selection) {
		// nested blocks are collected on their own
		if s.Find(blockSelector).Length() > 0 {
			return
		}
		if t := normalizeText(s.Text()); t != "" {
			lines = append(lines, t)
		}
	})
	if len(lines) == 0 {
		return normalizeText(doc.Text()), nil
	}
	return strings.Join(lines, "\n"), nil
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
