package islet

import (
	"sync"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

const (
	htmlType = "text/html"
	jsType   = "application/javascript"
)

var (
	minifier *minify.M
	once     sync.Once
)

// getMinifier returns the shared minifier. End tags and quotes are kept so
// minified output parses back into the same tree.
func getMinifier() *minify.M {
	once.Do(func() {
		minifier = minify.New()
		minifier.Add(htmlType, &html.Minifier{
			KeepDocumentTags: true,
			KeepEndTags:      true,
			KeepQuotes:       true,
		})
		minifier.AddFunc(jsType, js.Minify)
	})
	return minifier
}

// minifyHTML falls back to the input when minification fails
func minifyHTML(content string) string {
	out, err := getMinifier().String(htmlType, content)
	if err != nil {
		return content
	}
	return out
}

func minifyJS(content string) string {
	out, err := getMinifier().String(jsType, content)
	if err != nil {
		return content
	}
	return out
}
