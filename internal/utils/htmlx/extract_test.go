package htmlx

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return d
}

func TestExtractor_FallbackChain(t *testing.T) {
	d := doc(t, `<div class="card">
		<span class="eventName">  Hack
		Day </span>
		<div class="date">Jan 1</div>
	</div>`)
	ex := NewExtractor(d.Find("div.card"))

	assert.Equal(t, "Hack Day", ex.Text("title", "a.allhackname", ".eventName"))
	assert.Equal(t, "", ex.Attr("image_url", "src", "img"))
	assert.Equal(t, "Jan 1", ex.TextAt("registration_start", "div.date", 0))
	assert.Equal(t, "", ex.TextAt("registration_end", "div.date", 1))

	fields := make([]string, 0)
	for _, f := range ex.Fallbacks() {
		fields = append(fields, f.Field)
	}
	assert.Equal(t, []string{"title", "image_url", "registration_end"}, fields)
	assert.Contains(t, ex.Fallbacks()[0].Note, ".eventName")
}

func TestExtractor_PrimaryHitRecordsNothing(t *testing.T) {
	d := doc(t, `<div><a class="t" href="/x">X</a></div>`)
	ex := NewExtractor(d.Selection)

	assert.Equal(t, "X", ex.Text("title", "a.t"))
	assert.Equal(t, "/x", ex.Attr("link", "href", "a.t"))
	assert.Empty(t, ex.Fallbacks())
}

func TestMeta(t *testing.T) {
	d := doc(t, `<html><head>
		<meta name="description" content="plain">
		<meta property="og:image" content="https://cdn.example/a.png">
	</head></html>`)

	assert.Equal(t, "plain", Meta(d, "og:description", "description"))
	assert.Equal(t, "https://cdn.example/a.png", Meta(d, "og:image"))
	assert.Equal(t, "", Meta(d, "twitter:title"))
}

func TestAbsURL(t *testing.T) {
	base := "https://reskilll.com/allhacks"
	assert.Equal(t, "https://reskilll.com/img/x.png", AbsURL(base, "/img/x.png"))
	assert.Equal(t, "https://reskilll.com/events/hackx", AbsURL(base, "events/hackx"))
	assert.Equal(t, "https://other.example/a", AbsURL(base, "https://other.example/a"))
	assert.Equal(t, "", AbsURL(base, "  "))
}

func TestSameHost(t *testing.T) {
	assert.True(t, SameHost("https://www.mlh.io/seasons", "https://mlh.io/events/x"))
	assert.False(t, SameHost("https://mlh.io", "https://evil.example"))
}
