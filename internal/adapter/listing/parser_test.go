package listing

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser() *Parser {
	l := logrus.New()
	l.SetOutput(io.Discard)
	p := NewParser(l).(*Parser)
	p.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }
	return p
}

const base = "https://mlh.io/seasons/events"

func TestDiscoverLinks_ActiveSectionFirst(t *testing.T) {
	html := []byte(`<html><body>
		<section class="upcoming">
			<a href="/events/alpha">Alpha</a>
			<a href="/events/alpha#top">Alpha again</a>
			<a href="https://other.example/events/x">Off site</a>
		</section>
		<div class="card"><a href="/events/beta">Beta</a></div>
	</body></html>`)

	links := newTestParser().DiscoverLinks(html, base)
	assert.Equal(t, []string{"https://mlh.io/events/alpha"}, links)
}

func TestDiscoverLinks_CardsWhenNoSection(t *testing.T) {
	html := []byte(`<html><body>
		<div class="card"><a href="/events/beta">Beta</a></div>
		<article><a href="/events/gamma">Gamma</a></article>
		<div class="card"><a href="/events/past/omega">Omega</a></div>
	</body></html>`)

	links := newTestParser().DiscoverLinks(html, base)
	assert.Equal(t, []string{"https://mlh.io/events/beta", "https://mlh.io/events/gamma"}, links)
}

func TestDiscoverLinks_FullScanFiltersPast(t *testing.T) {
	html := []byte(`<html><body>
		<a href="/about">About</a>
		<a href="/hack-2026">Current</a>
		<a href="/hack-2024">Old</a>
		<a href="/events/archive/x">Archived</a>
		<a href="/seasons/events">Self</a>
	</body></html>`)

	links := newTestParser().DiscoverLinks(html, base)
	assert.Equal(t, []string{"https://mlh.io/hack-2026"}, links)
}

func TestDiscoverLinks_NoLinks(t *testing.T) {
	links := newTestParser().DiscoverLinks([]byte(`<html><body><p>nothing</p></body></html>`), base)
	assert.NotNil(t, links)
	assert.Empty(t, links)
}

func TestParseDetail_MetaFirst(t *testing.T) {
	html := []byte(`<html><head>
		<title>Fallback Title</title>
		<meta property="og:title" content="Gamma Hacks">
		<meta property="og:description" content="48 hours of building">
		<meta property="og:image" content="/banner.png">
	</head><body>
		<h1>Heading</h1>
		<time datetime="2026-04-01">Apr 1</time>
		<time datetime="2026-04-03">Apr 3</time>
	</body></html>`)

	rec, err := newTestParser().ParseDetail(html, "https://mlh.io/events/gamma")
	require.NoError(t, err)
	assert.Equal(t, "Gamma Hacks", rec.Title)
	assert.Equal(t, "48 hours of building", rec.Description)
	assert.Equal(t, "https://mlh.io/banner.png", rec.ImageURL)
	assert.Equal(t, "2026-04-01", rec.RegistrationStart)
	assert.Equal(t, "2026-04-03", rec.RegistrationEnd)
	assert.Equal(t, "https://mlh.io/events/gamma", rec.Link)
	assert.Equal(t, "listing", rec.SourceSite)
	assert.Empty(t, rec.Fallbacks)
}

func TestParseDetail_StructuralFallback(t *testing.T) {
	html := []byte(`<html><head><title>Page</title></head><body>
		<h1>Delta Jam</h1>
		<p>Make games.</p>
		<img src="img/d.png">
	</body></html>`)

	rec, err := newTestParser().ParseDetail(html, "https://mlh.io/events/delta")
	require.NoError(t, err)
	assert.Equal(t, "Delta Jam", rec.Title)
	assert.Equal(t, "Make games.", rec.Description)
	assert.Equal(t, "https://mlh.io/events/img/d.png", rec.ImageURL)
	assert.True(t, rec.FellBack("description"))
	assert.True(t, rec.FellBack("image_url"))
	assert.True(t, rec.FellBack("registration_start"))
	assert.False(t, rec.FellBack("title"))
}

func TestParse_LinkOnlyRecords(t *testing.T) {
	html := []byte(`<html><body><div class="card"><a href="/events/beta"> Beta  Hacks </a></div></body></html>`)

	records, err := newTestParser().Parse(html, base)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Beta Hacks", records[0].Title)
	assert.Equal(t, "https://mlh.io/events/beta", records[0].Link)
	assert.True(t, records[0].FellBack("description"))
}
