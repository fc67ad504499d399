package feed_test

import (
	"os"
	"path/filepath"
	"testing"

	"ewintr.nl/vidfeed/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOPMLMissingFile(t *testing.T) {
	o := feed.NewOPML(filepath.Join(t.TempDir(), "subs.opml"))

	urls, err := o.URLs()
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestOPMLAddRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subs.opml")
	o := feed.NewOPML(path)

	require.NoError(t, o.Add("Channel A", "https://example.com/feed/a"))
	require.NoError(t, o.Add("Channel B", "https://example.com/feed/b"))
	require.NoError(t, o.Add("Channel C", "https://example.com/feed/c"))

	urls, err := o.URLs()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com/feed/a",
		"https://example.com/feed/b",
		"https://example.com/feed/c",
	}, urls)

	subs, err := o.Subscriptions()
	require.NoError(t, err)
	require.Len(t, subs, 3)
	assert.Equal(t, "Channel B", subs[1].Title)

	require.NoError(t, o.Remove(1))
	urls, err = o.URLs()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com/feed/a",
		"https://example.com/feed/c",
	}, urls)

	assert.Error(t, o.Remove(5))
	assert.Error(t, o.Remove(-1))
}

func TestOPMLNestedOutlines(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<opml version="1.0">
  <head><title>subscriptions</title></head>
  <body>
    <outline text="folder">
      <outline text="Nested" type="rss" xmlUrl="https://example.com/feed/nested"/>
    </outline>
    <outline text="Top" type="rss" xmlUrl="https://example.com/feed/top"/>
  </body>
</opml>`
	path := filepath.Join(t.TempDir(), "subs.opml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	o := feed.NewOPML(path)
	urls, err := o.URLs()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com/feed/nested",
		"https://example.com/feed/top",
	}, urls)
}

func TestOPMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subs.opml")
	o := feed.NewOPML(path)
	require.NoError(t, o.Add("Channel A", "https://example.com/feed/a"))

	// reread through a fresh instance
	urls, err := feed.NewOPML(path).URLs()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/feed/a"}, urls)
}
