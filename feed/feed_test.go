package feed

import (
	"errors"
	"strings"
	"testing"

	"aurie/models"

	"github.com/stretchr/testify/assert"
)

func TestFilterByCategoryIdentity(t *testing.T) {
	posts := []models.Post{
		{PostID: "1", Category: "tech"},
		{PostID: "2", Category: "life"},
		{PostID: "3"},
	}

	got := FilterByCategory(posts, "")
	assert.Equal(t, posts, got)
}

func TestFilterByCategorySelectsMatches(t *testing.T) {
	posts := []models.Post{
		{PostID: "1", Category: "tech"},
		{PostID: "2", Category: "life"},
		{PostID: "3", Category: "tech"},
		{PostID: "4"},
	}

	got := FilterByCategory(posts, "tech")
	assert.Len(t, got, 2)
	for _, p := range got {
		assert.Equal(t, "tech", p.Category)
	}

	// Order of the survivors is preserved.
	assert.Equal(t, "1", got[0].PostID)
	assert.Equal(t, "3", got[1].PostID)
}

func TestFilterByCategoryNoMatches(t *testing.T) {
	posts := []models.Post{{PostID: "1", Category: "tech"}}

	got := FilterByCategory(posts, "cooking")
	assert.NotNil(t, got)
	assert.Len(t, got, 0)
}

func TestStripTags(t *testing.T) {
	assert.Equal(t, "hello world", StripTags("<p>hello world</p>"))
	assert.Equal(t, "ab", StripTags(`a<img src="x.png"/>b`))
	assert.Equal(t, "plain", StripTags("plain"))
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount(""))
	assert.Equal(t, 0, WordCount("   \n\t"))
	assert.Equal(t, 3, WordCount("one two three"))
	assert.Equal(t, 2, WordCount("  spaced   out  "))
}

func TestReadTimeRoundsUp(t *testing.T) {
	assert.Equal(t, 1, ReadTime("<p>short</p>"))
	assert.Equal(t, 0, ReadTime(""))
	assert.Equal(t, 0, ReadTime("<p></p>"))
}

func TestReadTimeScalesWithWordCount(t *testing.T) {
	words := func(n int) string {
		return strings.TrimSpace(strings.Repeat("word ", n))
	}

	assert.Equal(t, 1, ReadTime(words(200)))
	assert.Equal(t, 2, ReadTime(words(201)))
	assert.Equal(t, 3, ReadTime(words(401)))

	// Monotonically non-decreasing.
	prev := 0
	for _, n := range []int{1, 50, 199, 200, 201, 399, 400, 401, 1000} {
		rt := ReadTime(words(n))
		assert.GreaterOrEqual(t, rt, prev, "readTime must not decrease with more words")
		assert.GreaterOrEqual(t, rt, 1)
		prev = rt
	}
}

func TestReadTimeIgnoresMarkup(t *testing.T) {
	plain := strings.Repeat("word ", 250)
	tagged := "<article><h1>word</h1>" + strings.Repeat("<p>word</p> ", 249) + "</article>"

	assert.Equal(t, ReadTime(plain), ReadTime(tagged))
}

func TestResolveLikeCount(t *testing.T) {
	likes := []string{"a@x.com", "b@x.com"}

	assert.Equal(t, 5, resolveLikeCount("5", nil, likes))
	assert.Equal(t, 0, resolveLikeCount("0", nil, likes))

	// Missing or garbled mirror falls back to the likes set.
	assert.Equal(t, 2, resolveLikeCount("", errors.New("redis down"), likes))
	assert.Equal(t, 2, resolveLikeCount("junk", nil, likes))
	assert.Equal(t, 2, resolveLikeCount("-3", nil, likes))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", Preview("<p>short</p>", 120))
	assert.Equal(t, "abc...", Preview("abcdef", 3))
}
