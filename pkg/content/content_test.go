package content_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BenRutlandWeb/atomic-framework/pkg/content"
)

func TestLabels(t *testing.T) {
	t.Parallel()

	pt := content.PostTypeLabels("book_genre")
	assert.Equal(t, "Book Genres", pt["name"])
	assert.Equal(t, "Book Genre", pt["singular_name"])
	assert.Equal(t, "Add New Book Genre", pt["add_new_item"])
	assert.Equal(t, "No Book Genres found in trash", pt["not_found_in_trash"])

	tax := content.TaxonomyLabels("category")
	assert.Equal(t, "Categories", tax["name"])
	assert.Equal(t, "Separate Categories with commas", tax["separate_items_with_commas"])
	assert.Equal(t, "New Category Name", tax["new_item_name"])
}

func TestRegisterPostType(t *testing.T) {
	t.Parallel()

	reg := content.NewRegistry()

	_, err := reg.RegisterPostType(content.PostType{})
	require.ErrorIs(t, err, content.ErrInvalidName)

	book, err := reg.RegisterPostType(content.PostType{
		Name: "book",
		Options: map[string]any{
			"public": true,
			"labels": map[string]string{"menu_name": "Library"},
		},
		Taxonomies: []content.Taxonomy{{Name: "genre", Options: map[string]any{"hierarchical": true}}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Books", book.Labels["name"])
	assert.Equal(t, "Library", book.Labels["menu_name"])
	assert.Equal(t, map[string]any{"public": true}, book.Options)

	_, err = reg.RegisterPostType(content.PostType{
		Name:       "film",
		Taxonomies: []content.Taxonomy{{Name: "genre", Options: map[string]any{"hierarchical": false}}},
	})
	require.NoError(t, err)

	genre, ok := reg.Taxonomy("genre")
	require.True(t, ok)
	assert.Equal(t, []string{"book", "film"}, genre.ObjectTypes)
	assert.Equal(t, true, genre.Options["hierarchical"])
	assert.True(t, reg.TaxonomyExists("genre"))
	assert.False(t, reg.TaxonomyExists("tag"))

	_, err = reg.RegisterTaxonomy(content.Taxonomy{Name: "tag"}, "film")
	require.NoError(t, err)
	assert.Len(t, reg.Taxonomies(), 2)
	assert.Len(t, reg.Taxonomies("book"), 1)
	assert.Len(t, reg.Taxonomies("film"), 2)

	types := reg.PostTypes()
	require.Len(t, types, 2)
	assert.Equal(t, "book", types[0].Name)
	assert.Equal(t, "film", types[1].Name)
}

func TestShortcodes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	codes := content.NewShortcodes()
	require.NoError(t, codes.Add(content.Shortcode{
		Tag:      "button",
		Defaults: map[string]string{"href": "#", "class": "btn"},
		Handler: func(_ context.Context, sc *content.ShortcodeCall) (string, error) {
			return `<a href="` + sc.Get("href") + `" class="` + sc.Get("class") + `">` + sc.Content() + `</a>`, nil
		},
	}))
	require.NoError(t, codes.Add(content.Shortcode{
		Tag: "year",
		Handler: func(context.Context, *content.ShortcodeCall) (string, error) {
			return "2024", nil
		},
	}))
	require.NoError(t, codes.Add(content.Shortcode{
		Tag: "upper",
		Handler: func(_ context.Context, sc *content.ShortcodeCall) (string, error) {
			return strings.ToUpper(sc.Content()), nil
		},
	}))

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain text", in: "no codes here", want: "no codes here"},
		{name: "self closing", in: "© [year /] Atomic", want: "© 2024 Atomic"},
		{name: "bare", in: "[year]", want: "2024"},
		{
			name: "enclosing with attributes",
			in:   `Go [button href="/start" target=_blank]now[/button]!`,
			want: `Go <a href="/start" class="btn">now</a>!`,
		},
		{name: "unknown tag", in: "[gallery id=1]", want: "[gallery id=1]"},
		{name: "prefix of a tag", in: "[years]", want: "[years]"},
		{name: "escaped", in: "[[year]]", want: "[year]"},
		{name: "several", in: "[upper]a[/upper] and [upper]b[/upper]", want: "A and B"},
		{name: "no closing tag", in: "[upper]text", want: "text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := codes.Do(ctx, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShortcodeRemove(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	codes := content.NewShortcodes()
	for _, tag := range []string{"year", "upper", "button"} {
		require.NoError(t, codes.Add(content.Shortcode{
			Tag: tag,
			Handler: func(context.Context, *content.ShortcodeCall) (string, error) {
				return "x", nil
			},
		}))
	}
	assert.Equal(t, []string{"button", "upper", "year"}, codes.Tags())

	codes.Remove("upper")
	assert.False(t, codes.Has("upper"))
	assert.True(t, codes.Has("year"))

	got, err := codes.Do(ctx, "[upper]a[/upper] [year]")
	require.NoError(t, err)
	assert.Equal(t, "[upper]a[/upper] x", got)
}

func TestShortcodeMissingHandler(t *testing.T) {
	t.Parallel()

	codes := content.NewShortcodes()
	require.NoError(t, codes.Add(content.Shortcode{Tag: "broken"}))
	require.ErrorIs(t, codes.Add(content.Shortcode{}), content.ErrInvalidName)

	out, err := codes.Do(context.Background(), "a [broken] b")
	require.ErrorIs(t, err, content.ErrMissingHandler)
	assert.Equal(t, "a  b", out)
}

func TestParseAttributes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, map[string]string{
		"id":    "7",
		"title": "Hello world",
		"size":  "large",
		"0":     "featured",
		"1":     "quoted value",
	}, content.ParseAttributes(`ID=7 title="Hello world" size='large' featured "quoted value"`))
	assert.Empty(t, content.ParseAttributes(""))
}
