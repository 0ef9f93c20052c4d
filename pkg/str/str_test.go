package str_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BenRutlandWeb/atomic-framework/pkg/str"
)

func TestCaseConversions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, snake, kebab, studly, camel, title string
	}{
		{"MakeCommand", "make_command", "make-command", "MakeCommand", "makeCommand", "Make Command"},
		{"book_genre", "book_genre", "book-genre", "BookGenre", "bookGenre", "Book Genre"},
		{"user-profile page", "user_profile_page", "user-profile-page", "UserProfilePage", "userProfilePage", "User Profile Page"},
		{"HTTPServer", "http_server", "http-server", "HTTPServer", "hTTPServer", "Http Server"},
		{"", "", "", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.snake, str.Snake(tt.in))
			assert.Equal(t, tt.kebab, str.Kebab(tt.in))
			assert.Equal(t, tt.studly, str.Studly(tt.in))
			assert.Equal(t, tt.camel, str.Camel(tt.in))
			assert.Equal(t, tt.title, str.Title(tt.in))
		})
	}
}

func TestPluralSingular(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Books", str.Plural("Book"))
	assert.Equal(t, "Book Genres", str.Plural(str.Title("book_genre")))
	assert.Equal(t, "Categories", str.Plural("Category"))
	assert.Equal(t, "Person", str.Singular("People"))
}

func TestSlug(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "cafe-bar", str.Slug("Café & Bar"))
	assert.Equal(t, "hello_world_2", str.Slug("  Hello, World! 2 ", "_"))
	assert.Equal(t, "", str.Slug("!!!"))
}

func TestAfterAndLimit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "PostTypes/Book.go", str.After("app/PostTypes/Book.go", "app/"))
	assert.Equal(t, "abc", str.After("abc", "x"))
	assert.Equal(t, "Hello...", str.Limit("Hello world", 6))
	assert.Equal(t, "Hi", str.Limit("Hi", 6))
}
