package controllers

import (
	"net/http"
	"sync"

	"github.com/BenRutlandWeb/atomic-framework"
	"github.com/BenRutlandWeb/atomic-framework/pkg/events"
	"github.com/BenRutlandWeb/atomic-framework/pkg/request"
)

// Post is a blog post.
type Post struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// PostController serves posts from memory. Content is rendered through the
// content filter, so shortcodes are expanded.
type PostController struct {
	events *events.Dispatcher

	mu    sync.RWMutex
	posts map[string]Post
}

// NewPostController creates a controller seeded with posts.
func NewPostController(d *events.Dispatcher, posts ...Post) *PostController {
	c := &PostController{events: d, posts: make(map[string]Post, len(posts))}
	for _, p := range posts {
		c.posts[p.ID] = p
	}
	return c
}

func (c *PostController) Show(r *request.Request) (any, error) {
	c.mu.RLock()
	post, ok := c.posts[r.Param("id")]
	c.mu.RUnlock()
	if !ok {
		return nil, atomic.Abort(http.StatusNotFound, "Post not found.")
	}

	if rendered, ok := c.events.Dispatch(atomic.ContentFilter, post.Content, r.Context()).(string); ok {
		post.Content = rendered
	}
	return post, nil
}
