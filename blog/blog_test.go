package blog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"folio/database"
	"folio/database/dbtest"

	"github.com/juju/errors"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *Repository {
	return NewRepository(dbtest.Open(t))
}

func ptr[T any](v T) *T { return &v }

func tagSlugs(tags []database.BlogTag) []string {
	out := make([]string, len(tags))
	for i, tag := range tags {
		out[i] = tag.Slug
	}
	return out
}

func TestCreatePost(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t)

	post, err := r.CreatePost(ctx, CreatePostInput{
		Slug:        "hello-world",
		Title:       "Hello",
		Description: "first",
		Content:     strings.Repeat("word ", 401),
		Tags:        []string{"Go", "Web Development"},
	})
	require.NoError(t, err)
	require.NotZero(t, post.ID)
	require.Equal(t, 3, post.ReadingTime)
	require.False(t, post.Published)
	require.Nil(t, post.PublishedAt)
	require.Zero(t, post.Views)
	require.ElementsMatch(t, []string{"go", "web-development"}, tagSlugs(post.Tags))

	fetched, err := r.GetPostBySlug(ctx, "hello-world")
	require.NoError(t, err)
	require.NotNil(t, fetched)
	require.Equal(t, post.ID, fetched.ID)
	require.Len(t, fetched.Tags, 2)
}

func TestCreatePostPublishedSetsPublishedAt(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t)

	post, err := r.CreatePost(ctx, CreatePostInput{Slug: "now", Title: "t", Published: true})
	require.NoError(t, err)
	require.NotNil(t, post.PublishedAt)
	require.WithinDuration(t, time.Now(), *post.PublishedAt, time.Minute)

	when := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	post, err = r.CreatePost(ctx, CreatePostInput{Slug: "then", Title: "t", Published: true, PublishedAt: &when})
	require.NoError(t, err)
	require.True(t, when.Equal(*post.PublishedAt))
}

func TestCreatePostInvalidSlug(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t)

	for _, slug := range []string{"", "Hello", "with space", "under_score"} {
		_, err := r.CreatePost(ctx, CreatePostInput{Slug: slug, Title: "t"})
		require.True(t, errors.Is(err, errors.NotValid), "slug %q: %v", slug, err)
	}
}

func TestCreatePostDuplicateSlug(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t)

	first, err := r.CreatePost(ctx, CreatePostInput{Slug: "taken", Title: "first", Tags: []string{"a"}})
	require.NoError(t, err)

	_, err = r.CreatePost(ctx, CreatePostInput{Slug: "taken", Title: "second", Tags: []string{"b"}})
	require.True(t, errors.Is(err, errors.AlreadyExists), "got %v", err)

	post, err := r.GetPostBySlug(ctx, "taken")
	require.NoError(t, err)
	require.Equal(t, first.ID, post.ID)
	require.Equal(t, "first", post.Title)
	require.Equal(t, []string{"a"}, tagSlugs(post.Tags))

	// the failed insert rolled back its tag too
	tag, err := r.GetTagBySlug(ctx, "b")
	require.NoError(t, err)
	require.Nil(t, tag)
}

func TestGetPostMissing(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t)

	post, err := r.GetPostBySlug(ctx, "nope")
	require.NoError(t, err)
	require.Nil(t, post)

	post, err = r.GetPostByID(ctx, 42)
	require.NoError(t, err)
	require.Nil(t, post)
}

func TestPublishedAtTransitions(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t)

	draft, err := r.CreatePost(ctx, CreatePostInput{Slug: "draft", Title: "t"})
	require.NoError(t, err)
	require.Nil(t, draft.PublishedAt)

	first := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return first }
	post, err := r.UpdatePost(ctx, UpdatePostInput{ID: draft.ID, Published: ptr(true)})
	require.NoError(t, err)
	require.True(t, post.Published)
	require.NotNil(t, post.PublishedAt)
	require.True(t, first.Equal(*post.PublishedAt))

	// unpublishing keeps the original timestamp
	r.now = func() time.Time { return first.Add(time.Hour) }
	post, err = r.UpdatePost(ctx, UpdatePostInput{ID: draft.ID, Published: ptr(false)})
	require.NoError(t, err)
	require.False(t, post.Published)
	require.True(t, first.Equal(*post.PublishedAt))

	// republishing does not move it either
	r.now = func() time.Time { return first.Add(2 * time.Hour) }
	post, err = r.UpdatePost(ctx, UpdatePostInput{ID: draft.ID, Published: ptr(true)})
	require.NoError(t, err)
	require.True(t, post.Published)
	require.True(t, first.Equal(*post.PublishedAt))
	require.True(t, first.Add(2*time.Hour).Equal(post.UpdatedAt))
}

func TestUpdatePostPartial(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t)

	created, err := r.CreatePost(ctx, CreatePostInput{
		Slug:       "partial",
		Title:      "Old title",
		Content:    "one two three",
		CoverImage: ptr("/cover.png"),
		Tags:       []string{"Go", "SQL"},
	})
	require.NoError(t, err)

	post, err := r.UpdatePost(ctx, UpdatePostInput{ID: created.ID, Title: ptr("New title")})
	require.NoError(t, err)
	require.Equal(t, "New title", post.Title)
	require.Equal(t, "one two three", post.Content)
	require.Equal(t, "/cover.png", *post.CoverImage)
	require.ElementsMatch(t, []string{"go", "sql"}, tagSlugs(post.Tags))

	post, err = r.UpdatePost(ctx, UpdatePostInput{
		ID:         created.ID,
		Content:    ptr(strings.Repeat("w ", 250)),
		CoverImage: ptr(""),
		Tags:       []string{"Rust"},
	})
	require.NoError(t, err)
	require.Equal(t, 2, post.ReadingTime)
	require.Nil(t, post.CoverImage)
	require.Equal(t, []string{"rust"}, tagSlugs(post.Tags))

	post, err = r.UpdatePost(ctx, UpdatePostInput{ID: created.ID, Tags: []string{}})
	require.NoError(t, err)
	require.Empty(t, post.Tags)

	// tags outlive their links
	tags, err := r.GetAllTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 3)
}

func TestUpdatePostTagReplacementIsAtomic(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t)

	created, err := r.CreatePost(ctx, CreatePostInput{Slug: "atomic", Title: "t", Tags: []string{"Go", "SQL"}})
	require.NoError(t, err)

	_, err = r.UpdatePost(ctx, UpdatePostInput{
		ID:    created.ID,
		Title: ptr("changed"),
		Tags:  []string{"Rust", "   "},
	})
	require.True(t, errors.Is(err, errors.NotValid), "got %v", err)

	post, err := r.GetPostByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "t", post.Title)
	require.ElementsMatch(t, []string{"go", "sql"}, tagSlugs(post.Tags))

	rust, err := r.GetTagBySlug(ctx, "rust")
	require.NoError(t, err)
	require.Nil(t, rust)

	var links int64
	require.NoError(t, r.db.Model(&database.BlogPostTag{}).Where("post_id = ?", created.ID).Count(&links).Error)
	require.EqualValues(t, 2, links)
}

func TestUpdatePostErrors(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t)

	_, err := r.UpdatePost(ctx, UpdatePostInput{ID: 99, Title: ptr("x")})
	require.True(t, errors.Is(err, errors.NotFound), "got %v", err)

	a, err := r.CreatePost(ctx, CreatePostInput{Slug: "a", Title: "a"})
	require.NoError(t, err)
	_, err = r.CreatePost(ctx, CreatePostInput{Slug: "b", Title: "b"})
	require.NoError(t, err)

	_, err = r.UpdatePost(ctx, UpdatePostInput{ID: a.ID, Slug: ptr("b")})
	require.True(t, errors.Is(err, errors.AlreadyExists), "got %v", err)

	_, err = r.UpdatePost(ctx, UpdatePostInput{ID: a.ID, Slug: ptr("Not Valid")})
	require.True(t, errors.Is(err, errors.NotValid), "got %v", err)

	post, err := r.GetPostByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, "a", post.Slug)
}

func TestDeletePost(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t)

	post, err := r.CreatePost(ctx, CreatePostInput{Slug: "gone", Title: "t", Tags: []string{"Go"}})
	require.NoError(t, err)

	require.NoError(t, r.DeletePost(ctx, post.ID))
	fetched, err := r.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	require.Nil(t, fetched)

	var links int64
	require.NoError(t, r.db.Model(&database.BlogPostTag{}).Count(&links).Error)
	require.Zero(t, links)

	tag, err := r.GetTagBySlug(ctx, "go")
	require.NoError(t, err)
	require.NotNil(t, tag)

	require.NoError(t, r.DeletePost(ctx, post.ID))
}

func TestGetOrCreateTagIsIdempotent(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t)

	a, err := r.GetOrCreateTag(ctx, "Web Development")
	require.NoError(t, err)
	b, err := r.GetOrCreateTag(ctx, "web development")
	require.NoError(t, err)
	c, err := r.GetOrCreateTag(ctx, "Web  Development")
	require.NoError(t, err)

	require.Equal(t, a.ID, b.ID)
	require.Equal(t, a.ID, c.ID)
	require.Equal(t, "Web Development", c.Name)
	require.Equal(t, "web-development", c.Slug)

	_, err = r.GetOrCreateTag(ctx, "   ")
	require.True(t, errors.Is(err, errors.NotValid))
}

func TestDuplicateTagsInOnePost(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t)

	post, err := r.CreatePost(ctx, CreatePostInput{Slug: "dupe", Title: "t", Tags: []string{"Go", "go", " GO "}})
	require.NoError(t, err)
	require.Equal(t, []string{"go"}, tagSlugs(post.Tags))
}

func TestIncrementViewsConcurrently(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t)

	post, err := r.CreatePost(ctx, CreatePostInput{Slug: "popular", Title: "t", Published: true})
	require.NoError(t, err)

	const n = 25
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- r.IncrementViews(ctx, post.ID)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	post, err = r.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	require.EqualValues(t, n, post.Views)

	// unknown ids are ignored
	require.NoError(t, r.IncrementViews(ctx, 12345))
}

func TestListings(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t)

	day := func(d int) *time.Time {
		v := time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)
		return &v
	}
	_, err := r.CreatePost(ctx, CreatePostInput{Slug: "old", Title: "t", Published: true, PublishedAt: day(1), Tags: []string{"Go"}})
	require.NoError(t, err)
	_, err = r.CreatePost(ctx, CreatePostInput{Slug: "new", Title: "t", Published: true, PublishedAt: day(3), Tags: []string{"Go", "SQL"}})
	require.NoError(t, err)
	_, err = r.CreatePost(ctx, CreatePostInput{Slug: "draft", Title: "t", Tags: []string{"Go"}})
	require.NoError(t, err)

	published, err := r.GetPublishedPosts(ctx)
	require.NoError(t, err)
	require.Len(t, published, 2)
	require.Equal(t, "new", published[0].Slug)
	require.Equal(t, "old", published[1].Slug)
	require.ElementsMatch(t, []string{"go", "sql"}, tagSlugs(published[0].Tags))

	all, err := r.GetAllPosts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	tagged, err := r.GetPostsByTag(ctx, "go")
	require.NoError(t, err)
	require.Len(t, tagged, 2)
	require.Equal(t, "new", tagged[0].Slug)

	tagged, err = r.GetPostsByTag(ctx, "sql")
	require.NoError(t, err)
	require.Len(t, tagged, 1)

	tagged, err = r.GetPostsByTag(ctx, "missing")
	require.NoError(t, err)
	require.Empty(t, tagged)

	tags, err := r.GetAllTags(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"go", "sql"}, tagSlugs(tags))
}

func TestListingsAreNotCapped(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t)

	const total = 2100
	now := time.Now()
	posts := make([]database.BlogPost, total)
	for i := range posts {
		posts[i] = database.BlogPost{
			Slug:        fmt.Sprintf("post-%d", i),
			Title:       "t",
			Description: "d",
			Content:     "c",
			Published:   i%2 == 0,
			PublishedAt: &now,
		}
	}
	require.NoError(t, r.db.CreateInBatches(posts, 500).Error)

	published, err := r.GetPublishedPosts(ctx)
	require.NoError(t, err)
	require.Len(t, published, total/2)

	all, err := r.GetAllPosts(ctx)
	require.NoError(t, err)
	require.Len(t, all, total)
}
