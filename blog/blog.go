package blog

import (
	"context"
	"slices"
	"time"

	"folio/database"

	"github.com/juju/errors"
	"github.com/juju/loggo"
	"gorm.io/gorm"
)

var logger = loggo.GetLogger("folio.blog")

const tagLookupChunk = 500

type CreatePostInput struct {
	Slug        string
	Title       string
	Description string
	Content     string
	CoverImage  *string
	Published   bool
	PublishedAt *time.Time
	Tags        []string
}

// UpdatePostInput is a partial update: nil fields are left untouched. A nil
// Tags keeps the current tags; a non-nil empty slice removes them all.
type UpdatePostInput struct {
	ID          uint
	Slug        *string
	Title       *string
	Description *string
	Content     *string
	CoverImage  *string
	Published   *bool
	PublishedAt *time.Time
	Tags        []string
}

// Repository is the only writer of blog posts, tags and their links.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// CreatePost inserts a post with its tags. A taken slug fails with an
// errors.AlreadyExists error.
func (r *Repository) CreatePost(ctx context.Context, input CreatePostInput) (*database.BlogPost, error) {
	if !ValidPostSlug(input.Slug) {
		return nil, errors.NotValidf("slug %q", input.Slug)
	}

	now := r.now()
	post := database.BlogPost{
		Slug:        input.Slug,
		Title:       input.Title,
		Description: input.Description,
		Content:     input.Content,
		CoverImage:  input.CoverImage,
		Published:   input.Published,
		PublishedAt: input.PublishedAt,
		CreatedAt:   now,
		UpdatedAt:   now,
		ReadingTime: ReadingTime(input.Content),
	}
	if post.Published && post.PublishedAt == nil {
		post.PublishedAt = &now
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return translateWriteError(err, post.Slug)
		}
		return addTagsToPost(tx, post.ID, input.Tags)
	})
	if err != nil {
		return nil, errors.Trace(err)
	}

	logger.Infof("created post %d (%s)", post.ID, post.Slug)
	return r.GetPostByID(ctx, post.ID)
}

// UpdatePost applies a partial update. PublishedAt is only ever set once: on
// the first transition into the published state.
func (r *Repository) UpdatePost(ctx context.Context, input UpdatePostInput) (*database.BlogPost, error) {
	if input.Slug != nil && !ValidPostSlug(*input.Slug) {
		return nil, errors.NotValidf("slug %q", *input.Slug)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []database.BlogPost
		if err := tx.Where("id = ?", input.ID).Limit(1).Find(&existing).Error; err != nil {
			return errors.Annotate(err, "loading post")
		}
		if len(existing) == 0 {
			return errors.NotFoundf("post %d", input.ID)
		}
		current := existing[0]

		now := r.now()
		updates := map[string]any{"updated_at": now}
		if input.Slug != nil {
			updates["slug"] = *input.Slug
		}
		if input.Title != nil {
			updates["title"] = *input.Title
		}
		if input.Description != nil {
			updates["description"] = *input.Description
		}
		if input.Content != nil {
			updates["content"] = *input.Content
			updates["reading_time"] = ReadingTime(*input.Content)
		}
		if input.CoverImage != nil {
			if *input.CoverImage == "" {
				updates["cover_image"] = nil
			} else {
				updates["cover_image"] = *input.CoverImage
			}
		}
		if input.Published != nil {
			updates["published"] = *input.Published
			if *input.Published && current.PublishedAt == nil {
				publishedAt := now
				if input.PublishedAt != nil {
					publishedAt = *input.PublishedAt
				}
				updates["published_at"] = publishedAt
			}
		}

		err := tx.Model(&database.BlogPost{}).Where("id = ?", input.ID).Updates(updates).Error
		if err != nil {
			slug := current.Slug
			if input.Slug != nil {
				slug = *input.Slug
			}
			return translateWriteError(err, slug)
		}

		if input.Tags != nil {
			if err := tx.Where("post_id = ?", input.ID).Delete(&database.BlogPostTag{}).Error; err != nil {
				return errors.Annotate(err, "removing tag links")
			}
			return addTagsToPost(tx, input.ID, input.Tags)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Trace(err)
	}

	logger.Infof("updated post %d", input.ID)
	return r.GetPostByID(ctx, input.ID)
}

// DeletePost removes a post and its tag links. Tags themselves stay.
func (r *Repository) DeletePost(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&database.BlogPostTag{}).Error; err != nil {
			return errors.Annotate(err, "removing tag links")
		}
		if err := tx.Delete(&database.BlogPost{}, id).Error; err != nil {
			return errors.Annotate(err, "deleting post")
		}
		return nil
	})
	if err != nil {
		return errors.Trace(err)
	}
	logger.Infof("deleted post %d", id)
	return nil
}

// IncrementViews bumps the view counter in a single UPDATE so concurrent
// readers never lose increments.
func (r *Repository) IncrementViews(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).
		Model(&database.BlogPost{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
	if err != nil {
		return errors.Annotatef(err, "incrementing views of post %d", id)
	}
	return nil
}

func (r *Repository) GetPublishedPosts(ctx context.Context) ([]database.BlogPost, error) {
	var posts []database.BlogPost
	err := r.db.WithContext(ctx).
		Where("published = ?", true).
		Order(publishedOrder).
		Find(&posts).Error
	if err != nil {
		return nil, errors.Annotate(err, "listing published posts")
	}
	return r.withTags(ctx, posts)
}

// GetAllPosts lists drafts and published posts, newest first.
func (r *Repository) GetAllPosts(ctx context.Context) ([]database.BlogPost, error) {
	var posts []database.BlogPost
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, errors.Annotate(err, "listing posts")
	}
	return r.withTags(ctx, posts)
}

func (r *Repository) GetPostBySlug(ctx context.Context, slug string) (*database.BlogPost, error) {
	return r.getPost(ctx, "slug = ?", slug)
}

func (r *Repository) GetPostByID(ctx context.Context, id uint) (*database.BlogPost, error) {
	return r.getPost(ctx, "id = ?", id)
}

func (r *Repository) getPost(ctx context.Context, query string, arg any) (*database.BlogPost, error) {
	var posts []database.BlogPost
	if err := r.db.WithContext(ctx).Where(query, arg).Limit(1).Find(&posts).Error; err != nil {
		return nil, errors.Annotate(err, "loading post")
	}
	if len(posts) == 0 {
		return nil, nil
	}
	posts, err := r.withTags(ctx, posts)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &posts[0], nil
}

// GetPostsByTag lists the published posts carrying the tag. An unknown tag
// yields an empty list.
func (r *Repository) GetPostsByTag(ctx context.Context, tagSlug string) ([]database.BlogPost, error) {
	var posts []database.BlogPost
	err := r.db.WithContext(ctx).
		Joins("INNER JOIN blog_post_tags ON blog_post_tags.post_id = blog_posts.id").
		Joins("INNER JOIN blog_tags ON blog_tags.id = blog_post_tags.tag_id").
		Where("blog_tags.slug = ? AND blog_posts.published = ?", tagSlug, true).
		Order(publishedOrder).
		Find(&posts).Error
	if err != nil {
		return nil, errors.Annotatef(err, "listing posts tagged %q", tagSlug)
	}
	return r.withTags(ctx, posts)
}

func (r *Repository) GetAllTags(ctx context.Context) ([]database.BlogTag, error) {
	var tags []database.BlogTag
	if err := r.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, errors.Annotate(err, "listing tags")
	}
	return tags, nil
}

func (r *Repository) GetTagBySlug(ctx context.Context, slug string) (*database.BlogTag, error) {
	var tags []database.BlogTag
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).Limit(1).Find(&tags).Error; err != nil {
		return nil, errors.Annotate(err, "loading tag")
	}
	if len(tags) == 0 {
		return nil, nil
	}
	return &tags[0], nil
}

// GetOrCreateTag returns the tag whose slug matches name's slug, creating it
// under name when there is none.
func (r *Repository) GetOrCreateTag(ctx context.Context, name string) (*database.BlogTag, error) {
	return getOrCreateTag(r.db.WithContext(ctx), name)
}

func getOrCreateTag(tx *gorm.DB, name string) (*database.BlogTag, error) {
	slug := TagSlug(name)
	if slug == "" {
		return nil, errors.NotValidf("empty tag name")
	}

	find := func() (*database.BlogTag, error) {
		var tags []database.BlogTag
		if err := tx.Where("slug = ?", slug).Limit(1).Find(&tags).Error; err != nil {
			return nil, errors.Annotate(err, "loading tag")
		}
		if len(tags) == 0 {
			return nil, nil
		}
		return &tags[0], nil
	}

	tag, err := find()
	if err != nil || tag != nil {
		return tag, err
	}

	tag = &database.BlogTag{Name: name, Slug: slug}
	err = tx.Create(tag).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// lost a race with another writer, or the name is taken under a
		// different slug
		if existing, findErr := find(); findErr != nil || existing != nil {
			return existing, findErr
		}
		return nil, errors.AlreadyExistsf("tag %q", name)
	}
	if err != nil {
		return nil, errors.Annotatef(err, "creating tag %q", name)
	}
	return tag, nil
}

func addTagsToPost(tx *gorm.DB, postID uint, names []string) error {
	linked := make(map[uint]bool)
	for _, name := range names {
		tag, err := getOrCreateTag(tx, name)
		if err != nil {
			return errors.Trace(err)
		}
		if linked[tag.ID] {
			continue
		}
		linked[tag.ID] = true
		if err := tx.Create(&database.BlogPostTag{PostID: postID, TagID: tag.ID}).Error; err != nil {
			return errors.Annotatef(err, "linking tag %q", tag.Slug)
		}
	}
	return nil
}

// withTags resolves the tags of every post with a single query.
func (r *Repository) withTags(ctx context.Context, posts []database.BlogPost) ([]database.BlogPost, error) {
	if len(posts) == 0 {
		return posts, nil
	}

	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	type tagRow struct {
		PostID uint
		ID     uint
		Name   string
		Slug   string
	}
	var rows []tagRow
	// Chunked to stay under the driver's bound-parameter limit.
	for chunk := range slices.Chunk(ids, tagLookupChunk) {
		var batch []tagRow
		err := r.db.WithContext(ctx).
			Table("blog_post_tags").
			Select("blog_post_tags.post_id, blog_tags.id, blog_tags.name, blog_tags.slug").
			Joins("INNER JOIN blog_tags ON blog_tags.id = blog_post_tags.tag_id").
			Where("blog_post_tags.post_id IN ?", chunk).
			Order("blog_post_tags.id").
			Scan(&batch).Error
		if err != nil {
			return nil, errors.Annotate(err, "loading post tags")
		}
		rows = append(rows, batch...)
	}

	byPost := make(map[uint][]database.BlogTag, len(posts))
	for _, row := range rows {
		byPost[row.PostID] = append(byPost[row.PostID], database.BlogTag{ID: row.ID, Name: row.Name, Slug: row.Slug})
	}
	for i := range posts {
		posts[i].Tags = byPost[posts[i].ID]
		if posts[i].Tags == nil {
			posts[i].Tags = []database.BlogTag{}
		}
	}
	return posts, nil
}

func translateWriteError(err error, slug string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.AlreadyExistsf("post with slug %q", slug)
	}
	return errors.Annotate(err, "writing post")
}

const publishedOrder = "blog_posts.published_at DESC, blog_posts.id DESC"
