package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/plumekit/plume/internal/model"
	"github.com/plumekit/plume/internal/repository"
)

// PostInput is what the new/edit forms submit. GroupSlug and Image are
// optional; an empty GroupSlug detaches the post from any group.
type PostInput struct {
	Text      string
	GroupSlug string
	Image     string
}

// EditOutcome distinguishes an applied edit from the author-only
// redirect: a viewer who is not the author is sent to the read-only
// post page instead of being shown an error.
type EditOutcome struct {
	Post           *model.Post
	RedirectToView bool
}

type PostService interface {
	Create(ctx context.Context, authorID uint, in PostInput) (*model.Post, error)
	Edit(ctx context.Context, viewerID uint, username string, postID uint, in PostInput) (*EditOutcome, error)
	Delete(ctx context.Context, postID uint) error
	Groups(ctx context.Context) ([]model.Group, error)
}

type postService struct {
	db     *gorm.DB
	groups repository.GroupRepository
}

func NewPostService(db *gorm.DB, groups repository.GroupRepository) PostService {
	return &postService{db: db, groups: groups}
}

// Create persists a new post. The insert runs in a transaction so an
// aborted request leaves no partial state.
func (s *postService) Create(ctx context.Context, authorID uint, in PostInput) (*model.Post, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, ErrEmptyText
	}
	groupID, err := s.resolveGroup(ctx, in.GroupSlug)
	if err != nil {
		return nil, err
	}
	post := &model.Post{
		Text:     in.Text,
		AuthorID: authorID,
		GroupID:  groupID,
		Image:    in.Image,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return repository.NewPostRepository(tx).Create(ctx, post)
	})
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// Edit updates text, group, and optionally the image of an existing
// post. CreatedAt is never touched. The username segment must match the
// post's author (otherwise the URL is simply wrong: not found); a
// mismatched viewer gets the redirect outcome and no mutation happens.
func (s *postService) Edit(ctx context.Context, viewerID uint, username string, postID uint, in PostInput) (*EditOutcome, error) {
	posts := repository.NewPostRepository(s.db)
	post, err := posts.GetByID(ctx, postID)
	if err != nil {
		return nil, notFoundOr(err, "get post %d", postID)
	}
	if post.Author.Username != username {
		return nil, ErrNotFound
	}
	if post.AuthorID != viewerID {
		return &EditOutcome{Post: post, RedirectToView: true}, nil
	}
	if strings.TrimSpace(in.Text) == "" {
		return nil, ErrEmptyText
	}
	groupID, err := s.resolveGroup(ctx, in.GroupSlug)
	if err != nil {
		return nil, err
	}
	post.Text = in.Text
	post.GroupID = groupID
	post.Group = nil
	if in.Image != "" {
		post.Image = in.Image
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return repository.NewPostRepository(tx).Update(ctx, post)
	})
	if err != nil {
		return nil, fmt.Errorf("update post %d: %w", postID, err)
	}
	return &EditOutcome{Post: post}, nil
}

// Delete removes a post; its comments go with it via the FK cascade.
func (s *postService) Delete(ctx context.Context, postID uint) error {
	return repository.NewPostRepository(s.db).Delete(ctx, postID)
}

// Groups lists the group choices for the post form.
func (s *postService) Groups(ctx context.Context) ([]model.Group, error) {
	return s.groups.List(ctx)
}

func (s *postService) resolveGroup(ctx context.Context, slug string) (*uint, error) {
	if slug == "" {
		return nil, nil
	}
	group, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get group %q: %w", slug, err)
	}
	return &group.ID, nil
}
