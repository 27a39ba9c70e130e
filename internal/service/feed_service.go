package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/plumekit/plume/internal/model"
	"github.com/plumekit/plume/internal/pagination"
	"github.com/plumekit/plume/internal/repository"
)

// FeedPage is one page of a feed: the posts plus pagination metadata.
type FeedPage struct {
	Posts []model.Post
	Page  pagination.Page
}

// GroupFeedPage carries the group header alongside its feed page.
type GroupFeedPage struct {
	Group model.Group
	FeedPage
}

// ProfilePage is a user's feed page plus the stats their profile shows.
// Following is only meaningful when the request carried a viewer.
type ProfilePage struct {
	User           model.User
	PostCount      int64
	FollowerCount  int64
	FollowingCount int64
	Following      bool
	FeedPage
}

// PostView is a single post with its comment thread and author stats.
type PostView struct {
	Post           model.Post
	Comments       []model.Comment
	PostCount      int64
	FollowerCount  int64
	FollowingCount int64
}

// PostResolution is the tagged outcome of a single-post lookup.
// Exactly one of Post / RedirectUsername is set: a post reached under
// the wrong username is not an error, the caller must redirect to the
// canonical URL under the author's actual username.
type PostResolution struct {
	Post             *PostView
	RedirectUsername string
}

// FeedService decides which posts a view shows, in what order,
// paginated. Every feed is a filtered view over the same post relation
// under one ordering rule, so no two views can drift apart.
type FeedService interface {
	Global(ctx context.Context, page int) (*FeedPage, error)
	Group(ctx context.Context, slug string, page int) (*GroupFeedPage, error)
	Profile(ctx context.Context, username string, viewerID uint, page int) (*ProfilePage, error)
	Followed(ctx context.Context, viewerID uint, page int) (*FeedPage, error)
	SinglePost(ctx context.Context, postID uint, expectedUsername string) (*PostResolution, error)
}

type feedService struct {
	posts    repository.PostRepository
	groups   repository.GroupRepository
	users    repository.UserRepository
	comments repository.CommentRepository
	follows  repository.FollowRepository
	pageSize int
}

func NewFeedService(
	posts repository.PostRepository,
	groups repository.GroupRepository,
	users repository.UserRepository,
	comments repository.CommentRepository,
	follows repository.FollowRepository,
	pageSize int,
) FeedService {
	return &feedService{
		posts:    posts,
		groups:   groups,
		users:    users,
		comments: comments,
		follows:  follows,
		pageSize: pageSize,
	}
}

func (s *feedService) Global(ctx context.Context, page int) (*FeedPage, error) {
	total, err := s.posts.CountGlobal(ctx)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	pg := pagination.Paginate(total, s.pageSize, page)
	posts, err := s.posts.ListGlobal(ctx, pg.Offset(), pg.Limit())
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return &FeedPage{Posts: posts, Page: pg}, nil
}

func (s *feedService) Group(ctx context.Context, slug string, page int) (*GroupFeedPage, error) {
	group, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, notFoundOr(err, "get group %q", slug)
	}
	total, err := s.posts.CountByGroup(ctx, group.ID)
	if err != nil {
		return nil, fmt.Errorf("count group posts: %w", err)
	}
	pg := pagination.Paginate(total, s.pageSize, page)
	posts, err := s.posts.ListByGroup(ctx, group.ID, pg.Offset(), pg.Limit())
	if err != nil {
		return nil, fmt.Errorf("list group posts: %w", err)
	}
	return &GroupFeedPage{Group: *group, FeedPage: FeedPage{Posts: posts, Page: pg}}, nil
}

func (s *feedService) Profile(ctx context.Context, username string, viewerID uint, page int) (*ProfilePage, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, notFoundOr(err, "get user %q", username)
	}
	total, err := s.posts.CountByAuthor(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("count author posts: %w", err)
	}
	pg := pagination.Paginate(total, s.pageSize, page)
	posts, err := s.posts.ListByAuthor(ctx, user.ID, pg.Offset(), pg.Limit())
	if err != nil {
		return nil, fmt.Errorf("list author posts: %w", err)
	}
	p := &ProfilePage{
		User:      *user,
		PostCount: total,
		FeedPage:  FeedPage{Posts: posts, Page: pg},
	}
	if p.FollowerCount, err = s.follows.CountFollowers(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("count followers: %w", err)
	}
	if p.FollowingCount, err = s.follows.CountFollowing(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("count following: %w", err)
	}
	if viewerID != 0 {
		if p.Following, err = s.follows.Exists(ctx, viewerID, user.ID); err != nil {
			return nil, fmt.Errorf("check follow edge: %w", err)
		}
	}
	return p, nil
}

// Followed requires a resolved viewer; the route boundary rejects
// anonymous requests before this is reached.
func (s *feedService) Followed(ctx context.Context, viewerID uint, page int) (*FeedPage, error) {
	total, err := s.posts.CountFollowed(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("count followed posts: %w", err)
	}
	pg := pagination.Paginate(total, s.pageSize, page)
	posts, err := s.posts.ListFollowed(ctx, viewerID, pg.Offset(), pg.Limit())
	if err != nil {
		return nil, fmt.Errorf("list followed posts: %w", err)
	}
	return &FeedPage{Posts: posts, Page: pg}, nil
}

func (s *feedService) SinglePost(ctx context.Context, postID uint, expectedUsername string) (*PostResolution, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, notFoundOr(err, "get post %d", postID)
	}
	// URL canonicalization: the post exists, the username segment is
	// just wrong. Send the caller to the real author's URL.
	if post.Author.Username != expectedUsername {
		return &PostResolution{RedirectUsername: post.Author.Username}, nil
	}
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	view := &PostView{Post: *post, Comments: comments}
	if view.PostCount, err = s.posts.CountByAuthor(ctx, post.AuthorID); err != nil {
		return nil, fmt.Errorf("count author posts: %w", err)
	}
	if view.FollowerCount, err = s.follows.CountFollowers(ctx, post.AuthorID); err != nil {
		return nil, fmt.Errorf("count followers: %w", err)
	}
	if view.FollowingCount, err = s.follows.CountFollowing(ctx, post.AuthorID); err != nil {
		return nil, fmt.Errorf("count following: %w", err)
	}
	return &PostResolution{Post: view}, nil
}

// notFoundOr maps a missing record to ErrNotFound and wraps anything
// else with the lookup description.
func notFoundOr(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
