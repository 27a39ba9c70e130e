package service

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/plumekit/plume/internal/model"
	"github.com/plumekit/plume/internal/repository"
)

type testEnv struct {
	db        *gorm.DB
	feeds     FeedService
	posts     PostService
	comments  CommentService
	relations RelationshipService
}

func newTestEnv(t *testing.T, pageSize int) *testEnv {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:?_pragma=foreign_keys(1)"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&model.User{},
		&model.Group{},
		&model.Post{},
		&model.Comment{},
		&model.Follow{},
	))

	users := repository.NewUserRepository(gdb)
	groups := repository.NewGroupRepository(gdb)
	posts := repository.NewPostRepository(gdb)
	comments := repository.NewCommentRepository(gdb)
	follows := repository.NewFollowRepository(gdb)

	return &testEnv{
		db:        gdb,
		feeds:     NewFeedService(posts, groups, users, comments, follows, pageSize),
		posts:     NewPostService(gdb, groups),
		comments:  NewCommentService(gdb),
		relations: NewRelationshipService(users, follows),
	}
}

func (e *testEnv) user(t *testing.T, username string) *model.User {
	t.Helper()
	u := &model.User{Username: username}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *testEnv) group(t *testing.T, title, slug string) *model.Group {
	t.Helper()
	g := &model.Group{Title: title, Slug: slug}
	require.NoError(t, e.db.Create(g).Error)
	return g
}

func (e *testEnv) post(t *testing.T, authorID uint, text string, groupID *uint) *model.Post {
	t.Helper()
	p := &model.Post{Text: text, AuthorID: authorID, GroupID: groupID}
	require.NoError(t, e.db.Create(p).Error)
	return p
}

func (e *testEnv) followEdgeCount(t *testing.T) int64 {
	t.Helper()
	var cnt int64
	require.NoError(t, e.db.Model(&model.Follow{}).Count(&cnt).Error)
	return cnt
}
