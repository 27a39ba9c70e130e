package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/plumekit/plume/internal/model"
)

// feedOrder is the single ordering rule shared by every feed. Ties on
// created_at break by descending id so pagination stays deterministic.
const feedOrder = "created_at DESC, id DESC"

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	Update(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id uint) (*model.Post, error)
	Delete(ctx context.Context, id uint) error

	ListGlobal(ctx context.Context, offset, limit int) ([]model.Post, error)
	CountGlobal(ctx context.Context) (int64, error)
	ListByGroup(ctx context.Context, groupID uint, offset, limit int) ([]model.Post, error)
	CountByGroup(ctx context.Context, groupID uint) (int64, error)
	ListByAuthor(ctx context.Context, authorID uint, offset, limit int) ([]model.Post, error)
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
	ListFollowed(ctx context.Context, viewerID uint, offset, limit int) ([]model.Post, error)
	CountFollowed(ctx context.Context, viewerID uint) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// Update writes the post row only; loaded associations stay untouched.
func (r *postRepository) Update(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*model.Post, error) {
	var p model.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Post{}, id).Error
}

func (r *postRepository) ListGlobal(ctx context.Context, offset, limit int) ([]model.Post, error) {
	return r.list(ctx, r.db.WithContext(ctx), offset, limit)
}

func (r *postRepository) CountGlobal(ctx context.Context) (int64, error) {
	return r.count(r.db.WithContext(ctx))
}

func (r *postRepository) ListByGroup(ctx context.Context, groupID uint, offset, limit int) ([]model.Post, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("group_id = ?", groupID), offset, limit)
}

func (r *postRepository) CountByGroup(ctx context.Context, groupID uint) (int64, error) {
	return r.count(r.db.WithContext(ctx).Where("group_id = ?", groupID))
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint, offset, limit int) ([]model.Post, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("author_id = ?", authorID), offset, limit)
}

func (r *postRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	return r.count(r.db.WithContext(ctx).Where("author_id = ?", authorID))
}

// ListFollowed reads the follow feed directly off the post relation
// (fan-out on read): posts whose author has a follow edge from viewerID.
func (r *postRepository) ListFollowed(ctx context.Context, viewerID uint, offset, limit int) ([]model.Post, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("author_id IN (?)", r.followedAuthors(viewerID)), offset, limit)
}

func (r *postRepository) CountFollowed(ctx context.Context, viewerID uint) (int64, error) {
	return r.count(r.db.WithContext(ctx).Where("author_id IN (?)", r.followedAuthors(viewerID)))
}

func (r *postRepository) followedAuthors(viewerID uint) *gorm.DB {
	return r.db.Model(&model.Follow{}).Select("author_id").Where("user_id = ?", viewerID)
}

func (r *postRepository) list(ctx context.Context, tx *gorm.DB, offset, limit int) ([]model.Post, error) {
	var posts []model.Post
	err := tx.
		Preload("Author").
		Preload("Group").
		Order(feedOrder).
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) count(tx *gorm.DB) (int64, error) {
	var n int64
	err := tx.Model(&model.Post{}).Count(&n).Error
	return n, err
}
