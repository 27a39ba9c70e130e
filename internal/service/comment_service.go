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

type CommentService interface {
	Add(ctx context.Context, authorID, postID uint, text string) (*model.Comment, error)
}

type commentService struct {
	db *gorm.DB
}

func NewCommentService(db *gorm.DB) CommentService {
	return &commentService{db: db}
}

// Add attaches a comment to an existing post. The existence check and
// the insert share one transaction, so a post deleted mid-request
// cannot gain a dangling comment.
func (s *commentService) Add(ctx context.Context, authorID, postID uint, text string) (*model.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	comment := &model.Comment{PostID: postID, AuthorID: authorID, Text: text}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post model.Post
		if err := tx.Select("id").First(&post, postID).Error; err != nil {
			return err
		}
		return repository.NewCommentRepository(tx).Create(ctx, comment)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("add comment to post %d: %w", postID, err)
	}
	return comment, nil
}
