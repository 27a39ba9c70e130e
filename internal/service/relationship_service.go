package service

import (
	"context"
	"fmt"

	"github.com/plumekit/plume/internal/repository"
)

// RelationshipService manages follow edges, addressed by target
// username the way the URLs are.
type RelationshipService interface {
	Follow(ctx context.Context, viewerID uint, targetUsername string) error
	Unfollow(ctx context.Context, viewerID uint, targetUsername string) error
}

type relationshipService struct {
	users   repository.UserRepository
	follows repository.FollowRepository
}

func NewRelationshipService(users repository.UserRepository, follows repository.FollowRepository) RelationshipService {
	return &relationshipService{users: users, follows: follows}
}

// Follow inserts the viewer→target edge. Following yourself or someone
// you already follow is silently a no-op, not an error: the UI offers
// the action unconditionally and a double click must not fail.
func (s *relationshipService) Follow(ctx context.Context, viewerID uint, targetUsername string) error {
	target, err := s.users.GetByUsername(ctx, targetUsername)
	if err != nil {
		return notFoundOr(err, "get user %q", targetUsername)
	}
	if target.ID == viewerID {
		return nil
	}
	if err := s.follows.Create(ctx, viewerID, target.ID); err != nil {
		return fmt.Errorf("create follow edge: %w", err)
	}
	return nil
}

// Unfollow removes the edge if present; removing a missing edge is a
// no-op.
func (s *relationshipService) Unfollow(ctx context.Context, viewerID uint, targetUsername string) error {
	target, err := s.users.GetByUsername(ctx, targetUsername)
	if err != nil {
		return notFoundOr(err, "get user %q", targetUsername)
	}
	if err := s.follows.Delete(ctx, viewerID, target.ID); err != nil {
		return fmt.Errorf("delete follow edge: %w", err)
	}
	return nil
}
