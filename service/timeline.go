package service

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"murmur/models"
	"murmur/repositories"
)

type PageMeta struct {
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

type TimelinePage struct {
	Data []MurmurView
	Meta PageMeta
}

// Timeline merges a user's own murmurs with those of everyone they follow.
type Timeline struct {
	graph   *Graph
	murmurs repositories.MurmurRepository
}

func NewTimeline(graph *Graph, murmurs repositories.MurmurRepository) *Timeline {
	return &Timeline{graph: graph, murmurs: murmurs}
}

// Get returns one page of userID's timeline, newest first with ties broken
// by id descending. page and limit below 1 are treated as 1.
func (t *Timeline) Get(ctx context.Context, userID models.ID, page, limit int) (*TimelinePage, error) {
	page = max(page, 1)
	limit = max(limit, 1)

	following, err := t.graph.FollowingSet(ctx, userID)
	if err != nil {
		return nil, err
	}
	audience := audienceOf(userID, following)
	// an offset past math.MaxInt is past any real row count
	offset, inRange := pageOffset(page, limit)

	var (
		total   int64
		murmurs []models.Murmur
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := t.murmurs.CountByAuthors(gctx, audience)
		if err != nil {
			return fmt.Errorf("count timeline: %w", err)
		}
		total = n
		return nil
	})
	g.Go(func() error {
		if !inRange {
			return nil
		}
		ms, err := t.murmurs.PageByAuthors(gctx, audience, offset, limit)
		if err != nil {
			return fmt.Errorf("load timeline: %w", err)
		}
		murmurs = ms
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	views, err := annotate(ctx, t.murmurs, murmurs, userID)
	if err != nil {
		return nil, err
	}

	return &TimelinePage{
		Data: views,
		Meta: PageMeta{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: totalPages(total, limit),
		},
	}, nil
}

func audienceOf(userID models.ID, following []models.ID) []models.ID {
	audience := make([]models.ID, 0, len(following)+1)
	audience = append(audience, userID)
	for _, id := range following {
		if id != userID {
			audience = append(audience, id)
		}
	}
	return audience
}

// pageOffset returns (page-1)*limit, or false when that overflows int.
func pageOffset(page, limit int) (int, bool) {
	if page-1 > math.MaxInt/limit {
		return 0, false
	}
	return (page - 1) * limit, true
}

func totalPages(total int64, limit int) int {
	if total <= 0 {
		return 0
	}
	return int((total-1)/int64(limit) + 1)
}
