package services

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/AnshRaj112/portfolio-backend/internal/models"
)

const portfolioCacheKey = "portfolio:data"

// PayloadCache is the subset of CacheService the aggregator uses.
type PayloadCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Generation(ctx context.Context, key string) (int64, error)
	SetIfGeneration(ctx context.Context, key string, gen int64, value any, ttl time.Duration) (bool, error)
	Invalidate(ctx context.Context, key string) error
}

// PortfolioStores groups the collections read by the aggregator.
type PortfolioStores struct {
	Headers       SectionStore[models.Header]
	Introductions SectionStore[models.Introduction]
	Abouts        SectionStore[models.About]
	Skills        SectionStore[models.Skill]
	Experiences   SectionStore[models.Experience]
	Projects      SectionStore[models.Project]
	Educations    SectionStore[models.Education]
	Certificates  SectionStore[models.Certificate]
	Contacts      SectionStore[models.Contact]
	LeftSiders    SectionStore[models.LeftSider]
	Footers       SectionStore[models.Footer]
	SocialStats   SectionStore[models.SocialStats]
}

// PortfolioService assembles the whole-site payload and owns its cache.
type PortfolioService struct {
	stores PortfolioStores
	cache  PayloadCache
	ttl    time.Duration
	logger *zap.Logger
}

func NewPortfolioService(stores PortfolioStores, cache PayloadCache, ttl time.Duration, logger *zap.Logger) *PortfolioService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PortfolioService{stores: stores, cache: cache, ttl: ttl, logger: logger}
}

// Data returns the composite payload: the singleton of each singleton
// section (nil when absent) and every document of each list section.
// Cache errors are logged and never fail the read. A payload loaded while a
// write invalidated the cache is returned but not cached.
func (s *PortfolioService) Data(ctx context.Context) (*models.PortfolioData, error) {
	gen, fill := int64(0), false
	if s.cache != nil {
		var cached models.PortfolioData
		hit, err := s.cache.Get(ctx, portfolioCacheKey, &cached)
		if err != nil {
			s.logger.Warn("portfolio cache read failed", zap.Error(err))
		} else if hit {
			return &cached, nil
		}
		if gen, err = s.cache.Generation(ctx, portfolioCacheKey); err != nil {
			s.logger.Warn("portfolio cache generation read failed", zap.Error(err))
		} else {
			fill = true
		}
	}

	data, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	if data.LeftSides != nil && data.LeftSides.Email != "" {
		ls := *data.LeftSides
		ls.Email = "mailto:" + ls.Email
		data.LeftSides = &ls
	}

	if fill {
		stored, err := s.cache.SetIfGeneration(ctx, portfolioCacheKey, gen, data, s.ttl)
		switch {
		case err != nil:
			s.logger.Warn("portfolio cache write failed", zap.Error(err))
		case !stored:
			s.logger.Debug("portfolio changed while loading; payload not cached")
		}
	}
	return data, nil
}

// Invalidate drops the cached payload and bumps its generation. Called after
// every content mutation.
func (s *PortfolioService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, portfolioCacheKey); err != nil {
		s.logger.Warn("portfolio cache invalidation failed", zap.Error(err))
	}
}

func (s *PortfolioService) load(ctx context.Context) (*models.PortfolioData, error) {
	data := &models.PortfolioData{}
	g, gctx := errgroup.WithContext(ctx)

	readFirst(g, gctx, s.stores.Headers, &data.Headers)
	readFirst(g, gctx, s.stores.Introductions, &data.Introduction)
	readFirst(g, gctx, s.stores.Abouts, &data.About)
	readFirst(g, gctx, s.stores.Contacts, &data.Contacts)
	readFirst(g, gctx, s.stores.LeftSiders, &data.LeftSides)
	readFirst(g, gctx, s.stores.Footers, &data.Footer)
	readFirst(g, gctx, s.stores.SocialStats, &data.SocialStats)

	readList(g, gctx, s.stores.Skills, &data.Skills)
	readList(g, gctx, s.stores.Experiences, &data.Experiences)
	readList(g, gctx, s.stores.Projects, &data.Projects)
	readList(g, gctx, s.stores.Educations, &data.Educations)
	readList(g, gctx, s.stores.Certificates, &data.Certificates)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

func readFirst[T any](g *errgroup.Group, ctx context.Context, store SectionStore[T], dst **T) {
	g.Go(func() error {
		doc, err := store.First(ctx)
		if err != nil {
			return err
		}
		*dst = doc
		return nil
	})
}

func readList[T any](g *errgroup.Group, ctx context.Context, store SectionStore[T], dst *[]T) {
	g.Go(func() error {
		docs, err := store.List(ctx)
		if err != nil {
			return err
		}
		if docs == nil {
			docs = []T{}
		}
		*dst = docs
		return nil
	})
}
