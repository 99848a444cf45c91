package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exscan-backend/internal/config"
	"github.com/stemsi/exscan-backend/internal/grid"
)

// SheetService renders printable answer sheet PDFs, caching rendered bytes in
// Redis until the test's layout changes.
type SheetService struct {
	testService *TestService
	renderer    *grid.SheetRenderer
	rdb         *redis.Client
	log         zerolog.Logger
}

// NewSheetService creates a new SheetService.
func NewSheetService(testService *TestService, renderer *grid.SheetRenderer, rdb *redis.Client, log zerolog.Logger) *SheetService {
	return &SheetService{
		testService: testService,
		renderer:    renderer,
		rdb:         rdb,
		log:         log.With().Str("component", "sheet_service").Logger(),
	}
}

// Get returns the PDF for a test's answer sheet. Cache misses render from the
// current question tree; the invalidation on every layout mutation keeps the
// cached copy authoritative, so no TTL is set.
func (s *SheetService) Get(ctx context.Context, teacherID int, testID uuid.UUID) ([]byte, error) {
	if err := s.testService.CheckOwner(ctx, teacherID, testID); err != nil {
		return nil, err
	}

	cacheKey := config.CacheKey.TestSheetKey(testID.String())
	cached, err := s.rdb.Get(ctx, cacheKey).Bytes()
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Str("test_id", testID.String()).Msg("Sheet cache read failed")
	}

	detail, err := s.testService.GetDetail(ctx, testID)
	if err != nil {
		return nil, err
	}

	pdf, err := s.renderer.Render(detail)
	if err != nil {
		return nil, fmt.Errorf("render sheet: %w", err)
	}

	if err := s.rdb.Set(ctx, cacheKey, pdf, 0).Err(); err != nil {
		s.log.Warn().Err(err).Str("test_id", testID.String()).Msg("Sheet cache write failed")
	}

	return pdf, nil
}
