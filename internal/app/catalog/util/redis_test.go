package util

import (
	"context"
	"testing"
	"time"

	"shopberries/internal/app/catalog/entity"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CategoryCacheTestSuite тестовый suite для кеша категорий в Redis
type CategoryCacheTestSuite struct {
	suite.Suite
	miniRedis *miniredis.Miniredis
	client    *redis.Client
	cache     *RedisClient
}

func TestCategoryCacheSuite(t *testing.T) {
	suite.Run(t, new(CategoryCacheTestSuite))
}

func (s *CategoryCacheTestSuite) SetupSuite() {
	var err error
	s.miniRedis, err = miniredis.Run()
	require.NoError(s.T(), err)

	s.client = redis.NewClient(&redis.Options{
		Addr: s.miniRedis.Addr(),
	})

	s.cache = NewRedisClientFromExisting(s.client)
}

func (s *CategoryCacheTestSuite) SetupTest() {
	s.miniRedis.FlushAll()
}

func (s *CategoryCacheTestSuite) TearDownSuite() {
	s.client.Close()
	s.miniRedis.Close()
}

func newCachedCategory() *entity.Category {
	return &entity.Category{
		ID:    primitive.NewObjectID(),
		Name:  "Berries",
		Icon:  "berry-icon",
		Color: "#aa0033",
	}
}

// ===================== GetCategory Tests =====================

func (s *CategoryCacheTestSuite) TestGetCategory_Success() {
	ctx := context.Background()

	// Arrange - сначала сохраняем категорию
	category := newCachedCategory()
	err := s.cache.SetCategory(ctx, category, 10*time.Minute)
	s.NoError(err)

	// Act
	result, err := s.cache.GetCategory(ctx, category.ID.Hex())

	// Assert
	s.NoError(err)
	s.NotNil(result)
	s.Equal(category.ID, result.ID)
	s.Equal("Berries", result.Name)
}

func (s *CategoryCacheTestSuite) TestGetCategory_MissReturnsNil() {
	ctx := context.Background()

	// Act - кеш пустой
	result, err := s.cache.GetCategory(ctx, primitive.NewObjectID().Hex())

	// Assert - промах это не ошибка
	s.NoError(err)
	s.Nil(result)
}

func (s *CategoryCacheTestSuite) TestGetCategory_ExpiredEntryIsMiss() {
	ctx := context.Background()

	category := newCachedCategory()
	err := s.cache.SetCategory(ctx, category, time.Minute)
	s.NoError(err)

	// Act - прокручиваем время за пределы TTL
	s.miniRedis.FastForward(2 * time.Minute)

	result, err := s.cache.GetCategory(ctx, category.ID.Hex())

	// Assert
	s.NoError(err)
	s.Nil(result)
}

// ===================== DeleteCategory Tests =====================

func (s *CategoryCacheTestSuite) TestDeleteCategory_RemovesEntry() {
	ctx := context.Background()

	category := newCachedCategory()
	err := s.cache.SetCategory(ctx, category, 10*time.Minute)
	s.NoError(err)

	// Act
	err = s.cache.DeleteCategory(ctx, category.ID.Hex())
	s.NoError(err)

	// Assert
	result, err := s.cache.GetCategory(ctx, category.ID.Hex())
	s.NoError(err)
	s.Nil(result)
}

func (s *CategoryCacheTestSuite) TestDeleteCategory_MissingKeyIsNoop() {
	ctx := context.Background()

	// Act
	err := s.cache.DeleteCategory(ctx, primitive.NewObjectID().Hex())

	// Assert
	s.NoError(err)
}
