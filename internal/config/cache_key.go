package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// TestSheetKey returns the cache key for a test's rendered answer sheet PDF
func (r *CacheKeyStruct) TestSheetKey(testID string) string {
	return fmt.Sprintf("test:%s:sheet", testID)
}

// TestResultsChannel returns the Redis PubSub channel name for a test's grading events
func (r *CacheKeyStruct) TestResultsChannel(testID string) string {
	return fmt.Sprintf("test:%s:results", testID)
}

var CacheKey = NewCacheKeyStruct()
