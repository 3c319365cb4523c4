package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// BatchInvalidate invalidates multiple patterns in batch
func BatchInvalidate(ctx context.Context, helper *CacheHelper, patterns []string) error {
	var lastErr error
	for _, pattern := range patterns {
		if err := helper.InvalidatePattern(ctx, pattern); err != nil {
			lastErr = err
			slog.ErrorContext(ctx, "Failed to invalidate pattern in batch",
				"error", err,
				"pattern", pattern)
		}
	}
	return lastErr
}

// InvalidateQuizCache invalidates all quiz-related caches
func InvalidateQuizCache(ctx context.Context, cm *CacheManager, quizID uint, creatorID string) {
	SafeDelete(ctx, cm.Quiz,
		fmt.Sprintf("id:%d", quizID),
		fmt.Sprintf("questions:%d", quizID))

	SafeInvalidatePattern(ctx, cm.Quiz, fmt.Sprintf("creator:%s:*", creatorID))
	SafeInvalidatePattern(ctx, cm.Quiz, "list:*")
	SafeInvalidatePattern(ctx, cm.Progress, "subject:*")
}

// InvalidateAttemptCache drops everything derived from a student's attempts
func InvalidateAttemptCache(ctx context.Context, cm *CacheManager, quizID uint, studentID string) {
	SafeDelete(ctx, cm.Fast, fmt.Sprintf("attempt:%d:%s", quizID, studentID))
	SafeInvalidatePattern(ctx, cm.Progress, fmt.Sprintf("student:%s*", studentID))
	SafeInvalidatePattern(ctx, cm.Progress, "subject:*")
}
