package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	userKeyPrefix     = "user:%d"
	postSlugKeyPrefix = "post:slug:%s"
	pageSlugKeyPrefix = "page:slug:%s"
	categoriesKey     = "categories:all"
)

const (
	UserTTL       = 5 * time.Minute
	PostTTL       = 10 * time.Minute
	PageTTL       = 30 * time.Minute
	CategoriesTTL = 10 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(userKeyPrefix, userID)
}

func PostSlugKey(slug string) string {
	return fmt.Sprintf(postSlugKeyPrefix, slug)
}

func PageSlugKey(slug string) string {
	return fmt.Sprintf(pageSlugKeyPrefix, slug)
}

func CategoriesKey() string {
	return categoriesKey
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, slug string) {
	Invalidate(ctx, PostSlugKey(slug))
}

func InvalidatePage(ctx context.Context, slug string) {
	Invalidate(ctx, PageSlugKey(slug))
}

func InvalidateCategories(ctx context.Context) {
	Invalidate(ctx, categoriesKey)
}
