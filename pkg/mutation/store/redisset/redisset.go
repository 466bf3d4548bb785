// Package redisset 基于 Redis Set 的成员集合
// 用作自定义验证器的数据源，例如注册黑名单
package redisset

import (
	"context"
	"fmt"

	backend "github.com/redis/go-redis/v9"
)

// Set Redis 集合
type Set struct {
	client backend.UniversalClient
	key    string
}

// New 创建集合
func New(client backend.UniversalClient, key string) *Set {
	return &Set{client: client, key: key}
}

// Key 集合键名
func (s *Set) Key() string {
	return s.key
}

// Contains 是否包含成员
func (s *Set) Contains(ctx context.Context, member string) (bool, error) {
	ok, err := s.client.SIsMember(ctx, s.key, member).Result()
	if err != nil {
		return false, fmt.Errorf("redisset: contains %s: %w", s.key, err)
	}
	return ok, nil
}

// Add 添加成员
func (s *Set) Add(ctx context.Context, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	args := make([]any, len(members))
	for i, m := range members {
		args[i] = m
	}
	if err := s.client.SAdd(ctx, s.key, args...).Err(); err != nil {
		return fmt.Errorf("redisset: add %s: %w", s.key, err)
	}
	return nil
}

// Remove 移除成员
func (s *Set) Remove(ctx context.Context, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	args := make([]any, len(members))
	for i, m := range members {
		args[i] = m
	}
	if err := s.client.SRem(ctx, s.key, args...).Err(); err != nil {
		return fmt.Errorf("redisset: remove %s: %w", s.key, err)
	}
	return nil
}

// Members 全部成员
func (s *Set) Members(ctx context.Context) ([]string, error) {
	members, err := s.client.SMembers(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redisset: members %s: %w", s.key, err)
	}
	return members, nil
}
