package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// 加锁: SET key owner NX EX ttl
// 解锁: Lua 脚本比对 owner 后再 DEL，锁过期后被他人持有时不会误删

var ErrLockFailed = errors.New("获取分布式锁失败")

var unlockScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

// DistributedLock 基于 Redis 的分布式锁
type DistributedLock struct {
	client     *redis.Client
	key        string
	owner      string // 锁持有者标识
	expiration time.Duration
}

func NewDistributedLock(client *redis.Client, key, owner string, expiration time.Duration) *DistributedLock {
	return &DistributedLock{
		client:     client,
		key:        key,
		owner:      owner,
		expiration: expiration,
	}
}

// TryLock 非阻塞加锁
func (l *DistributedLock) TryLock(ctx context.Context) (bool, error) {
	return l.client.SetNX(ctx, l.key, l.owner, l.expiration).Result()
}

// Lock 阻塞加锁，每隔 retryInterval 重试一次，最多 maxRetries 次
func (l *DistributedLock) Lock(ctx context.Context, retryInterval time.Duration, maxRetries int) error {
	for i := 0; i < maxRetries; i++ {
		ok, err := l.TryLock(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
		}
	}
	return ErrLockFailed
}

// Unlock 释放锁，只删除自己持有的锁
func (l *DistributedLock) Unlock(ctx context.Context) error {
	return unlockScript.Run(ctx, l.client, []string{l.key}, l.owner).Err()
}

func (l *DistributedLock) Key() string {
	return l.key
}

// NewSpendLock 按孩子维度加锁，同一个孩子的消费串行执行，不同孩子互不影响
func NewSpendLock(client *redis.Client, child, owner string) *DistributedLock {
	key := fmt.Sprintf("allowance:lock:child:%s", child)
	return NewDistributedLock(client, key, owner, 30*time.Second)
}
