package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	onlineSetKey    = "presence:online"
	lastSeenKeyFmt  = "presence:last_seen:%s"
	typingKeyFmt    = "presence:typing:%s:%s"
	typingKeyExpiry = 5 * time.Second
)

// Presence mirrors who is online and who is typing where. Typing keys carry a
// TTL slightly above the broadcast expiry so readers never see a key the hub
// already considers dead.
type Presence struct {
	client *redis.Client
}

func NewPresence(client *redis.Client) *Presence {
	return &Presence{client: client}
}

func (p *Presence) SetOnline(ctx context.Context, userID string) error {
	pipe := p.client.Pipeline()
	pipe.SAdd(ctx, onlineSetKey, userID)
	pipe.Set(ctx, fmt.Sprintf(lastSeenKeyFmt, userID), time.Now().UnixMilli(), 0)
	_, err := pipe.Exec(ctx)
	return err
}

func (p *Presence) SetOffline(ctx context.Context, userID string) error {
	pipe := p.client.Pipeline()
	pipe.SRem(ctx, onlineSetKey, userID)
	pipe.Set(ctx, fmt.Sprintf(lastSeenKeyFmt, userID), time.Now().UnixMilli(), 0)
	_, err := pipe.Exec(ctx)
	return err
}

func (p *Presence) IsOnline(ctx context.Context, userID string) (bool, error) {
	return p.client.SIsMember(ctx, onlineSetKey, userID).Result()
}

func (p *Presence) TrackTyping(ctx context.Context, candidateID, userID string, isTyping bool) error {
	key := fmt.Sprintf(typingKeyFmt, candidateID, userID)
	if isTyping {
		return p.client.Set(ctx, key, 1, typingKeyExpiry).Err()
	}
	return p.client.Del(ctx, key).Err()
}
