package chatrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/vita/internal/domain/coach"
)

// ValkeyRepository keeps each user's history in a Valkey list. With no
// MaxMessages and no TTL the list only grows, so it can serve as the sole
// chat store. A capped list is only a cache and is used behind
// CachedRepository.
type ValkeyRepository struct {
	client      valkey.Client
	prefix      string
	maxMessages int
	ttl         time.Duration
}

// ValkeyOptions tunes list retention. Zero MaxMessages and TTL keep
// everything.
type ValkeyOptions struct {
	Prefix      string
	MaxMessages int
	TTL         time.Duration
}

// NewValkeyRepository constructs a repository backed by client.
func NewValkeyRepository(client valkey.Client, opts ValkeyOptions) *ValkeyRepository {
	if opts.Prefix == "" {
		opts.Prefix = "vita:chat"
	}
	if opts.MaxMessages < 0 {
		opts.MaxMessages = 0
	}
	return &ValkeyRepository{
		client:      client,
		prefix:      opts.Prefix,
		maxMessages: opts.MaxMessages,
		ttl:         opts.TTL,
	}
}

// capped reports whether Append may drop old entries.
func (r *ValkeyRepository) capped() bool {
	return r.maxMessages > 0 || r.ttl > 0
}

// Capacity is the number of newest messages a capped list holds. Zero means
// unbounded.
func (r *ValkeyRepository) Capacity() int {
	return r.maxMessages
}

// Append pushes msg, then applies the retention cap when one is set.
func (r *ValkeyRepository) Append(ctx context.Context, msg coach.Message) error {
	payload, err := encodeMessage(stamp(msg))
	if err != nil {
		return err
	}
	key := r.historyKey(msg.UserID)
	cmds := valkey.Commands{r.client.B().Rpush().Key(key).Element(payload).Build()}
	return r.exec(ctx, append(cmds, r.retention(key)...))
}

// Replace overwrites the user's list with msgs, oldest first.
func (r *ValkeyRepository) Replace(ctx context.Context, userID uuid.UUID, msgs []coach.Message) error {
	key := r.historyKey(userID)
	cmds := valkey.Commands{r.client.B().Del().Key(key).Build()}
	if len(msgs) > 0 {
		payloads := make([]string, 0, len(msgs))
		for _, msg := range msgs {
			payload, err := encodeMessage(msg)
			if err != nil {
				return err
			}
			payloads = append(payloads, payload)
		}
		cmds = append(cmds, r.client.B().Rpush().Key(key).Element(payloads...).Build())
		cmds = append(cmds, r.retention(key)...)
	}
	return r.exec(ctx, cmds)
}

// Invalidate drops the user's list.
func (r *ValkeyRepository) Invalidate(ctx context.Context, userID uuid.UUID) error {
	return r.client.Do(ctx, r.client.B().Del().Key(r.historyKey(userID)).Build()).Error()
}

func (r *ValkeyRepository) retention(key string) valkey.Commands {
	var cmds valkey.Commands
	if r.maxMessages > 0 {
		cmds = append(cmds, r.client.B().Ltrim().Key(key).Start(int64(-r.maxMessages)).Stop(-1).Build())
	}
	if r.ttl > 0 {
		cmds = append(cmds, r.client.B().Expire().Key(key).Seconds(int64(r.ttl/time.Second)).Build())
	}
	return cmds
}

func (r *ValkeyRepository) exec(ctx context.Context, cmds valkey.Commands) error {
	for _, resp := range r.client.DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil {
			return err
		}
	}
	return nil
}

// Recent returns the newest limit messages, oldest first.
func (r *ValkeyRepository) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]coach.Message, error) {
	start := int64(0)
	if limit > 0 {
		start = int64(-limit)
	}
	resp := r.client.Do(ctx, r.client.B().Lrange().Key(r.historyKey(userID)).Start(start).Stop(-1).Build())
	items, err := resp.AsStrSlice()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return []coach.Message{}, nil
		}
		return nil, err
	}
	out := make([]coach.Message, 0, len(items))
	for _, item := range items {
		msg, err := decodeMessage(item)
		if err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, nil
}

func (r *ValkeyRepository) historyKey(userID uuid.UUID) string {
	return fmt.Sprintf("%s:history:%s", r.prefix, userID)
}

func encodeMessage(msg coach.Message) (string, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("encode chat message: %w", err)
	}
	return string(payload), nil
}

func decodeMessage(raw string) (coach.Message, error) {
	var msg coach.Message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		return coach.Message{}, fmt.Errorf("decode chat message: %w", err)
	}
	return msg, nil
}

var _ coach.Repository = (*ValkeyRepository)(nil)
