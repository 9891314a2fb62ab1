package dao

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "ctf:session:"

var (
	ErrSessionNotFound = errors.New("session not found")
)

// Session is the current-session record: a denormalized snapshot of the logged-in user.
type Session struct {
	ID       string    `json:"id"`
	User     User      `json:"user"`
	IssuedAt time.Time `json:"issuedAt"`
}

type SessionDAO struct {
	client *redis.Client
}

func NewSessionDAO(client *redis.Client) *SessionDAO {
	return &SessionDAO{
		client: client,
	}
}

func sessionKey(userID string) string {
	return sessionKeyPrefix + userID
}

func (d *SessionDAO) Save(ctx context.Context, session Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	return d.client.Set(ctx, sessionKey(session.User.ID), data, ttl).Err()
}

func (d *SessionDAO) Find(ctx context.Context, userID string) (Session, error) {
	data, err := d.client.Get(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, err
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return Session{}, err
	}

	return session, nil
}

// Refresh replaces the user snapshot of an existing session and keeps its TTL.
// It is a no-op when the user has no session.
func (d *SessionDAO) Refresh(ctx context.Context, user User) error {
	key := sessionKey(user.ID)

	return d.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}

		var session Session
		if err := json.Unmarshal(data, &session); err != nil {
			return err
		}
		session.User = user

		updated, err := json.Marshal(session)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SetArgs(ctx, key, updated, redis.SetArgs{KeepTTL: true})
			return nil
		})
		return err
	}, key)
}

func (d *SessionDAO) Delete(ctx context.Context, userID string) error {
	return d.client.Del(ctx, sessionKey(userID)).Err()
}
