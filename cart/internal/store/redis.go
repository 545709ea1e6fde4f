package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/cart/pkg/request"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/common/otel"
	"github.com/Alturino/storefront/internal/log"
)

const (
	KEY_CART_ITEMS    = "cart:%s:items"
	KEY_ACCESS_TOKEN  = "cart:%s:token"
	KEY_EVENT_CHANNEL = "cart:%s:events"

	maxWatchRetries = 5
)

type RedisStores struct {
	client   *redis.Client
	tokenTTL time.Duration
}

func NewRedisStores(client *redis.Client, tokenTTL time.Duration) *RedisStores {
	return &RedisStores{client: client, tokenTTL: tokenTTL}
}

func (r *RedisStores) ForSession(session string) Store {
	return &RedisStore{client: r.client, session: session, tokenTTL: r.tokenTTL}
}

type RedisStore struct {
	client   *redis.Client
	session  string
	tokenTTL time.Duration
}

func (s *RedisStore) itemsKey() string {
	return fmt.Sprintf(KEY_CART_ITEMS, s.session)
}

func (s *RedisStore) tokenKey() string {
	return fmt.Sprintf(KEY_ACCESS_TOKEN, s.session)
}

func (s *RedisStore) channel() string {
	return fmt.Sprintf(KEY_EVENT_CHANNEL, s.session)
}

func decodeItems(raw []byte) ([]request.CartItem, error) {
	items := []request.CartItem{}
	if len(raw) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed decoding cart items with error=%w", err)
	}
	return items, nil
}

func (s *RedisStore) Items(c context.Context) ([]request.CartItem, error) {
	c, span := otel.Tracer.Start(c, "RedisStore Items")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "RedisStore Items").
		Str(log.KeyCacheKey, s.itemsKey()).
		Logger()

	raw, err := s.client.Get(c, s.itemsKey()).Bytes()
	if err != nil && !errors.Is(err, redis.Nil) {
		err = fmt.Errorf("failed getting cart items with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	items, err := decodeItems(raw)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Trace().Int(log.KeyCartItems, len(items)).Msg("got cart items")
	return items, nil
}

func (s *RedisStore) AccessToken(c context.Context) (string, error) {
	c, span := otel.Tracer.Start(c, "RedisStore AccessToken")
	defer span.End()

	token, err := s.client.Get(c, s.tokenKey()).Result()
	if errors.Is(err, redis.Nil) || (err == nil && token == "") {
		err = fmt.Errorf("failed getting access token session=%s with error=%w", s.session, commonErrors.ErrEmptyAccessToken)
		commonErrors.HandleError(err, span)
		return "", err
	}
	if err != nil {
		err = fmt.Errorf("failed getting access token with error=%w", err)
		commonErrors.HandleError(err, span)
		zerolog.Ctx(c).Error().Err(err).Str(log.KeyTag, "RedisStore AccessToken").Msg(err.Error())
		return "", err
	}
	return token, nil
}

func (s *RedisStore) Subscribe(c context.Context) (<-chan Event, func(), error) {
	c, span := otel.Tracer.Start(c, "RedisStore Subscribe")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "RedisStore Subscribe").
		Str(log.KeyCacheKey, s.channel()).
		Logger()

	logger.Trace().Msg("subscribing to cart events")
	pubsub := s.client.Subscribe(c, s.channel())
	if _, err := pubsub.Receive(c); err != nil {
		_ = pubsub.Close()
		err = fmt.Errorf("failed subscribing to cart events with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, nil, err
	}
	logger.Trace().Msg("subscribed to cart events")

	out := make(chan Event, subscriberBuffer)
	done := make(chan struct{})
	go func() {
		defer close(out)
		messages := pubsub.Channel()
		for {
			select {
			case <-done:
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				event := Event{}
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					logger.Error().Err(err).Msg("failed decoding cart event")
					continue
				}
				select {
				case out <- event:
				default:
				}
			}
		}
	}()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			close(done)
			if err := pubsub.Close(); err != nil {
				logger.Error().Err(err).Msg("failed closing cart event subscription")
			}
		})
	}
	stop := context.AfterFunc(c, unsubscribe)
	return out, func() {
		stop()
		unsubscribe()
	}, nil
}

func (s *RedisStore) Dispatch(c context.Context, action Action) error {
	c, span := otel.Tracer.Start(c, "RedisStore Dispatch")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "RedisStore Dispatch").
		Str(log.KeySessionID, s.session).
		Str(log.KeyAction, string(action.Type)).
		Logger()

	if action.Type == ActionSetAccessToken {
		logger = logger.With().Str(log.KeyProcess, "setting access token").Logger()
		logger.Trace().Msg("setting access token")
		err := s.client.Set(c, s.tokenKey(), action.Token, s.tokenTTL).Err()
		if err != nil {
			err = fmt.Errorf("failed setting access token with error=%w", err)
			commonErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return err
		}
		logger.Trace().Msg("set access token")
	} else {
		logger = logger.With().Str(log.KeyProcess, "updating cart items").Logger()
		logger.Trace().Msg("updating cart items")
		if err := s.updateItems(c, action); err != nil {
			commonErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return err
		}
		logger.Trace().Msg("updated cart items")
	}

	logger = logger.With().Str(log.KeyProcess, "publishing cart event").Logger()
	payload, err := json.Marshal(Event{Session: s.session, Action: action.Type})
	if err != nil {
		err = fmt.Errorf("failed encoding cart event with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if err = s.client.Publish(c, s.channel(), payload).Err(); err != nil {
		err = fmt.Errorf("failed publishing cart event with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Trace().Msg("published cart event")
	return nil
}

func (s *RedisStore) updateItems(c context.Context, action Action) error {
	key := s.itemsKey()
	update := func(tx *redis.Tx) error {
		raw, err := tx.Get(c, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("failed getting cart items with error=%w", err)
		}
		items, err := decodeItems(raw)
		if err != nil {
			return err
		}
		items, err = Reduce(items, action)
		if err != nil {
			return err
		}
		payload, err := json.Marshal(items)
		if err != nil {
			return fmt.Errorf("failed encoding cart items with error=%w", err)
		}
		_, err = tx.TxPipelined(c, func(pipe redis.Pipeliner) error {
			pipe.Set(c, key, payload, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxWatchRetries; i++ {
		err := s.client.Watch(c, update, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("failed updating cart items after %d attempts with error=%w", maxWatchRetries, redis.TxFailedErr)
}
