package docstore

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	platformerrors "forge-server-go/internal/platform/errors"
)

// RedisConfig captures connection options for the redis driver.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	Prefix   string
}

const redisCASAttempts = 5

type redisStore struct {
	client *redis.Client
	prefix string
}

type redisEnvelope struct {
	Rev  int64  `json:"rev"`
	Data []byte `json:"data"`
}

// NewRedis constructs a redis-backed document store.
func NewRedis(cfg *RedisConfig) (Store, error) {
	if cfg == nil || cfg.Addr == "" {
		return nil, platformerrors.New(
			platformerrors.KindStorage, "docstore.redis", "redis address required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, platformerrors.Wrap(
			platformerrors.KindStorage, "docstore.redis", "redis ping failed", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "forge:doc:"
	}
	return &redisStore{client: client, prefix: prefix}, nil
}

func (s *redisStore) key(collection, key string) string {
	return s.prefix + collection + ":" + key
}

func (s *redisStore) Get(ctx context.Context, collection, key string) (Document, error) {
	raw, err := s.client.Get(ctx, s.key(collection, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Document{}, platformerrors.New(
				platformerrors.KindNotFound, "docstore.get", collection+"/"+key+" not found")
		}
		return Document{}, platformerrors.Wrap(
			platformerrors.KindStorage, "docstore.get", "redis get failed", err)
	}
	return decodeEnvelope(key, raw)
}

func (s *redisStore) FindOne(ctx context.Context, collection string, pred Predicate) (Document, error) {
	docs, err := s.FindMany(ctx, collection, pred)
	if err != nil {
		return Document{}, err
	}
	if len(docs) == 0 {
		return Document{}, platformerrors.New(
			platformerrors.KindNotFound, "docstore.find_one", "no document matched")
	}
	return docs[0], nil
}

func (s *redisStore) FindMany(ctx context.Context, collection string, pred Predicate) ([]Document, error) {
	pattern := s.prefix + collection + ":*"
	var keys []string
	iter := s.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, platformerrors.Wrap(
			platformerrors.KindStorage, "docstore.find_many", "redis scan failed", err)
	}
	sort.Strings(keys)

	var docs []Document
	for _, redisKey := range keys {
		raw, err := s.client.Get(ctx, redisKey).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, platformerrors.Wrap(
				platformerrors.KindStorage, "docstore.find_many", "redis get failed", err)
		}
		doc, err := decodeEnvelope(strings.TrimPrefix(redisKey, s.prefix+collection+":"), raw)
		if err != nil {
			return nil, err
		}
		if pred == nil || pred(doc) {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (s *redisStore) Insert(ctx context.Context, collection, key string, data []byte) (Document, error) {
	doc := Document{Key: key, Rev: 1, Data: data}
	raw, err := encodeEnvelope(doc)
	if err != nil {
		return Document{}, err
	}
	ok, err := s.client.SetNX(ctx, s.key(collection, key), raw, 0).Result()
	if err != nil {
		return Document{}, platformerrors.Wrap(
			platformerrors.KindStorage, "docstore.insert", "redis setnx failed", err)
	}
	if !ok {
		return Document{}, platformerrors.New(
			platformerrors.KindConflict, "docstore.insert", collection+"/"+key+" already exists")
	}
	return doc, nil
}

func (s *redisStore) Replace(ctx context.Context, collection, key string, data []byte) (Document, error) {
	return s.casReplace(ctx, collection, key, data, nil)
}

func (s *redisStore) ReplaceIf(ctx context.Context, collection, key string, data []byte, expectedRev int64) (Document, error) {
	return s.casReplace(ctx, collection, key, data, &expectedRev)
}

// casReplace rewrites a document under WATCH so the revision bump is atomic
// against concurrent writers. expectedRev, when non-nil, additionally gates
// the write on the caller-observed revision.
func (s *redisStore) casReplace(ctx context.Context, collection, key string, data []byte, expectedRev *int64) (Document, error) {
	redisKey := s.key(collection, key)
	var result Document

	txn := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, redisKey).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return platformerrors.New(
					platformerrors.KindNotFound, "docstore.replace", collection+"/"+key+" not found")
			}
			return err
		}
		current, err := decodeEnvelope(key, raw)
		if err != nil {
			return err
		}
		if expectedRev != nil && current.Rev != *expectedRev {
			return platformerrors.New(
				platformerrors.KindConflict, "docstore.replace_if", "revision mismatch")
		}

		next := Document{Key: key, Rev: current.Rev + 1, Data: data}
		encoded, err := encodeEnvelope(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, redisKey, encoded, 0)
			return nil
		})
		if err != nil {
			return err
		}
		result = next
		return nil
	}

	for i := 0; i < redisCASAttempts; i++ {
		err := s.client.Watch(ctx, txn, redisKey)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return Document{}, platformerrors.Wrap(
			platformerrors.KindStorage, "docstore.replace", "redis transaction failed", err)
	}
	return Document{}, platformerrors.New(
		platformerrors.KindConflict, "docstore.replace", "too much write contention")
}

func (s *redisStore) Delete(ctx context.Context, collection string, pred Predicate) (int64, error) {
	docs, err := s.FindMany(ctx, collection, pred)
	if err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(docs))
	for _, doc := range docs {
		keys = append(keys, s.key(collection, doc.Key))
	}
	deleted, err := s.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, platformerrors.Wrap(
			platformerrors.KindStorage, "docstore.delete", "redis del failed", err)
	}
	return deleted, nil
}

func (s *redisStore) Close(context.Context) error {
	return s.client.Close()
}

func encodeEnvelope(doc Document) ([]byte, error) {
	raw, err := Encode(redisEnvelope{Rev: doc.Rev, Data: doc.Data})
	if err != nil {
		return nil, platformerrors.Wrap(
			platformerrors.KindStorage, "docstore.encode", "envelope encode failed", err)
	}
	return raw, nil
}

func decodeEnvelope(key string, raw []byte) (Document, error) {
	var env redisEnvelope
	if err := Decode(Document{Data: raw}, &env); err != nil {
		return Document{}, platformerrors.Wrap(
			platformerrors.KindStorage, "docstore.decode", "envelope decode failed", err)
	}
	return Document{Key: key, Rev: env.Rev, Data: env.Data}, nil
}
