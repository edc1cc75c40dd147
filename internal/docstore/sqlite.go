package docstore

import (
	"context"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	platformerrors "forge-server-go/internal/platform/errors"
	"forge-server-go/internal/platform/storage"
)

type sqliteStore struct {
	db *gorm.DB
}

// NewSQLite builds a sqlite-backed document store over an opened gorm handle.
func NewSQLite(db *gorm.DB) (Store, error) {
	if db == nil {
		return nil, platformerrors.New(
			platformerrors.KindStorage, "docstore.sqlite", "sqlite driver requires database handle")
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Get(ctx context.Context, collection, key string) (Document, error) {
	var record storage.DocumentRecord
	err := s.db.WithContext(ctx).
		Where("collection = ? AND key = ?", collection, key).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Document{}, platformerrors.New(
				platformerrors.KindNotFound, "docstore.get", collection+"/"+key+" not found")
		}
		return Document{}, platformerrors.Wrap(
			platformerrors.KindStorage, "docstore.get", "query failed", err)
	}
	return toDocument(record), nil
}

func (s *sqliteStore) FindOne(ctx context.Context, collection string, pred Predicate) (Document, error) {
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

func (s *sqliteStore) FindMany(ctx context.Context, collection string, pred Predicate) ([]Document, error) {
	var records []storage.DocumentRecord
	err := s.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order("key").
		Find(&records).Error
	if err != nil {
		return nil, platformerrors.Wrap(
			platformerrors.KindStorage, "docstore.find_many", "query failed", err)
	}

	var docs []Document
	for _, record := range records {
		doc := toDocument(record)
		if pred == nil || pred(doc) {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (s *sqliteStore) Insert(ctx context.Context, collection, key string, data []byte) (Document, error) {
	record := storage.DocumentRecord{
		Collection: collection,
		Key:        key,
		Rev:        1,
		Data:       datatypes.JSON(data),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&storage.DocumentRecord{}).
			Where("collection = ? AND key = ?", collection, key).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return platformerrors.New(
				platformerrors.KindConflict, "docstore.insert", collection+"/"+key+" already exists")
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return Document{}, platformerrors.Wrap(
			platformerrors.KindStorage, "docstore.insert", "insert failed", err)
	}
	return toDocument(record), nil
}

func (s *sqliteStore) Replace(ctx context.Context, collection, key string, data []byte) (Document, error) {
	res := s.db.WithContext(ctx).Model(&storage.DocumentRecord{}).
		Where("collection = ? AND key = ?", collection, key).
		Updates(map[string]any{
			"data": datatypes.JSON(data),
			"rev":  gorm.Expr("rev + 1"),
		})
	if res.Error != nil {
		return Document{}, platformerrors.Wrap(
			platformerrors.KindStorage, "docstore.replace", "update failed", res.Error)
	}
	if res.RowsAffected == 0 {
		return Document{}, platformerrors.New(
			platformerrors.KindNotFound, "docstore.replace", collection+"/"+key+" not found")
	}
	return s.Get(ctx, collection, key)
}

func (s *sqliteStore) ReplaceIf(ctx context.Context, collection, key string, data []byte, expectedRev int64) (Document, error) {
	res := s.db.WithContext(ctx).Model(&storage.DocumentRecord{}).
		Where("collection = ? AND key = ? AND rev = ?", collection, key, expectedRev).
		Updates(map[string]any{
			"data": datatypes.JSON(data),
			"rev":  expectedRev + 1,
		})
	if res.Error != nil {
		return Document{}, platformerrors.Wrap(
			platformerrors.KindStorage, "docstore.replace_if", "update failed", res.Error)
	}
	if res.RowsAffected == 0 {
		// Distinguish a vanished document from a stale revision.
		if _, err := s.Get(ctx, collection, key); err != nil {
			return Document{}, err
		}
		return Document{}, platformerrors.New(
			platformerrors.KindConflict, "docstore.replace_if", "revision mismatch")
	}
	return s.Get(ctx, collection, key)
}

func (s *sqliteStore) Delete(ctx context.Context, collection string, pred Predicate) (int64, error) {
	docs, err := s.FindMany(ctx, collection, pred)
	if err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(docs))
	for _, doc := range docs {
		keys = append(keys, doc.Key)
	}
	res := s.db.WithContext(ctx).
		Where("collection = ? AND key IN ?", collection, keys).
		Delete(&storage.DocumentRecord{})
	if res.Error != nil {
		return 0, platformerrors.Wrap(
			platformerrors.KindStorage, "docstore.delete", "delete failed", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *sqliteStore) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toDocument(record storage.DocumentRecord) Document {
	return Document{
		Key:  record.Key,
		Rev:  record.Rev,
		Data: []byte(record.Data),
	}
}
