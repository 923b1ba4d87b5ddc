package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sngm3741/uketsuke-services/api/internal/uketsuke/application"
	"github.com/sngm3741/uketsuke-services/api/internal/uketsuke/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ID 衝突時の再生成回数。`_id` の重複キーで弾かれたときだけ引き直す。
const createMaxAttempts = 3

// UketsukeRepository は受付表ドキュメントを MongoDB で扱う実装リポジトリ。
// ID はクライアント側で生成した12文字の英数字をそのまま `_id` に使う。
type UketsukeRepository struct {
	records *mongo.Collection
}

// NewUketsukeRepository は受付表コレクションを束縛したリポジトリを構築する。
func NewUketsukeRepository(db *mongo.Database, collection string) *UketsukeRepository {
	return &UketsukeRepository{records: db.Collection(collection)}
}

// Create は受付表を新規ドキュメントとして追加し、採番した ID を返す。
// `_id` の重複キーで失敗した場合は ID を引き直して再挿入する。
func (r *UketsukeRepository) Create(ctx context.Context, record domain.Record, tag application.ThreadTag) (string, error) {
	var lastErr error
	for attempt := 0; attempt < createMaxAttempts; attempt++ {
		id, err := newRecordID()
		if err != nil {
			return "", err
		}

		doc := uketsukeDocument{
			ID:            id,
			CreatedAt:     time.Now().UTC(),
			SchemaVersion: domain.SchemaVersionCurrent,
		}
		doc.SlackChannelID = strings.TrimSpace(tag.ChannelID)
		doc.SlackThreadTS = strings.TrimSpace(tag.ThreadTS)

		raw, err := bson.Marshal(record)
		if err != nil {
			return "", fmt.Errorf("受付表ドキュメントの変換に失敗: %w", err)
		}
		doc.Data = bson.Raw(raw)

		if _, err := r.records.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				lastErr = err
				continue
			}
			return "", err
		}
		return id, nil
	}
	return "", fmt.Errorf("受付表 ID の採番に %d 回失敗: %w", createMaxAttempts, lastErr)
}

// FindByID は ID から受付表を取得する。存在しない場合はエラーではなく nil を
// 返す。旧世代（schemaVersion 1）のドキュメントは読み込み時に現行世代へ移行する。
func (r *UketsukeRepository) FindByID(ctx context.Context, id string) (*application.StoredRecord, error) {
	var doc uketsukeDocument
	err := r.records.FindOne(ctx, bson.M{"_id": strings.TrimSpace(id)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	stored, err := mapUketsukeDocument(doc)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// Update は受付表本体を丸ごと差し替え、updatedAt を必ず刻む。
// ID そのものと作成時刻、スレッド紐付けは不変のまま残る。
func (r *UketsukeRepository) Update(ctx context.Context, id string, record domain.Record) (bool, error) {
	raw, err := bson.Marshal(record)
	if err != nil {
		return false, fmt.Errorf("受付表ドキュメントの変換に失敗: %w", err)
	}

	result, err := r.records.UpdateOne(ctx, bson.M{"_id": strings.TrimSpace(id)}, bson.M{
		"$set": bson.M{
			"data":          bson.Raw(raw),
			"updatedAt":     time.Now().UTC(),
			"schemaVersion": domain.SchemaVersionCurrent,
		},
	})
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

// FindRecent は作成日時の新しい順に受付表を返す。
func (r *UketsukeRepository) FindRecent(ctx context.Context, limit int) ([]application.StoredRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := r.records.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := make([]application.StoredRecord, 0, limit)
	for cursor.Next(ctx) {
		var doc uketsukeDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		stored, err := mapUketsukeDocument(doc)
		if err != nil {
			return nil, err
		}
		records = append(records, stored)
	}
	return records, cursor.Err()
}
