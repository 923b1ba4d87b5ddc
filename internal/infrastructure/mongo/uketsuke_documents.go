package mongo

import (
	"fmt"
	"time"

	"github.com/sngm3741/uketsuke-services/api/internal/uketsuke/application"
	"github.com/sngm3741/uketsuke-services/api/internal/uketsuke/domain"
	"go.mongodb.org/mongo-driver/bson"
)

// uketsukeDocument は MongoDB 上での受付表スキーマを Go 構造体として表現したもの。
// data は世代により形が異なるため bson.Raw のまま持ち、読み込み時に
// schemaVersion を見て詰め替える。
type uketsukeDocument struct {
	ID             string     `bson:"_id"`
	Data           bson.Raw   `bson:"data"`
	CreatedAt      time.Time  `bson:"createdAt"`
	UpdatedAt      *time.Time `bson:"updatedAt,omitempty"`
	SlackChannelID string     `bson:"slackChannelId,omitempty"`
	SlackThreadTS  string     `bson:"slackThreadTs,omitempty"`
	SchemaVersion  int        `bson:"schemaVersion,omitempty"`
}

// legacyWorkItemsDocument は旧世代ドキュメントの作業内容だけを取り出すための型。
type legacyWorkItemsDocument struct {
	SagyoNaiyo []domain.LegacyWorkItem `bson:"sagyoNaiyo"`
}

// mapUketsukeDocument は保存ドキュメントをドメインのレコードへ詰め替える。
// schemaVersion が未設定または 1 のものは旧世代として作業内容を移行する。
func mapUketsukeDocument(doc uketsukeDocument) (application.StoredRecord, error) {
	var record domain.Record
	if len(doc.Data) > 0 {
		if err := bson.Unmarshal(doc.Data, &record); err != nil {
			return application.StoredRecord{}, fmt.Errorf("受付表 %s の読み込みに失敗: %w", doc.ID, err)
		}
	}

	if doc.SchemaVersion < domain.SchemaVersionCurrent && len(doc.Data) > 0 {
		var legacy legacyWorkItemsDocument
		if err := bson.Unmarshal(doc.Data, &legacy); err == nil && len(legacy.SagyoNaiyo) > 0 {
			record.SagyoNaiyo = domain.MigrateWorkItems(legacy.SagyoNaiyo)
		}
	}

	record.FillDefaults()
	return application.StoredRecord{
		ID:     doc.ID,
		Record: record,
		Tag: application.ThreadTag{
			ChannelID: doc.SlackChannelID,
			ThreadTS:  doc.SlackThreadTS,
		},
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}
