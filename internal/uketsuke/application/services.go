package application

import (
	"context"
	"time"

	"github.com/sngm3741/uketsuke-services/api/internal/uketsuke/domain"
)

// ThreadTag は受付表の発生元となった Slack スレッドの紐付け情報。
type ThreadTag struct {
	ChannelID string
	ThreadTS  string
}

// StoredRecord は保存済み受付表とそのメタ情報。
type StoredRecord struct {
	ID        string
	Record    domain.Record
	Tag       ThreadTag
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// RecordRepository は受付表ドキュメントの読み書きを提供するポート。
// 存在しない ID の検索はエラーではなく nil を返す。
type RecordRepository interface {
	Create(ctx context.Context, record domain.Record, tag ThreadTag) (string, error)
	FindByID(ctx context.Context, id string) (*StoredRecord, error)
	Update(ctx context.Context, id string, record domain.Record) (bool, error)
	FindRecent(ctx context.Context, limit int) ([]StoredRecord, error)
}

// RecordCommandService は受付表の作成・更新ユースケースを提供する。
type RecordCommandService interface {
	Create(ctx context.Context, record domain.Record, tag ThreadTag) (string, error)
	Update(ctx context.Context, id string, record domain.Record) (bool, error)
}

// RecordQueryService は受付表の参照ユースケースを提供するリーダーモデル。
type RecordQueryService interface {
	Detail(ctx context.Context, id string) (*StoredRecord, error)
	Recent(ctx context.Context, limit int) ([]StoredRecord, error)
}

// NewRecordCommandService creates the write-side service.
func NewRecordCommandService(repo RecordRepository) RecordCommandService {
	return &recordCommandService{repo: repo}
}

type recordCommandService struct {
	repo RecordRepository
}

func (s *recordCommandService) Create(ctx context.Context, record domain.Record, tag ThreadTag) (string, error) {
	record.FillDefaults()
	return s.repo.Create(ctx, record, tag)
}

func (s *recordCommandService) Update(ctx context.Context, id string, record domain.Record) (bool, error) {
	record.FillDefaults()
	return s.repo.Update(ctx, id, record)
}

// NewRecordQueryService creates the read-side service.
func NewRecordQueryService(repo RecordRepository) RecordQueryService {
	return &recordQueryService{repo: repo}
}

type recordQueryService struct {
	repo RecordRepository
}

func (s *recordQueryService) Detail(ctx context.Context, id string) (*StoredRecord, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *recordQueryService) Recent(ctx context.Context, limit int) ([]StoredRecord, error) {
	return s.repo.FindRecent(ctx, limit)
}
