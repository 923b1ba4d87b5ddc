package form

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sngm3741/uketsuke-services/api/internal/uketsuke/application"
	"github.com/sngm3741/uketsuke-services/api/internal/uketsuke/domain"
)

type fakeQueries struct {
	stored *application.StoredRecord
	err    error
}

func (f *fakeQueries) Detail(_ context.Context, _ string) (*application.StoredRecord, error) {
	return f.stored, f.err
}

func (f *fakeQueries) Recent(_ context.Context, _ int) ([]application.StoredRecord, error) {
	return nil, nil
}

func newTestHandler(t *testing.T, queries application.RecordQueryService) *Handler {
	t.Helper()
	h, err := NewHandler(Config{
		Logger:          log.New(io.Discard, "", 0),
		RecordQueries:   queries,
		ConfirmEndpoint: "http://localhost:3001/api/confirm",
	})
	require.NoError(t, err)
	return h
}

func serve(h *Handler, req *http.Request) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	h.Register(router)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHomeRendersBlankForm(t *testing.T) {
	h := newTestHandler(t, &fakeQueries{})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "受 付 表")
	assert.Contains(t, body, `id="jisshiDate"`)
	assert.Contains(t, body, `class="tokkiJiko"`)
	assert.NotContains(t, body, "確認完了を通知")
}

func TestHomeRendersLegacyDataParam(t *testing.T) {
	h := newTestHandler(t, &fakeQueries{})

	data := url.QueryEscape(`{"kaishaName":"テスト建設","sagyoNaiyo":[{"tokkiJiko":"①X線 6枚"}]}`)
	slack := url.QueryEscape(`{"channelId":"C123","threadTs":"1700000000.000100"}`)
	req := httptest.NewRequest(http.MethodGet, "/?data="+data+"&slack="+slack, nil)

	rec := serve(h, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "テスト建設")
	assert.Contains(t, body, "①X線 6枚")
	assert.Contains(t, body, "確認完了を通知")
}

func TestHomeIgnoresMalformedDataParam(t *testing.T) {
	h := newTestHandler(t, &fakeQueries{})

	req := httptest.NewRequest(http.MethodGet, "/?data="+url.QueryEscape("{oops"), nil)
	rec := serve(h, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "受 付 表")
}

func TestRecordPageRendersStoredRecord(t *testing.T) {
	record := domain.Blank()
	record.GenbaName = "大阪倉庫"
	record.SagyoNaiyo = []domain.WorkItem{{TokkiJiko: "②コア 1F床 φ100 3本"}}
	h := newTestHandler(t, &fakeQueries{stored: &application.StoredRecord{
		ID:     "aB3dE5fG7hJ9",
		Record: record,
		Tag:    application.ThreadTag{ChannelID: "C123", ThreadTS: "1700000000.000100"},
	}})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/uketsuke/aB3dE5fG7hJ9", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "大阪倉庫")
	assert.Contains(t, body, "②コア 1F床 φ100 3本")
	assert.Contains(t, body, "確認完了を通知")
}

func TestRecordPageNotFound(t *testing.T) {
	h := newTestHandler(t, &fakeQueries{})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/uketsuke/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "受付表が見つかりません")
	assert.Contains(t, body, "トップへ戻る")
}

func TestRecordPageLookupFailure(t *testing.T) {
	h := newTestHandler(t, &fakeQueries{err: errors.New("接続エラー")})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/uketsuke/aB3dE5fG7hJ9", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
