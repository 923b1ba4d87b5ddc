package slackbot

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/sngm3741/uketsuke-services/api/internal/extract"
	"github.com/sngm3741/uketsuke-services/api/internal/uketsuke/application"
	"github.com/sngm3741/uketsuke-services/api/internal/uketsuke/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExtractor struct {
	result map[string]any
}

func (f *fakeExtractor) Extract(context.Context, []extract.Message, []string) map[string]any {
	if f.result == nil {
		return map[string]any{}
	}
	return f.result
}

type fakeRecords struct {
	created *domain.Record
	tag     application.ThreadTag
	id      string
	err     error
}

func (f *fakeRecords) Create(_ context.Context, record domain.Record, tag application.ThreadTag) (string, error) {
	f.created = &record
	f.tag = tag
	return f.id, f.err
}

func (f *fakeRecords) Update(context.Context, string, domain.Record) (bool, error) {
	return false, errors.New("not implemented")
}

func mentionEvent() *slackevents.AppMentionEvent {
	return &slackevents.AppMentionEvent{
		Channel:   "C123",
		TimeStamp: "1700000000.000100",
		Text:      "<@UBOT> 受付表お願いします",
	}
}

func TestHandleMentionPersistsAndReplies(t *testing.T) {
	api := &fakeSlackAPI{
		users:   map[string]string{"U1AAAA": "田中"},
		replies: []slack.Message{threadMessage("U1AAAA", "①X線 11/14,17 ②コア 11/18,19")},
	}
	records := &fakeRecords{id: "aB3dE5fG7hJ9"}
	bot := &Bot{
		api:        api,
		logger:     testLogger(),
		extractor:  &fakeExtractor{result: map[string]any{
			"jisshiDate": "①X線: 2025年11月14日、17日\n②コア: 2025年11月18日、19日",
			"sagyoNaiyo": []any{
				map[string]any{"tokkiJiko": "①X線撮影"},
				map[string]any{"tokkiJiko": "②コア削孔"},
			},
		}},
		records:    records,
		appBaseURL: "https://uketsuke.example.com",
	}

	bot.handleMention(context.Background(), mentionEvent())

	// 途中経過と完了の2通を同じチャンネルへ返す
	assert.Equal(t, []string{"C123", "C123"}, api.posted)

	require.NotNil(t, records.created)
	assert.Equal(t, "C123", records.tag.ChannelID)
	assert.Equal(t, "1700000000.000100", records.tag.ThreadTS)
	// 既に区分ごとに分かれている抽出結果は後処理を素通りする
	assert.Len(t, records.created.SagyoNaiyo, 2)
	assert.Equal(t, "①X線撮影", records.created.SagyoNaiyo[0].TokkiJiko)
	assert.Equal(t, "②コア削孔", records.created.SagyoNaiyo[1].TokkiJiko)
	assert.Equal(t, "①X線: 2025年11月14日、17日\n②コア: 2025年11月18日、19日", records.created.JisshiDate)
}

func TestHandleMentionEmptyExtractionStillReplies(t *testing.T) {
	api := &fakeSlackAPI{replies: []slack.Message{threadMessage("U1AAAA", "情報なし")}}
	records := &fakeRecords{id: "empty0000001"}
	bot := &Bot{
		api:        api,
		logger:     testLogger(),
		extractor:  &fakeExtractor{},
		records:    records,
		appBaseURL: "https://uketsuke.example.com",
	}

	bot.handleMention(context.Background(), mentionEvent())

	assert.Len(t, api.posted, 2)
	require.NotNil(t, records.created)
	assert.Len(t, records.created.SagyoNaiyo, 1)
}

func TestHandleMentionPersistFailureReportsError(t *testing.T) {
	api := &fakeSlackAPI{replies: []slack.Message{threadMessage("U1AAAA", "保存失敗ケース")}}
	bot := &Bot{
		api:        api,
		logger:     testLogger(),
		extractor:  &fakeExtractor{},
		records:    &fakeRecords{err: errors.New("mongo down")},
		appBaseURL: "https://uketsuke.example.com",
	}

	// panic せずエラー通知の返信まで到達する
	bot.handleMention(context.Background(), mentionEvent())
	assert.Len(t, api.posted, 2)
}

func TestBuildResultLinkPersisted(t *testing.T) {
	bot := &Bot{
		logger:     testLogger(),
		records:    &fakeRecords{id: "aB3dE5fG7hJ9"},
		appBaseURL: "https://uketsuke.example.com",
	}
	link, err := bot.buildResultLink(context.Background(), map[string]any{}, "C123", "1700000000.000100")
	require.NoError(t, err)
	assert.Equal(t, "https://uketsuke.example.com/uketsuke/aB3dE5fG7hJ9", link)
}

func TestBuildResultLinkLegacyEncodesRecord(t *testing.T) {
	bot := &Bot{
		logger:      testLogger(),
		appBaseURL:  "https://uketsuke.example.com",
		legacyLinks: true,
	}
	link, err := bot.buildResultLink(context.Background(), map[string]any{"kaishaName": "A社"}, "C123", "1700000000.000100")
	require.NoError(t, err)

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	query := parsed.Query()
	assert.Contains(t, query.Get("data"), "A社")
	assert.Contains(t, query.Get("slack"), "C123")
	assert.True(t, strings.HasPrefix(link, "https://uketsuke.example.com?data="))
}
