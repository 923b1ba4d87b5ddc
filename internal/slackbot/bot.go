// Package slackbot は受付表ボット本体。Socket Mode でメンションを受け、
// スレッドの会話から受付表を起こして保存し、編集用リンクをスレッドへ返す。
package slackbot

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
	"github.com/sngm3741/uketsuke-services/api/internal/extract"
	"github.com/sngm3741/uketsuke-services/api/internal/uketsuke/application"
	"github.com/sngm3741/uketsuke-services/api/internal/uketsuke/domain"
)

// 1スレッドから取得する返信の上限。
const historyLimit = 100

// extractor は抽出クライアントを差し替え可能にするためのポート。
type extractor interface {
	Extract(ctx context.Context, messages []extract.Message, fileTexts []string) map[string]any
}

// Bot は Slack の受付表ボット。メンションイベントごとに独立した
// goroutine で処理し、ハンドラ内の失敗はログに残して握りつぶす。
type Bot struct {
	api        slackAPI
	socketMode *socketmode.Client
	logger     *log.Logger
	extractor  extractor
	records    application.RecordCommandService
	appBaseURL string
	// true のときは保存せず、レコードを URL パラメータへ埋め込んだ
	// 旧方式のリンクを返す
	legacyLinks bool
}

// Config はボットの依存を定義する。
type Config struct {
	BotToken    string
	AppToken    string
	Logger      *log.Logger
	Extractor   extractor
	Records     application.RecordCommandService
	AppBaseURL  string
	LegacyLinks bool
	Debug       bool
}

// New はトークンを検証して Socket Mode クライアントを組み立てる。
func New(cfg Config) (*Bot, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("SLACK_BOT_TOKEN が設定されていません")
	}
	if cfg.AppToken == "" {
		return nil, fmt.Errorf("SLACK_APP_TOKEN が設定されていません")
	}
	if !strings.HasPrefix(cfg.AppToken, "xapp-") {
		return nil, fmt.Errorf("SLACK_APP_TOKEN は xapp- で始まる必要があります")
	}
	if !cfg.LegacyLinks && cfg.Records == nil {
		return nil, fmt.Errorf("保存リンク方式には Records サービスが必要です")
	}

	client := slack.New(
		cfg.BotToken,
		slack.OptionDebug(cfg.Debug),
		slack.OptionAppLevelToken(cfg.AppToken),
	)

	return &Bot{
		api:         client,
		socketMode:  socketmode.New(client, socketmode.OptionDebug(cfg.Debug)),
		logger:      cfg.Logger,
		extractor:   cfg.Extractor,
		records:     cfg.Records,
		appBaseURL:  strings.TrimRight(strings.TrimSpace(cfg.AppBaseURL), "/"),
		legacyLinks: cfg.LegacyLinks,
	}, nil
}

// Run はイベントループを開始する。ctx のキャンセルまでブロックする。
func (b *Bot) Run(ctx context.Context) error {
	go func() {
		for evt := range b.socketMode.Events {
			b.handleEvent(ctx, evt)
		}
	}()
	return b.socketMode.RunContext(ctx)
}

func (b *Bot) handleEvent(ctx context.Context, evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		b.logger.Printf("Slack: Socket Mode へ接続中...")
	case socketmode.EventTypeConnected:
		b.logger.Printf("Slack: Socket Mode へ接続しました")
	case socketmode.EventTypeConnectionError:
		b.logger.Printf("Slack: 接続エラー: %v", evt.Data)
	case socketmode.EventTypeEventsAPI:
		eventsAPIEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok {
			return
		}
		b.socketMode.Ack(*evt.Request)

		if mention, ok := eventsAPIEvent.InnerEvent.Data.(*slackevents.AppMentionEvent); ok {
			// メンションごとに独立して処理する。相互の待ち合わせはない。
			go b.handleMention(ctx, mention)
		}
	}
}

// handleMention はメンション1件を受付表に変換するトップレベルハンドラ。
// ここで捕まえた失敗はログに残すだけで、ボットを落とさない。
func (b *Bot) handleMention(ctx context.Context, mention *slackevents.AppMentionEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Printf("メンション処理で回復不能なエラー: %v", r)
		}
	}()

	b.logger.Printf("メンションを受信: %s", mention.Text)

	threadTS := mention.ThreadTimeStamp
	if threadTS == "" {
		threadTS = mention.TimeStamp
	}
	channelID := mention.Channel

	messages, _, _, err := b.api.GetConversationRepliesContext(ctx, &slack.GetConversationRepliesParameters{
		ChannelID: channelID,
		Timestamp: threadTS,
		Limit:     historyLimit,
	})
	if err != nil {
		b.logger.Printf("スレッド履歴の取得に失敗: %v", err)
		return
	}
	b.logger.Printf("%d件のメッセージを取得", len(messages))

	asm := &assembler{api: b.api, logger: b.logger}
	conversation, fileTexts := asm.assemble(ctx, messages)

	msgInfo := fmt.Sprintf("%d件のメッセージを解析", len(messages))
	if len(fileTexts) > 0 {
		msgInfo = fmt.Sprintf("%d件のメッセージ + %d件のファイルを解析", len(messages), len(fileTexts))
	}
	b.reply(ctx, channelID, threadTS, fmt.Sprintf("受付表を作成中... (%s)", msgInfo))

	extracted := extract.PostProcess(b.extractor.Extract(ctx, conversation, fileTexts))

	link, err := b.buildResultLink(ctx, extracted, channelID, threadTS)
	if err != nil {
		b.logger.Printf("受付表リンクの作成に失敗: %v", err)
		b.reply(ctx, channelID, threadTS, "受付表の保存に失敗しました。もう一度お試しください。")
		return
	}

	b.reply(ctx, channelID, threadTS, fmt.Sprintf("受付表を作成しました!\n\n確認・編集はこちら:\n%s", link))
}

// buildResultLink は抽出結果への導線を作る。通常は保存して ID リンク、
// 旧方式ではレコードを丸ごと URL パラメータへ埋め込む。
func (b *Bot) buildResultLink(ctx context.Context, extracted map[string]any, channelID, threadTS string) (string, error) {
	if b.legacyLinks {
		dataJSON, err := json.Marshal(extracted)
		if err != nil {
			return "", err
		}
		slackJSON, err := json.Marshal(map[string]string{
			"channelId": channelID,
			"threadTs":  threadTS,
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s?data=%s&slack=%s",
			b.appBaseURL,
			url.QueryEscape(string(dataJSON)),
			url.QueryEscape(string(slackJSON)),
		), nil
	}

	id, err := b.records.Create(ctx, domain.FromMap(extracted), application.ThreadTag{
		ChannelID: channelID,
		ThreadTS:  threadTS,
	})
	if err != nil {
		return "", err
	}
	b.logger.Printf("受付表を保存しました。ID: %s", id)
	return fmt.Sprintf("%s/uketsuke/%s", b.appBaseURL, id), nil
}

func (b *Bot) reply(ctx context.Context, channelID, threadTS, text string) {
	_, _, err := b.api.PostMessageContext(ctx, channelID,
		slack.MsgOptionTS(threadTS),
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		b.logger.Printf("スレッドへの返信に失敗: %v", err)
	}
}
