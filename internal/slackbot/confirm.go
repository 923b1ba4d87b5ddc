package slackbot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/slack-go/slack"
)

var jstLocation = time.FixedZone("JST", 9*60*60)

// confirmRequest はフォーム側から届く確認通知の依頼ボディ。
type confirmRequest struct {
	ChannelID string `json:"channelId"`
	ThreadTS  string `json:"threadTs"`
}

// ConfirmHandler は確認通知用の HTTP ハンドラを返す。
// POST /api/confirm だけを受け、それ以外のパス・メソッドは 404 を返す。
func (b *Bot) ConfirmHandler() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(confirmCORS)
	router.Post("/api/confirm", b.confirmHandler())
	router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	// パス違いもメソッド違いも等しく 404 にする
	router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	return router
}

// confirmCORS はブラウザのフォームから直接叩かれるためのプリフライト対応。
func confirmCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Bot) confirmHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req confirmRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			b.logger.Printf("確認通知リクエストのパースに失敗: %v", err)
			writeConfirmJSON(w, http.StatusInternalServerError, map[string]any{
				"success": false,
				"error":   "Failed to send notification",
			})
			return
		}

		if err := b.sendConfirmNotification(r.Context(), req.ChannelID, req.ThreadTS); err != nil {
			b.logger.Printf("確認通知の送信に失敗: %v", err)
			writeConfirmJSON(w, http.StatusInternalServerError, map[string]any{
				"success": false,
				"error":   "Failed to send notification",
			})
			return
		}

		writeConfirmJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

// sendConfirmNotification は発生元スレッドへ「確認完了」の通知を投稿する。
func (b *Bot) sendConfirmNotification(ctx context.Context, channelID, threadTS string) error {
	dateStr := time.Now().In(jstLocation).Format("2006/01/02 15:04")
	text := fmt.Sprintf("*✅ 受付表 確認完了*\n営業担当者が受付表の最終確認及び保存を行いました。\n📅 確認日時: %s", dateStr)

	attachment := slack.Attachment{
		Color: "#2eb67d",
		Blocks: slack.Blocks{
			BlockSet: []slack.Block{
				slack.NewSectionBlock(
					slack.NewTextBlockObject(slack.MarkdownType, text, false, false),
					nil, nil,
				),
			},
		},
	}

	_, _, err := b.api.PostMessageContext(ctx, channelID,
		slack.MsgOptionTS(threadTS),
		slack.MsgOptionText("✅ 受付表 確認完了", false),
		slack.MsgOptionAttachments(attachment),
	)
	if err != nil {
		return err
	}

	b.logger.Printf("確認通知を送信しました")
	return nil
}

func writeConfirmJSON(w http.ResponseWriter, status int, payload map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
