package slackbot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"regexp"
	"sync"

	"github.com/slack-go/slack"
	"github.com/sngm3741/uketsuke-services/api/internal/extract"
	"github.com/sngm3741/uketsuke-services/api/internal/fileextract"
	"golang.org/x/sync/errgroup"
)

// mentionPattern は本文中の <@USERID> 形式のメンショントークンに一致する。
var mentionPattern = regexp.MustCompile(`<@([A-Z0-9]+)>`)

// slackAPI は *slack.Client のうちボットが使う呼び出しだけを切り出したもの。
// テストではフェイクに差し替える。
type slackAPI interface {
	GetConversationRepliesContext(ctx context.Context, params *slack.GetConversationRepliesParameters) ([]slack.Message, bool, string, error)
	GetUserInfoContext(ctx context.Context, user string) (*slack.User, error)
	GetFileContext(ctx context.Context, downloadURL string, writer io.Writer) error
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// nameResolver はユーザー ID から表示名への解決をメモ化する。
// 解決に失敗した ID は生のままキャッシュし、同一実行内では再試行しない。
type nameResolver struct {
	api    slackAPI
	logger *log.Logger

	mu    sync.Mutex
	cache map[string]string
}

func newNameResolver(api slackAPI, logger *log.Logger) *nameResolver {
	return &nameResolver{
		api:    api,
		logger: logger,
		cache:  make(map[string]string),
	}
}

// resolve はユーザー ID を表示名へ解決する。実名→表示名→生 ID の順に採る。
func (r *nameResolver) resolve(ctx context.Context, userID string) string {
	r.mu.Lock()
	if name, ok := r.cache[userID]; ok {
		r.mu.Unlock()
		return name
	}
	r.mu.Unlock()

	name := userID
	if info, err := r.api.GetUserInfoContext(ctx, userID); err == nil && info != nil {
		switch {
		case info.RealName != "":
			name = info.RealName
		case info.Name != "":
			name = info.Name
		}
	}

	r.mu.Lock()
	r.cache[userID] = name
	r.mu.Unlock()
	return name
}

// resolveMentions は本文中のメンショントークンを表示名へ置き換える。
func (r *nameResolver) resolveMentions(ctx context.Context, text string) string {
	return mentionPattern.ReplaceAllStringFunc(text, func(token string) string {
		userID := mentionPattern.FindStringSubmatch(token)[1]
		return r.resolve(ctx, userID)
	})
}

// assembler はスレッドの生メッセージ列を、抽出に渡せる会話と添付テキストへ
// 組み立てる。
type assembler struct {
	api    slackAPI
	logger *log.Logger
}

// assemble はメッセージごとの解決（名前・メンション・添付）を並行して行い、
// 入力と同じ順序で結果を返す。添付1件の失敗はログに残して飛ばし、
// バッチ全体を止めない。
func (a *assembler) assemble(ctx context.Context, messages []slack.Message) ([]extract.Message, []string) {
	resolver := newNameResolver(a.api, a.logger)

	resolved := make([]extract.Message, len(messages))
	perMessageFiles := make([][]string, len(messages))

	var group errgroup.Group
	for i, msg := range messages {
		i, msg := i, msg
		group.Go(func() error {
			userName := "Unknown"
			if msg.User != "" {
				userName = resolver.resolve(ctx, msg.User)
			}

			resolved[i] = extract.Message{
				User:      userName,
				Text:      resolver.resolveMentions(ctx, msg.Text),
				Timestamp: msg.Timestamp,
			}
			perMessageFiles[i] = a.extractAttachments(ctx, msg.Files)
			return nil
		})
	}
	// ワーカーはエラーを返さない。Wait は全完了の同期のためだけに呼ぶ。
	_ = group.Wait()

	fileTexts := make([]string, 0)
	for _, texts := range perMessageFiles {
		fileTexts = append(fileTexts, texts...)
	}
	return resolved, fileTexts
}

// extractAttachments は添付ファイルをダウンロードしてテキスト化する。
func (a *assembler) extractAttachments(ctx context.Context, files []slack.File) []string {
	var texts []string
	for _, file := range files {
		downloadURL := file.URLPrivateDownload
		if downloadURL == "" {
			downloadURL = file.URLPrivate
		}
		if downloadURL == "" || file.Name == "" {
			continue
		}

		a.logger.Printf("ファイルダウンロード中: %s (%s)", file.Name, file.Mimetype)
		var buf bytes.Buffer
		if err := a.api.GetFileContext(ctx, downloadURL, &buf); err != nil {
			a.logger.Printf("ファイル「%s」のダウンロードに失敗: %v", file.Name, err)
			continue
		}

		text, ok := fileextract.Extract(buf.Bytes(), file.Name, file.Mimetype)
		if !ok {
			a.logger.Printf("ファイル「%s」(%s) からテキストを取得できませんでした", file.Name, file.Mimetype)
			continue
		}
		texts = append(texts, fmt.Sprintf("【添付ファイル: %s】\n%s", file.Name, text))
	}
	return texts
}
