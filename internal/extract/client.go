package extract

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 2048
	defaultTimeout   = 60 * time.Second
)

// codeFencePattern は「```json 〜 ```」で囲まれたモデル出力から中身だけを
// 取り出すためのパターン。
var codeFencePattern = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// completer はモデル呼び出しを抽象化する。テストではフェイクに差し替える。
type completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Client は会話テキストをホスト型言語モデルへ渡し、受付表の部分レコードを
// 受け取る抽出クライアント。パース失敗やネットワーク障害では空のレコードへ
// フェイルクローズし、呼び出し元へエラーを返さない。
type Client struct {
	logger    *log.Logger
	completer completer
	timeout   time.Duration
}

// Config は Client の依存を定義する。
type Config struct {
	Logger    *log.Logger
	APIKey    string
	Model     string
	MaxTokens int64
	Timeout   time.Duration
}

// NewClient は Anthropic API を呼び出す抽出クライアントを構築する。
func NewClient(cfg Config) *Client {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		logger: cfg.Logger,
		completer: &anthropicCompleter{
			client:    anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
			model:     model,
			maxTokens: maxTokens,
		},
		timeout: timeout,
	}
}

// Extract は会話と添付テキストからプロンプトを組み立ててモデルを呼び出し、
// 出力を受付表の部分レコードとしてパースする。失敗時は空のレコードを返す。
func (c *Client) Extract(ctx context.Context, messages []Message, fileTexts []string) map[string]any {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	text, err := c.completer.Complete(ctx, systemPrompt, buildPrompt(messages, fileTexts))
	if err != nil {
		if c.logger != nil {
			c.logger.Printf("モデル呼び出しに失敗: %v", err)
		}
		return map[string]any{}
	}

	data, err := parseModelOutput(text)
	if err != nil {
		if c.logger != nil {
			c.logger.Printf("モデル出力のパースに失敗: %v", err)
		}
		return map[string]any{}
	}
	return data
}

// parseModelOutput はコードフェンスを剥がした上で JSON オブジェクトとして
// パースする。
func parseModelOutput(text string) (map[string]any, error) {
	if m := codeFencePattern.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &data); err != nil {
		return nil, err
	}
	return data, nil
}

// anthropicCompleter は Anthropic Messages API を使った completer 実装。
type anthropicCompleter struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

func (a *anthropicCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", err
	}
	if len(message.Content) == 0 {
		return "", errors.New("モデル応答にコンテンツがありません")
	}
	block := message.Content[0]
	if block.Type != "text" {
		return "", errors.New("モデル応答がテキストではありません")
	}
	return block.Text, nil
}
