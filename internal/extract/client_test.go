package extract

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeCompleter struct {
	text string
	err  error
}

func (f *fakeCompleter) Complete(_ context.Context, _, _ string) (string, error) {
	return f.text, f.err
}

func newTestClient(fake *fakeCompleter) *Client {
	return &Client{
		logger:    log.New(io.Discard, "", 0),
		completer: fake,
		timeout:   time.Second,
	}
}

func TestExtractParsesPlainJSON(t *testing.T) {
	client := newTestClient(&fakeCompleter{text: `{"kaishaName":"A社"}`})
	data := client.Extract(context.Background(), []Message{{User: "A", Text: "よろしく"}}, nil)
	assert.Equal(t, "A社", data["kaishaName"])
}

func TestExtractStripsCodeFence(t *testing.T) {
	client := newTestClient(&fakeCompleter{text: "```json\n{\"kaishaName\":\"A社\"}\n```"})
	data := client.Extract(context.Background(), nil, nil)
	assert.Equal(t, map[string]any{"kaishaName": "A社"}, data)
}

func TestExtractFailsClosedOnError(t *testing.T) {
	client := newTestClient(&fakeCompleter{err: errors.New("api down")})
	data := client.Extract(context.Background(), nil, nil)
	assert.Equal(t, map[string]any{}, data)
}

func TestExtractFailsClosedOnInvalidJSON(t *testing.T) {
	client := newTestClient(&fakeCompleter{text: "すみません、抽出できませんでした。"})
	data := client.Extract(context.Background(), nil, nil)
	assert.Equal(t, map[string]any{}, data)
}

func TestBuildPromptIncludesConversationAndFiles(t *testing.T) {
	prompt := buildPrompt(
		[]Message{
			{User: "田中", Text: "①X線 11/14,17 ②コア 11/18,19"},
			{User: "鈴木", Text: "了解です"},
		},
		[]string{"【添付ファイル: genba.pdf】\n現場平面図"},
	)

	assert.True(t, strings.Contains(prompt, "[田中]: ①X線 11/14,17 ②コア 11/18,19"))
	assert.True(t, strings.Contains(prompt, "[鈴木]: 了解です"))
	assert.True(t, strings.Contains(prompt, "## 添付ファイルの内容"))
	assert.True(t, strings.Contains(prompt, "現場平面図"))
	// 会話本文は指示ヘッダの後ろに来る
	assert.Less(t, strings.Index(prompt, "## 抽出する項目"), strings.Index(prompt, "[田中]"))
}

func TestBuildPromptWithoutFilesOmitsSection(t *testing.T) {
	prompt := buildPrompt([]Message{{User: "A", Text: "hi"}}, nil)
	assert.False(t, strings.Contains(prompt, "添付ファイルの内容"))
}

func TestParseModelOutputFenceVariants(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"フェンスなし", `{"memo":"x"}`},
		{"前後に空白", "  \n```json\n{\"memo\":\"x\"}\n```\n  "},
		{"フェンス前後に説明文", "抽出結果です。\n```json\n{\"memo\":\"x\"}\n```\n以上です。"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := parseModelOutput(tt.text)
			assert.NoError(t, err)
			assert.Equal(t, "x", data["memo"])
		})
	}
}
