package extract

import (
	"fmt"
	"strings"
)

// systemPrompt はモデルへの固定の役割指示。
const systemPrompt = `あなたは建設・測量会社の受付表作成アシスタントです。会話やファイルから受付表の項目を正確に抽出し、指定された JSON のみを出力してください。`

// extractionPrompt は抽出項目の定義と整形規則をまとめた固定の指示ヘッダ。
// この後ろに会話本文と添付ファイルのテキストを連結してモデルへ渡す。
const extractionPrompt = `Slackでの会話から、以下の受付表の項目を抽出してください。

## 抽出する項目
- formTitle: 受付表タイトル（例: レーダー探査受付表）
- jisshiDate: 実施日（例: 令和8年2月4日（水））
- uketsukeSha: 受付者名
- uketsukeDate: 受付日
- kaishaAddress: 会社住所（〒含む）
- kaishaName: 会社名
- tantouSha: 担当者名
- keitai: 携帯電話番号
- genbaName: 現場名
- kenName: 件名
- genbaAddress: 現場住所
- renrakusakiTel: 連絡先電話番号
- satsueiMaisuBasho: 撮影枚数・箇所
- machiawaseJikanBasho: 待合時間・場所
- genbaJimushoAri: 現場事務所の有無（true/false）
- genbaJimushoBasho: 現場事務所の場所
- memo: MEMO（特記事項）
- sagyoNaiyo: 作業内容の配列。各要素は tokkiJiko（特記事項テキスト1行）のみ

## 整形ルール
- ①（X線撮影など）と②（コア削孔など）の2つの作業区分が両方ある場合、
  jisshiDate は「①〜」の行と「②〜」の行に改行で分け、sagyoNaiyo も
  区分ごとに別の要素にしてください。1つの行にまとめてはいけません。
- 数量は単位を付けて記載してください（例: 3本、150mm、φ100）。
- 「11/14,17」のような省略表記は同じ月の複数日として解釈してください
  （例: 11月14日、17日）。

## 出力形式
JSON形式で出力してください。抽出できなかった項目は空文字列""にしてください。

## 会話内容
`

// Message は抽出対象となる Slack 会話の1メッセージ。
type Message struct {
	User      string
	Text      string
	Timestamp string
}

// buildPrompt は指示ヘッダ・会話本文・添付ファイルテキストを1つのプロンプトへ
// 連結する。
func buildPrompt(messages []Message, fileTexts []string) string {
	var builder strings.Builder
	builder.WriteString(extractionPrompt)
	for _, msg := range messages {
		builder.WriteString(fmt.Sprintf("[%s]: %s\n", msg.User, msg.Text))
	}
	if len(fileTexts) > 0 {
		builder.WriteString("\n## 添付ファイルの内容\n")
		for _, text := range fileTexts {
			builder.WriteString(text)
			builder.WriteString("\n")
		}
	}
	return builder.String()
}
