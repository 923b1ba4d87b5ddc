package extract

import (
	"regexp"
	"strings"
)

// 作業区分を示す丸数字。①（X線撮影系）と②（コア削孔系）は別項目として
// 扱わなければならず、1行に混ざったモデル出力はここで分離する。
const (
	markerPrimary   = "①"
	markerSecondary = "②"
)

// combinedWorkItemPattern は「①〜 ②〜」と2区分が1行に併記された特記事項に
// 一致する。①側のテキストに②が現れないことを要求する。
var combinedWorkItemPattern = regexp.MustCompile(`^\s*(①[^②]+?)\s*(②.+)$`)

// PostProcess はモデルが返した JSON オブジェクトへ決定的な補正を順に適用する。
// どの補正も失敗（panic）してはならず、想定外の形の値はそのまま素通しする。
//  1. 作業内容の各行を特記事項のみの形へ正規化する
//  2. 2区分が併記された特記事項を2行へ分割する
//  3. 実施日に両区分が改行なしで混在していれば2行へ分割する
//  4. 廃止済み項目 mitsumorisaki を無条件に取り除く
func PostProcess(data map[string]any) map[string]any {
	if data == nil {
		data = map[string]any{}
	}

	data["sagyoNaiyo"] = splitCombinedWorkItems(normalizeWorkItems(data["sagyoNaiyo"]))

	if jisshiDate, ok := data["jisshiDate"].(string); ok {
		data["jisshiDate"] = splitCombinedDate(jisshiDate)
	}

	delete(data, "mitsumorisaki")

	return data
}

// normalizeWorkItems は文字列・旧世代サブ項目付き・正規化済みのいずれの形の
// 作業内容も {tokkiJiko} のみの形へ揃える。空や不正な入力は空行1件に落とす。
func normalizeWorkItems(raw any) []map[string]any {
	entries, ok := raw.([]any)
	if !ok || len(entries) == 0 {
		return []map[string]any{{"tokkiJiko": ""}}
	}

	items := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		switch e := entry.(type) {
		case string:
			items = append(items, map[string]any{"tokkiJiko": e})
		case map[string]any:
			if note, ok := e["tokkiJiko"].(string); ok && strings.TrimSpace(note) != "" {
				items = append(items, map[string]any{"tokkiJiko": note})
				continue
			}
			items = append(items, map[string]any{"tokkiJiko": joinLegacyFields(e)})
		default:
			items = append(items, map[string]any{"tokkiJiko": ""})
		}
	}
	if len(items) == 0 {
		return []map[string]any{{"tokkiJiko": ""}}
	}
	return items
}

// joinLegacyFields は旧世代サブ項目を半角スペース区切りで連結する。
// 欠損項目は連結に寄与せず、全欠損なら空文字になる。
func joinLegacyFields(entry map[string]any) string {
	parts := make([]string, 0, 5)
	for _, key := range []string{"atsusa", "coaSize", "honsu", "kaikouSunpo", "tokkiJiko"} {
		if v, ok := entry[key].(string); ok && strings.TrimSpace(v) != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

// splitCombinedWorkItems は「①A ②B」とまとまってしまった行を区分ごとの
// 2行へ置き換える。順序は元の並びを保つ。
func splitCombinedWorkItems(items []map[string]any) []map[string]any {
	result := make([]map[string]any, 0, len(items))
	for _, item := range items {
		note, _ := item["tokkiJiko"].(string)
		if m := combinedWorkItemPattern.FindStringSubmatch(note); m != nil {
			result = append(result,
				map[string]any{"tokkiJiko": strings.TrimSpace(m[1])},
				map[string]any{"tokkiJiko": strings.TrimSpace(m[2])},
			)
			continue
		}
		result = append(result, item)
	}
	return result
}

// splitCombinedDate は実施日に①と②が改行なしで混在している場合に、
// ②の最初の出現位置で区切って2行にする。
func splitCombinedDate(date string) string {
	if !strings.Contains(date, markerPrimary) || !strings.Contains(date, markerSecondary) {
		return date
	}
	if strings.Contains(date, "\n") {
		return date
	}
	idx := strings.Index(date, markerSecondary)
	first := strings.TrimSpace(date[:idx])
	second := strings.TrimSpace(date[idx:])
	return first + "\n" + second
}
