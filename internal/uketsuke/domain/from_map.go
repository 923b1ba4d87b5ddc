package domain

import "strings"

// FromMap はモデル出力（後処理済みの JSON オブジェクト）を Record へ寛容に
// 詰め替える。型が合わない値は無視して空値のまま通すことで、モデルの揺れが
// ここで障害にならないようにする。
func FromMap(src map[string]any) Record {
	record := Blank()
	if len(src) == 0 {
		return record
	}

	str := func(key string) string {
		if v, ok := src[key].(string); ok {
			return v
		}
		return ""
	}

	record.FormTitle = str("formTitle")
	record.JisshiDate = str("jisshiDate")
	record.UketsukeSha = str("uketsukeSha")
	record.UketsukeDate = str("uketsukeDate")
	record.KaishaAddress = str("kaishaAddress")
	record.KaishaName = str("kaishaName")
	record.TantouSha = str("tantouSha")
	record.Keitai = str("keitai")
	record.GenbaName = str("genbaName")
	record.KenName = str("kenName")
	record.GenbaAddress = str("genbaAddress")
	record.RenrakusakiTel = str("renrakusakiTel")
	record.SatsueiMaisuBasho = str("satsueiMaisuBasho")
	record.MachiawaseJikanBasho = str("machiawaseJikanBasho")
	record.GenbaJimushoBasho = str("genbaJimushoBasho")
	record.Memo = str("memo")

	switch v := src["genbaJimushoAri"].(type) {
	case bool:
		record.GenbaJimushoAri = v
	case string:
		record.GenbaJimushoAri = strings.EqualFold(strings.TrimSpace(v), "true") || v == "あり" || v == "有"
	}

	if raw, ok := src["sagyoNaiyo"].([]any); ok {
		items := make([]WorkItem, 0, len(raw))
		for _, entry := range raw {
			switch e := entry.(type) {
			case string:
				items = append(items, WorkItem{TokkiJiko: e})
			case map[string]any:
				if note, ok := e["tokkiJiko"].(string); ok {
					items = append(items, WorkItem{TokkiJiko: note})
				} else {
					items = append(items, WorkItem{})
				}
			}
		}
		if len(items) > 0 {
			record.SagyoNaiyo = items
		}
	}

	record.FillDefaults()
	return record
}
