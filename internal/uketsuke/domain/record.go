package domain

import "strings"

// Record は Slack 会話から起こした受付表そのもの。抽出パイプラインが提案し、
// フォームでの編集を経て保存される集約ルート。
type Record struct {
	FormTitle            string     `json:"formTitle,omitempty" bson:"formTitle,omitempty"`
	JisshiDate           string     `json:"jisshiDate" bson:"jisshiDate,omitempty"`
	UketsukeSha          string     `json:"uketsukeSha" bson:"uketsukeSha,omitempty"`
	UketsukeDate         string     `json:"uketsukeDate" bson:"uketsukeDate,omitempty"`
	KaishaAddress        string     `json:"kaishaAddress" bson:"kaishaAddress,omitempty"`
	KaishaName           string     `json:"kaishaName" bson:"kaishaName,omitempty"`
	TantouSha            string     `json:"tantouSha" bson:"tantouSha,omitempty"`
	Keitai               string     `json:"keitai" bson:"keitai,omitempty"`
	GenbaName            string     `json:"genbaName" bson:"genbaName,omitempty"`
	KenName              string     `json:"kenName" bson:"kenName,omitempty"`
	GenbaAddress         string     `json:"genbaAddress" bson:"genbaAddress,omitempty"`
	RenrakusakiTel       string     `json:"renrakusakiTel" bson:"renrakusakiTel,omitempty"`
	SatsueiMaisuBasho    string     `json:"satsueiMaisuBasho" bson:"satsueiMaisuBasho,omitempty"`
	MachiawaseJikanBasho string     `json:"machiawaseJikanBasho" bson:"machiawaseJikanBasho,omitempty"`
	GenbaJimushoAri      bool       `json:"genbaJimushoAri" bson:"genbaJimushoAri,omitempty"`
	GenbaJimushoBasho    string     `json:"genbaJimushoBasho,omitempty" bson:"genbaJimushoBasho,omitempty"`
	Memo                 string     `json:"memo" bson:"memo,omitempty"`
	SagyoNaiyo           []WorkItem `json:"sagyoNaiyo" bson:"sagyoNaiyo"`
}

// WorkItem は作業内容の1行。現行世代（schemaVersion 2）は特記事項テキストのみを持つ。
type WorkItem struct {
	TokkiJiko string `json:"tokkiJiko" bson:"tokkiJiko"`
}

// LegacyWorkItem は旧世代（schemaVersion 1）の作業内容行。厚さ・コアサイズ等の
// サブ項目に加え、コア削孔条件と見積先が入れ子で残っている。抽出器は両世代を
// 突き合わせないため、読み込み時に MigrateWorkItem で現行世代へ寄せる。
type LegacyWorkItem struct {
	Atsusa      string           `json:"atsusa,omitempty" bson:"atsusa,omitempty"`
	CoaSize     string           `json:"coaSize,omitempty" bson:"coaSize,omitempty"`
	Honsu       string           `json:"honsu,omitempty" bson:"honsu,omitempty"`
	KaikouSunpo string           `json:"kaikouSunpo,omitempty" bson:"kaikouSunpo,omitempty"`
	TokkiJiko   string           `json:"tokkiJiko,omitempty" bson:"tokkiJiko,omitempty"`
	CoaSakuko   *CoaSakuko       `json:"coaSakuko,omitempty" bson:"coaSakuko,omitempty"`
	Mitsumori   *QuoteRecipient  `json:"mitsumorisaki,omitempty" bson:"mitsumorisaki,omitempty"`
}

// CoaSakuko は旧世代のコア削孔条件ブロック。
type CoaSakuko struct {
	DeckPlate bool `json:"deckPlate" bson:"deckPlate"`
	Dengen    bool `json:"dengen" bson:"dengen"`
	Hatsuri   bool `json:"hatsuri" bson:"hatsuri"`
}

// QuoteRecipient は旧世代の見積先ブロック。
type QuoteRecipient struct {
	Atesaki    string `json:"atesaki,omitempty" bson:"atesaki,omitempty"`
	KaishaName string `json:"kaishaName,omitempty" bson:"kaishaName,omitempty"`
	GenbaName  string `json:"genbaName,omitempty" bson:"genbaName,omitempty"`
	Address    string `json:"address,omitempty" bson:"address,omitempty"`
}

// スキーマ世代。保存ドキュメントの schemaVersion に対応する。
const (
	SchemaVersionLegacy  = 1
	SchemaVersionCurrent = 2
)

// Blank は全項目を空値で満たした受付表を返す。フォームは欠損項目があっても
// 必ず描画できなければならないため、作業内容には空行を1件だけ入れておく。
func Blank() Record {
	return Record{
		SagyoNaiyo: []WorkItem{{}},
	}
}

// FillDefaults は作業内容が空のままのレコードに空行を補う。
// 正規化後の SagyoNaiyo が空にならない不変条件をここで担保する。
func (r *Record) FillDefaults() {
	if len(r.SagyoNaiyo) == 0 {
		r.SagyoNaiyo = []WorkItem{{}}
	}
}

// MigrateWorkItem は旧世代の作業内容行を現行の特記事項のみの形へ移行する。
// サブ項目を半角スペースで連結し、空のものは飛ばす。入れ子ブロックは
// テキストに寄与しないため落とす。
func MigrateWorkItem(legacy LegacyWorkItem) WorkItem {
	parts := make([]string, 0, 5)
	for _, v := range []string{legacy.Atsusa, legacy.CoaSize, legacy.Honsu, legacy.KaikouSunpo, legacy.TokkiJiko} {
		if strings.TrimSpace(v) != "" {
			parts = append(parts, v)
		}
	}
	return WorkItem{TokkiJiko: strings.Join(parts, " ")}
}

// MigrateWorkItems は旧世代の行列を現行世代に一括移行する。
// 空の列は空行1件に落ち着く。
func MigrateWorkItems(legacy []LegacyWorkItem) []WorkItem {
	if len(legacy) == 0 {
		return []WorkItem{{}}
	}
	items := make([]WorkItem, 0, len(legacy))
	for _, l := range legacy {
		items = append(items, MigrateWorkItem(l))
	}
	return items
}
