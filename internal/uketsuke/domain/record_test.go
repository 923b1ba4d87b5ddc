package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlankAlwaysHasOneWorkItem(t *testing.T) {
	record := Blank()
	assert.Len(t, record.SagyoNaiyo, 1)
	assert.Equal(t, WorkItem{}, record.SagyoNaiyo[0])
}

func TestFillDefaults(t *testing.T) {
	record := Record{KaishaName: "A社"}
	record.FillDefaults()
	assert.Len(t, record.SagyoNaiyo, 1)

	record = Record{SagyoNaiyo: []WorkItem{{TokkiJiko: "①X線撮影"}}}
	record.FillDefaults()
	assert.Len(t, record.SagyoNaiyo, 1)
	assert.Equal(t, "①X線撮影", record.SagyoNaiyo[0].TokkiJiko)
}

func TestMigrateWorkItem(t *testing.T) {
	tests := []struct {
		name   string
		legacy LegacyWorkItem
		want   string
	}{
		{
			name:   "全サブ項目あり",
			legacy: LegacyWorkItem{Atsusa: "150mm", CoaSize: "φ100", Honsu: "3本", KaikouSunpo: "200角", TokkiJiko: "デッキ有"},
			want:   "150mm φ100 3本 200角 デッキ有",
		},
		{
			name:   "欠損は連結に寄与しない",
			legacy: LegacyWorkItem{Atsusa: "150mm", Honsu: "3本"},
			want:   "150mm 3本",
		},
		{
			name:   "全欠損は空文字",
			legacy: LegacyWorkItem{},
			want:   "",
		},
		{
			name:   "入れ子ブロックは落とす",
			legacy: LegacyWorkItem{TokkiJiko: "コア削孔", CoaSakuko: &CoaSakuko{DeckPlate: true}},
			want:   "コア削孔",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MigrateWorkItem(tt.legacy).TokkiJiko)
		})
	}
}

func TestMigrateWorkItemsEmptyFallsBack(t *testing.T) {
	items := MigrateWorkItems(nil)
	assert.Len(t, items, 1)
	assert.Equal(t, "", items[0].TokkiJiko)
}

func TestFromMap(t *testing.T) {
	record := FromMap(map[string]any{
		"kaishaName":      "A社",
		"jisshiDate":      "令和8年2月4日（水）",
		"genbaJimushoAri": true,
		"sagyoNaiyo": []any{
			map[string]any{"tokkiJiko": "①X線撮影"},
			"②コア削孔",
		},
	})

	assert.Equal(t, "A社", record.KaishaName)
	assert.Equal(t, "令和8年2月4日（水）", record.JisshiDate)
	assert.True(t, record.GenbaJimushoAri)
	assert.Equal(t, []WorkItem{{TokkiJiko: "①X線撮影"}, {TokkiJiko: "②コア削孔"}}, record.SagyoNaiyo)
}

func TestFromMapIgnoresWrongTypes(t *testing.T) {
	record := FromMap(map[string]any{
		"kaishaName":      123,
		"genbaJimushoAri": "あり",
		"sagyoNaiyo":      "単なる文字列",
	})

	assert.Equal(t, "", record.KaishaName)
	assert.True(t, record.GenbaJimushoAri)
	assert.Len(t, record.SagyoNaiyo, 1)
}

func TestFromMapEmptyInput(t *testing.T) {
	record := FromMap(nil)
	assert.Equal(t, Blank(), record)
}
