package mongo

import (
	"testing"
	"time"

	"github.com/sngm3741/uketsuke-services/api/internal/uketsuke/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func rawData(t *testing.T, value any) bson.Raw {
	t.Helper()
	raw, err := bson.Marshal(value)
	require.NoError(t, err)
	return bson.Raw(raw)
}

func TestMapUketsukeDocumentCurrentGeneration(t *testing.T) {
	doc := uketsukeDocument{
		ID: "aB3dE5fG7hJ9",
		Data: rawData(t, domain.Record{
			KaishaName: "A社",
			SagyoNaiyo: []domain.WorkItem{{TokkiJiko: "①X線撮影"}},
		}),
		CreatedAt:     time.Now().UTC(),
		SchemaVersion: domain.SchemaVersionCurrent,
	}

	stored, err := mapUketsukeDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, "aB3dE5fG7hJ9", stored.ID)
	assert.Equal(t, "A社", stored.Record.KaishaName)
	assert.Equal(t, []domain.WorkItem{{TokkiJiko: "①X線撮影"}}, stored.Record.SagyoNaiyo)
}

func TestMapUketsukeDocumentMigratesLegacyWorkItems(t *testing.T) {
	doc := uketsukeDocument{
		ID: "legacy000001",
		Data: rawData(t, bson.M{
			"kaishaName": "B社",
			"sagyoNaiyo": bson.A{
				bson.M{"atsusa": "150mm", "coaSize": "φ100", "honsu": "3本"},
				bson.M{"tokkiJiko": "デッキ有", "coaSakuko": bson.M{"deckPlate": true}},
			},
		}),
		SchemaVersion: domain.SchemaVersionLegacy,
	}

	stored, err := mapUketsukeDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, []domain.WorkItem{
		{TokkiJiko: "150mm φ100 3本"},
		{TokkiJiko: "デッキ有"},
	}, stored.Record.SagyoNaiyo)
}

func TestMapUketsukeDocumentEmptyDataRendersBlank(t *testing.T) {
	stored, err := mapUketsukeDocument(uketsukeDocument{ID: "empty0000001"})
	require.NoError(t, err)
	assert.Len(t, stored.Record.SagyoNaiyo, 1)
}
