package public

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sngm3741/uketsuke-services/api/internal/interfaces/http/common"
	"github.com/sngm3741/uketsuke-services/api/internal/uketsuke/application"
	"github.com/sngm3741/uketsuke-services/api/internal/uketsuke/domain"
)

// recordResponse は受付表1件分のレスポンス。
type recordResponse struct {
	ID        string        `json:"id"`
	Data      domain.Record `json:"data"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt *time.Time    `json:"updatedAt,omitempty"`
}

// recordSummaryResponse は一覧用の要約。
type recordSummaryResponse struct {
	ID         string    `json:"id"`
	KaishaName string    `json:"kaishaName"`
	GenbaName  string    `json:"genbaName"`
	JisshiDate string    `json:"jisshiDate"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toRecordResponse(stored application.StoredRecord) recordResponse {
	return recordResponse{
		ID:        stored.ID,
		Data:      stored.Record,
		CreatedAt: stored.CreatedAt,
		UpdatedAt: stored.UpdatedAt,
	}
}

// recordDetailHandler は ID 指定で受付表を返す。存在しない ID は 404 であり、
// サーバーエラーとは区別する。
func (h *Handler) recordDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id := strings.TrimSpace(chi.URLParam(r, "id"))
		stored, err := h.recordQueries.Detail(ctx, id)
		if err != nil {
			h.logger.Printf("受付表 %s の取得に失敗: %v", id, err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "受付表の取得に失敗しました"})
			return
		}
		if stored == nil {
			common.WriteJSON(h.logger, w, http.StatusNotFound, map[string]string{"error": "受付表が見つかりません"})
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, toRecordResponse(*stored))
	}
}

// recordListHandler は新しい順の受付表一覧を返す。
func (h *Handler) recordListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		limit, _ := common.ParsePositiveInt(r.URL.Query().Get("limit"), common.DefaultRecentLimit)
		records, err := h.recordQueries.Recent(ctx, limit)
		if err != nil {
			h.logger.Printf("受付表一覧の取得に失敗: %v", err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "受付表一覧の取得に失敗しました"})
			return
		}

		items := make([]recordSummaryResponse, 0, len(records))
		for _, stored := range records {
			items = append(items, recordSummaryResponse{
				ID:         stored.ID,
				KaishaName: stored.Record.KaishaName,
				GenbaName:  stored.Record.GenbaName,
				JisshiDate: stored.Record.JisshiDate,
				CreatedAt:  stored.CreatedAt,
			})
		}
		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{"items": items})
	}
}

// recordCreateHandler はフォームからの新規作成を受け付け、採番した ID を返す。
func (h *Handler) recordCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		r.Body = http.MaxBytesReader(w, r.Body, common.MaxRecordRequestBody)
		var record domain.Record
		if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "リクエストボディの形式が不正です"})
			return
		}

		id, err := h.recordCommands.Create(ctx, record, application.ThreadTag{})
		if err != nil {
			h.logger.Printf("受付表の作成に失敗: %v", err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "受付表の保存に失敗しました"})
			return
		}

		common.WriteJSON(h.logger, w, http.StatusCreated, map[string]string{"id": id})
	}
}

// recordUpdateHandler は受付表を丸ごと更新する。保存失敗はフォーム側で
// ユーザーに知らせるため、そのままエラーとして返す。
func (h *Handler) recordUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id := strings.TrimSpace(chi.URLParam(r, "id"))

		r.Body = http.MaxBytesReader(w, r.Body, common.MaxRecordRequestBody)
		var record domain.Record
		if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "リクエストボディの形式が不正です"})
			return
		}

		found, err := h.recordCommands.Update(ctx, id, record)
		if err != nil {
			h.logger.Printf("受付表 %s の更新に失敗: %v", id, err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "受付表の保存に失敗しました"})
			return
		}
		if !found {
			common.WriteJSON(h.logger, w, http.StatusNotFound, map[string]string{"error": "受付表が見つかりません"})
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, map[string]string{"id": id})
	}
}
