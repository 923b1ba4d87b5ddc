// Package form は受付表の確認・編集・印刷用ページをサーバーサイドで描画する。
// フォームはスキーマの各項目と1対1で対応し、保存・確認操作は JSON API と
// ボットの確認エンドポイントへフォーム内のスクリプトから到達する。
package form

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sngm3741/uketsuke-services/api/internal/uketsuke/application"
	"github.com/sngm3741/uketsuke-services/api/internal/uketsuke/domain"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// Handler serves the reception form pages.
type Handler struct {
	logger          *log.Logger
	recordQueries   application.RecordQueryService
	confirmEndpoint string
	tmpl            *template.Template
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger          *log.Logger
	RecordQueries   application.RecordQueryService
	ConfirmEndpoint string
}

// NewHandler parses the embedded templates and constructs the form handler.
func NewHandler(cfg Config) (*Handler, error) {
	tmpl, err := template.New("form").
		Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
		ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, err
	}
	return &Handler{
		logger:          cfg.Logger,
		recordQueries:   cfg.RecordQueries,
		confirmEndpoint: cfg.ConfirmEndpoint,
		tmpl:            tmpl,
	}, nil
}

// Register mounts the form routes onto the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.homeHandler())
	r.Get("/uketsuke/{id}", h.recordPageHandler())
}

// formPage はテンプレートへ渡す描画データ。
type formPage struct {
	ID        string
	Record    domain.Record
	ChannelID string
	ThreadTS  string
	NotFound  bool
}

// homeHandler は空の受付表を表示する。旧方式の ?data= パラメータが付いて
// いれば、URL に埋め込まれたレコードを初期値として描画する。
func (h *Handler) homeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := formPage{Record: domain.Blank()}

		if dataParam := r.URL.Query().Get("data"); dataParam != "" {
			var parsed map[string]any
			if err := json.Unmarshal([]byte(dataParam), &parsed); err != nil {
				h.logger.Printf("URL パラメータのパースに失敗: %v", err)
			} else {
				page.Record = domain.FromMap(parsed)
			}
		}
		if slackParam := r.URL.Query().Get("slack"); slackParam != "" {
			var info struct {
				ChannelID string `json:"channelId"`
				ThreadTS  string `json:"threadTs"`
			}
			if err := json.Unmarshal([]byte(slackParam), &info); err == nil {
				page.ChannelID = info.ChannelID
				page.ThreadTS = info.ThreadTS
			}
		}

		h.render(w, page)
	}
}

// recordPageHandler は保存済みの受付表を表示する。存在しない ID は専用の
// 「見つかりません」画面になり、トップへ戻る導線を出す。
func (h *Handler) recordPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id := strings.TrimSpace(chi.URLParam(r, "id"))
		stored, err := h.recordQueries.Detail(ctx, id)
		if err != nil {
			h.logger.Printf("受付表 %s の取得に失敗: %v", id, err)
			http.Error(w, "受付表の取得に失敗しました", http.StatusInternalServerError)
			return
		}
		if stored == nil {
			w.WriteHeader(http.StatusNotFound)
			h.render(w, formPage{ID: id, Record: domain.Blank(), NotFound: true})
			return
		}

		h.render(w, formPage{
			ID:        stored.ID,
			Record:    stored.Record,
			ChannelID: stored.Tag.ChannelID,
			ThreadTS:  stored.Tag.ThreadTS,
		})
	}
}

func (h *Handler) render(w http.ResponseWriter, page formPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct {
		formPage
		ConfirmEndpoint string
	}{formPage: page, ConfirmEndpoint: h.confirmEndpoint}
	if err := h.tmpl.ExecuteTemplate(w, "form.html.tmpl", data); err != nil {
		h.logger.Printf("フォームの描画に失敗: %v", err)
	}
}
