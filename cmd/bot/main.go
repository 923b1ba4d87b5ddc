package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sngm3741/uketsuke-services/api/internal/config"
	"github.com/sngm3741/uketsuke-services/api/internal/extract"
	mongodoc "github.com/sngm3741/uketsuke-services/api/internal/infrastructure/mongo"
	"github.com/sngm3741/uketsuke-services/api/internal/slackbot"
	"github.com/sngm3741/uketsuke-services/api/internal/uketsuke/application"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg := config.Load()
	logger := cfg.BotLog

	var client *mongo.Client
	var records application.RecordCommandService
	if !cfg.LegacyLinks {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		clientOptions := options.Client().ApplyURI(cfg.MongoURI).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
		connected, err := mongo.Connect(ctx, clientOptions)
		cancel()
		if err != nil {
			logger.Fatalf("MongoDB 接続に失敗しました: %v", err)
		}
		client = connected
		repo := mongodoc.NewUketsukeRepository(client.Database(cfg.MongoDatabase), cfg.UketsukeCollection)
		records = application.NewRecordCommandService(repo)
	}

	extractor := extract.NewClient(extract.Config{
		Logger:    logger,
		APIKey:    cfg.AnthropicAPIKey,
		Model:     cfg.AnthropicModel,
		MaxTokens: cfg.ExtractMaxTokens,
		Timeout:   cfg.ExtractTimeout,
	})

	bot, err := slackbot.New(slackbot.Config{
		BotToken:    cfg.SlackBotToken,
		AppToken:    cfg.SlackAppToken,
		Logger:      logger,
		Extractor:   extractor,
		Records:     records,
		AppBaseURL:  cfg.AppBaseURL,
		LegacyLinks: cfg.LegacyLinks,
		Debug:       cfg.SlackDebug,
	})
	if err != nil {
		logger.Fatalf("ボットの初期化に失敗しました: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 確認完了通知はフロントのフォームから届くため、Socket Mode とは別に
	// 小さな HTTP サーバーを待ち受ける。
	confirmServer := &http.Server{
		Addr:              cfg.ConfirmAddr,
		Handler:           bot.ConfirmHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 2)
	go func() {
		logger.Printf("確認通知サーバー起動: http://%s", cfg.ConfirmAddr)
		if err := confirmServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()
	go func() {
		errChan <- bot.Run(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			logger.Printf("ボットが異常終了: %v", err)
		}
	case <-ctx.Done():
		logger.Printf("シグナルを受信。ボット停止処理を開始します。")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := confirmServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("確認通知サーバー停止時にエラー: %v", err)
	}
	if client != nil {
		if err := client.Disconnect(shutdownCtx); err != nil {
			logger.Printf("MongoDB 切断時にエラー: %v", err)
		}
	}
}
