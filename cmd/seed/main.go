package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	mongodoc "github.com/sngm3741/uketsuke-services/api/internal/infrastructure/mongo"
	"github.com/sngm3741/uketsuke-services/api/internal/uketsuke/application"
	"github.com/sngm3741/uketsuke-services/api/internal/uketsuke/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type seedOptions struct {
	envName         string
	recordCount     int
	dropCollections bool
	randomSeed      int64
}

func main() {
	opts := parseFlags()

	if err := loadEnvFiles(opts.envName); err != nil {
		log.Fatalf("環境変数の読み込みに失敗しました: %v", err)
	}

	collection := envOrDefault("UKETSUKE_COLLECTION", "uketsuke")
	mongoURI := envOrDefault("MONGO_URI", "mongodb://localhost:27017")
	dbName := envOrDefault("MONGO_DB", "uketsuke")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("MongoDB 接続に失敗しました: %v", err)
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	db := client.Database(dbName)

	if opts.dropCollections {
		if err := db.Collection(collection).Drop(ctx); err != nil {
			// Drop は存在しない場合も err を返すので warning ログにとどめる
			log.Printf("WARN: コレクション %s の削除に失敗: %v", collection, err)
		} else {
			log.Printf("既存コレクションを削除しました")
		}
	}

	if err := ensureIndexes(ctx, db, collection); err != nil {
		log.Fatalf("インデックス作成に失敗しました: %v", err)
	}

	rng := rand.New(rand.NewSource(opts.randomSeed))
	repo := mongodoc.NewUketsukeRepository(db, collection)

	inserted := 0
	for i := 0; i < opts.recordCount; i++ {
		record, tag := generateRecord(rng, i)
		id, err := repo.Create(ctx, record, tag)
		if err != nil {
			log.Fatalf("受付表データの挿入に失敗しました: %v", err)
		}
		log.Printf("受付表を作成: id=%s 現場=%s", id, record.GenbaName)
		inserted++
	}

	log.Printf("Seed 完了: records=%d", inserted)
	log.Printf("Mongo: %s / %s (env=%s)", mongoURI, dbName, opts.envName)
}

func parseFlags() seedOptions {
	var opts seedOptions
	flag.StringVar(&opts.envName, "env", "local", "backend/env 内の env ファイル名 (例: local, staging)")
	flag.IntVar(&opts.recordCount, "records", 5, "生成する受付表数")
	flag.BoolVar(&opts.dropCollections, "drop", true, "既存コレクションを削除してから投入する")
	defaultSeed := time.Now().UnixNano()
	flag.Int64Var(&opts.randomSeed, "seed", defaultSeed, "乱数シード（再現用）")
	flag.Parse()

	if opts.recordCount <= 0 {
		log.Fatal("records は 1 以上を指定してください")
	}
	return opts
}

func loadEnvFiles(envName string) error {
	base := filepath.Clean(filepath.Join("..", "env"))
	files := []string{
		filepath.Join(base, "shared.env"),
		filepath.Join(base, fmt.Sprintf("%s.env", envName)),
	}
	for _, file := range files {
		if err := loadEnvFile(file); err != nil {
			return err
		}
	}
	return nil
}

func loadEnvFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%s の読み込みに失敗しました: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func ensureIndexes(ctx context.Context, db *mongo.Database, collection string) error {
	_, err := db.Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("idx_uketsuke_created"),
	})
	return err
}

func generateRecord(rng *rand.Rand, index int) (domain.Record, application.ThreadTag) {
	record := domain.Blank()
	company := companyNames[rng.Intn(len(companyNames))]
	site := siteNames[rng.Intn(len(siteNames))]

	day := time.Now().AddDate(0, 0, 1+rng.Intn(20))
	record.JisshiDate = fmt.Sprintf("%d/%d(%s) %d:00〜", int(day.Month()), day.Day(), weekdayKanji[day.Weekday()], 9+rng.Intn(5))
	record.UketsukeSha = receptionists[rng.Intn(len(receptionists))]
	record.UketsukeDate = time.Now().Format("2006/01/02")
	record.KaishaName = company
	record.TantouSha = contactNames[rng.Intn(len(contactNames))]
	record.Keitai = fmt.Sprintf("090-%04d-%04d", rng.Intn(10000), rng.Intn(10000))
	record.GenbaName = site
	record.KenName = prefectures[rng.Intn(len(prefectures))]
	record.GenbaAddress = fmt.Sprintf("%s内 %d-%d", site, 1+rng.Intn(9), 1+rng.Intn(20))
	record.SatsueiMaisuBasho = fmt.Sprintf("%d枚 %dF スラブ", 2+rng.Intn(10), 1+rng.Intn(5))
	record.MachiawaseJikanBasho = fmt.Sprintf("%d:30 現地集合", 8+rng.Intn(3))
	record.GenbaJimushoAri = rng.Intn(2) == 0
	if record.GenbaJimushoAri {
		record.GenbaJimushoBasho = "正門入って右手"
	}
	record.SagyoNaiyo = []domain.WorkItem{
		{TokkiJiko: fmt.Sprintf("①X線 %d枚 %dF床 鉄筋・電配管の有無確認", 2+rng.Intn(8), 1+rng.Intn(5))},
		{TokkiJiko: fmt.Sprintf("②コア %dF床 φ%d %d本", 1+rng.Intn(5), coreSizes[rng.Intn(len(coreSizes))], 1+rng.Intn(4))},
	}

	var tag application.ThreadTag
	if rng.Intn(2) == 0 {
		tag = application.ThreadTag{
			ChannelID: "C0SEEDCHAN",
			ThreadTS:  fmt.Sprintf("%d.%06d", time.Now().Unix()-int64(index*3600), rng.Intn(1000000)),
		}
	}
	return record, tag
}

var (
	companyNames  = []string{"大和建設", "東都解体工業", "三協コンクリート", "北斗設備", "山一工務店"}
	siteNames     = []string{"品川倉庫改修工事", "大阪第二ビル", "横浜物流センター", "名古屋駅前再開発", "仙台工場増築"}
	receptionists = []string{"佐藤", "鈴木", "高橋"}
	contactNames  = []string{"田中", "伊藤", "渡辺", "山本"}
	prefectures   = []string{"東京都", "神奈川県", "大阪府", "愛知県", "宮城県"}
	coreSizes     = []int{75, 100, 125, 150}
	weekdayKanji  = map[time.Weekday]string{
		time.Sunday: "日", time.Monday: "月", time.Tuesday: "火", time.Wednesday: "水",
		time.Thursday: "木", time.Friday: "金", time.Saturday: "土",
	}
)
