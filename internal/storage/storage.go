package storage

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/LJTian/NewsDigest/internal/extract"
)

// Article 是入库后的文章归档记录，URL 作为幂等键
type Article struct {
	ID     string `gorm:"primaryKey;size:40" json:"id"`
	Title  string `gorm:"size:512" json:"title"`
	URL    string `gorm:"size:1024;uniqueIndex" json:"url"`
	Author string `gorm:"size:256" json:"author"`
	Source string `gorm:"size:64;index" json:"source"`
	// 正文全文；摘要截断交给渲染层
	Body          string            `gorm:"type:text" json:"body"`
	PublishedAt   *time.Time        `gorm:"index" json:"publishedAt"`
	PublishedDate string            `gorm:"size:10;index" json:"publishedDate"` // 日期 YYYY-MM-DD，按目标时区
	ExtraData     datatypes.JSONMap `gorm:"type:jsonb" json:"extraData"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Store struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// NewRedisClient 建立 Redis 连接；ping 失败只警告，调用方自行决定是否继续用
func NewRedisClient(addr string) *redis.Client {
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("warn: redis ping failed: %v", err)
	}
	return rdb
}

func NewStore(dsn string, rdb *redis.Client) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&Article{}); err != nil {
		return nil, err
	}

	return &Store{DB: db, Redis: rdb}, nil
}

// toValidUTF8 将字符串规范为合法 UTF-8，避免 PostgreSQL invalid byte sequence 错误
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "�")
}

// truncateRunesDB 按 rune 数截断字符串，确保不会超过数据库字段长度
func truncateRunesDB(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}

func hashURL(url string) string {
	h := sha1.New()
	h.Write([]byte(url))
	return hex.EncodeToString(h.Sum(nil))
}

// SaveRun 归档一轮采集的入选文章，已存在的按 URL 幂等更新
func (s *Store) SaveRun(records []extract.Record, tzname string) error {
	loc, err := time.LoadLocation(tzname)
	if err != nil {
		loc = time.UTC
	}

	for _, rec := range records {
		pubDate := ""
		if rec.PublishedAt != nil {
			pubDate = rec.PublishedAt.In(loc).Format("2006-01-02")
		}

		a := &Article{
			ID:            hashURL(rec.URL),
			Title:         truncateRunesDB(toValidUTF8(rec.Title), 512),
			URL:           rec.URL,
			Author:        truncateRunesDB(toValidUTF8(rec.Author), 256),
			Source:        rec.Source,
			Body:          toValidUTF8(rec.BodyText),
			PublishedAt:   rec.PublishedAt,
			PublishedDate: pubDate,
			ExtraData:     datatypes.JSONMap{"run_at": time.Now().In(loc).Format(time.RFC3339)},
		}

		// 以 URL 作为幂等键，避免重复插入；已存在时刷新标题和正文
		if err := s.DB.Where("url = ?", rec.URL).FirstOrCreate(a).Error; err != nil {
			return err
		}
		_ = s.DB.Model(a).Updates(map[string]any{
			"title":          a.Title,
			"author":         a.Author,
			"body":           a.Body,
			"published_at":   a.PublishedAt,
			"published_date": a.PublishedDate,
		}).Error
	}

	return nil
}

// ListArticles 按来源和可选日期返回归档文章，并使用 Redis 做简单缓存
func (s *Store) ListArticles(source string, limit int, date string) ([]Article, error) {
	if limit <= 0 || limit > 1000 {
		limit = 20
	}

	ctx := context.Background()
	cacheKey := fmt.Sprintf("digest:list:%s:%d:%s", source, limit, date)

	if s.Redis != nil {
		if bs, err := s.Redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached []Article
			if err := json.Unmarshal(bs, &cached); err == nil {
				return cached, nil
			}
		}
	}

	var list []Article
	db := s.DB.Model(&Article{})
	if source != "" {
		db = db.Where("source = ?", source)
	}
	if date != "" {
		db = db.Where("published_date = ?", date)
	}
	if err := db.Order("published_at DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, err
	}

	// 回写缓存，靠短 TTL 自然过期
	const listCacheTTL = 5 * time.Minute
	if s.Redis != nil && len(list) > 0 {
		if bs, err := json.Marshal(list); err == nil {
			_ = s.Redis.Set(ctx, cacheKey, bs, listCacheTTL).Err()
		}
	}

	return list, nil
}
