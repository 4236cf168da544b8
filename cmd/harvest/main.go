package main

import (
	"log"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/LJTian/NewsDigest/internal/config"
	"github.com/LJTian/NewsDigest/internal/fetcher"
	"github.com/LJTian/NewsDigest/internal/mail"
	"github.com/LJTian/NewsDigest/internal/pipeline"
	"github.com/LJTian/NewsDigest/internal/scheduler"
	"github.com/LJTian/NewsDigest/internal/seen"
	"github.com/LJTian/NewsDigest/internal/storage"
)

// 一个仅执行一轮采集并投递摘要的命令行入口，适合 cron 或手动触发。
// 用法: harvest [keyword] [tzname]
func main() {
	cfg := config.Load()

	// 命令行参数优先于环境变量和配置文件
	if len(os.Args) > 1 && os.Args[1] != "" {
		cfg.Keywords = []string{os.Args[1]}
	}
	if len(os.Args) > 2 && os.Args[2] != "" {
		cfg.TZName = os.Args[2]
	}

	var rdb *redis.Client
	var st seen.Store = seen.Noop{}
	if cfg.RedisAddr != "" {
		rdb = storage.NewRedisClient(cfg.RedisAddr)
		st = seen.NewRedis(rdb)
	}

	var archive *storage.Store
	if cfg.PostgresDSN != "" {
		var err error
		archive, err = storage.NewStore(cfg.PostgresDSN, rdb)
		if err != nil {
			log.Fatalf("init store failed: %v", err)
		}
	}

	runner := pipeline.New(cfg, fetcher.New(), st)
	s, err := scheduler.New(cfg, runner, archive, mail.NewSender(cfg))
	if err != nil {
		log.Fatalf("init scheduler failed: %v", err)
	}

	// 只执行一轮采集任务后退出；缺少邮件凭据在投递阶段才算致命
	if err := s.RunOnce(); err != nil {
		log.Fatalf("harvest failed: %v", err)
	}
}
