package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/LJTian/NewsDigest/internal/api"
	"github.com/LJTian/NewsDigest/internal/config"
	"github.com/LJTian/NewsDigest/internal/fetcher"
	"github.com/LJTian/NewsDigest/internal/mail"
	"github.com/LJTian/NewsDigest/internal/pipeline"
	"github.com/LJTian/NewsDigest/internal/scheduler"
	"github.com/LJTian/NewsDigest/internal/seen"
	"github.com/LJTian/NewsDigest/internal/storage"
)

func main() {
	cfg := config.Load()

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = storage.NewRedisClient(cfg.RedisAddr)
	}

	var archive *storage.Store
	if cfg.PostgresDSN != "" {
		var err error
		archive, err = storage.NewStore(cfg.PostgresDSN, rdb)
		if err != nil {
			log.Fatalf("init store failed: %v", err)
		}
	}

	// 常驻进程：没配 Redis 时退回进程内集合，至少本进程存活期间不重复投递
	var st seen.Store = seen.NewMemory()
	if rdb != nil {
		st = seen.NewRedis(rdb)
	}

	var sender *mail.Sender
	if cfg.SMTPPass != "" {
		sender = mail.NewSender(cfg)
	} else {
		log.Printf("warn: SMTP_PASS not set, delivery disabled")
	}

	runner := pipeline.New(cfg, fetcher.New(), st)
	s, err := scheduler.New(cfg, runner, archive, sender)
	if err != nil {
		log.Fatalf("init scheduler failed: %v", err)
	}
	s.Start()

	r := gin.Default()
	apiServer := api.NewServer(archive, func() {
		if err := s.RunOnce(); err != nil {
			log.Printf("manual harvest failed: %v", err)
		}
	})
	apiServer.RegisterRoutes(r)

	addr := ":" + cfg.AppPort
	log.Printf("starting api server at %s ...", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server exit: %v", err)
	}
}
