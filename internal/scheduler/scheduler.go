package scheduler

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/LJTian/NewsDigest/internal/config"
	"github.com/LJTian/NewsDigest/internal/digest"
	"github.com/LJTian/NewsDigest/internal/mail"
	"github.com/LJTian/NewsDigest/internal/pipeline"
	"github.com/LJTian/NewsDigest/internal/storage"
)

// 单轮采集的总时限，防止个别站点响应异常时整轮悬挂
const runDeadline = 30 * time.Minute

type Scheduler struct {
	cron   *cron.Cron
	cfg    *config.Config
	runner *pipeline.Runner
	store  *storage.Store
	sender *mail.Sender
}

// New 注册采集任务；store 可以为 nil（不归档），sender 为 nil 时只采集不投递
func New(cfg *config.Config, runner *pipeline.Runner, store *storage.Store, sender *mail.Sender) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron:   c,
		cfg:    cfg,
		runner: runner,
		store:  store,
		sender: sender,
	}

	if _, err := c.AddFunc(cfg.CronSpec, func() {
		if err := s.RunOnce(); err != nil {
			log.Printf("harvest run failed: %v", err)
		}
	}); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	// 延迟首轮采集，避免和服务启动时的其它初始化抢资源
	const startupDelay = 15 * time.Second
	time.AfterFunc(startupDelay, func() {
		if err := s.RunOnce(); err != nil {
			log.Printf("harvest run failed: %v", err)
		}
	})
}

// RunOnce 执行一轮完整的采集 → 归档 → 渲染 → 投递。
// 空结果集不是错误：记日志、不发邮件、正常返回。
func (s *Scheduler) RunOnce() error {
	log.Println("start harvest run...")

	ctx, cancel := context.WithTimeout(context.Background(), runDeadline)
	defer cancel()

	records, err := s.runner.Run(ctx)
	if err != nil {
		return err
	}

	if s.store != nil {
		if err := s.store.SaveRun(records, s.cfg.TZName); err != nil {
			log.Printf("warn: archive run: %v", err)
		}
	}

	if len(records) == 0 {
		log.Println("harvest run done, nothing to deliver")
		return nil
	}

	htmlBody, textBody := digest.Render(records, s.cfg.TZName)

	if s.sender == nil {
		log.Printf("harvest run done, %d articles (mail disabled)", len(records))
		return nil
	}

	keyword := strings.Join(s.cfg.Keywords, ", ")
	if err := s.sender.Send(mail.Subject(keyword, time.Now()), htmlBody, textBody); err != nil {
		return err
	}

	log.Printf("harvest run done, delivered %d articles", len(records))
	return nil
}
