package mail

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/LJTian/NewsDigest/internal/config"
)

// ErrNoCredential 表示 SMTP_PASS 没有配置。凭据只能来自环境变量，
// 缺失时视为致命的配置错误，由调用方决定如何退出。
var ErrNoCredential = errors.New("mail: SMTP_PASS not set")

// ErrNoRecipients 表示收件人列表为空
var ErrNoRecipients = errors.New("mail: empty recipient list")

// Sender 通过 SMTP(SSL) 发送摘要邮件
type Sender struct {
	Host string
	Port int
	User string
	Pass string
	To   []string
}

func NewSender(cfg *config.Config) *Sender {
	return &Sender{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		To:   cfg.ToEmails,
	}
}

// Send 把 HTML 摘要作为 multipart 正文发送，纯文本作为兜底部分
func (s *Sender) Send(subject, htmlBody, textBody string) error {
	if s.Pass == "" {
		return ErrNoCredential
	}
	if len(s.To) == 0 {
		return ErrNoRecipients
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.User)
	m.SetHeader("To", s.To...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textBody)
	m.AddAlternative("text/html", htmlBody)

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	// 465 端口是隐式 TLS，不走 STARTTLS
	d.SSL = s.Port == 465

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("mail: send: %w", err)
	}
	log.Printf("mail sent to %s", strings.Join(s.To, ", "))
	return nil
}

// Subject 生成带日期的主题行，有关键词过滤时附带说明
func Subject(keyword string, now time.Time) string {
	s := fmt.Sprintf("Resumen de noticias (%s)", now.Format("2006-01-02"))
	if keyword != "" {
		s += " - filtro: " + keyword
	}
	return s
}
