package keepalive

import (
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Pinger - ücretsiz hosting katmanlarının süreci uyutmaması için uygulamanın
// kendi adresine periyodik GET atar. URL boşsa hiç başlatılmaz.
type Pinger struct {
	cron   *cron.Cron
	client *resty.Client
	url    string
	logger *zap.Logger
}

func NewPinger(url string, logger *zap.Logger) *Pinger {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := resty.New().
		SetTimeout(30 * time.Second).
		SetRetryCount(0)

	return &Pinger{
		cron:   cron.New(),
		client: client,
		url:    url,
		logger: logger,
	}
}

func (p *Pinger) Start() {
	if p.url == "" {
		return
	}

	if _, err := p.cron.AddFunc("@every 10m", p.ping); err != nil {
		p.logger.Error("keepalive zamanlanamadı", zap.Error(err))
		return
	}
	p.cron.Start()
	p.logger.Info("keepalive başlatıldı", zap.String("url", p.url))
}

func (p *Pinger) Stop() {
	p.cron.Stop()
}

func (p *Pinger) ping() {
	resp, err := p.client.R().Get(p.url)
	if err != nil {
		p.logger.Warn("keepalive ping başarısız", zap.Error(err))
		return
	}
	p.logger.Debug("keepalive ping", zap.Int("status", resp.StatusCode()))
}
