package livesync

import (
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Poller периодически инвалидирует темы: открытые календари обновляются
// даже если изменение пришло мимо сервиса (например, прямо в БД).
type Poller struct {
	cron   *cron.Cron
	logger *logrus.Logger
}

func NewPoller(schedule string, target Invalidator, logger *logrus.Logger, topics ...string) (*Poller, error) {
	if logger == nil {
		logger = logrus.New()
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	_, err := c.AddFunc(schedule, func() {
		for _, topic := range topics {
			target.Invalidate(topic)
		}
	})
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"schedule": schedule,
		"topics":   topics,
	}).Info("Live sync poller configured")

	return &Poller{cron: c, logger: logger}, nil
}

func (p *Poller) Start() {
	p.cron.Start()
}

// Stop останавливает планировщик и ждет завершения текущего тика
func (p *Poller) Stop() {
	<-p.cron.Stop().Done()
	p.logger.Info("Live sync poller stopped")
}
