package commands

import (
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"tableflip.dev/syncpanel/pkg/api"
	"tableflip.dev/syncpanel/pkg/app"
	"tableflip.dev/syncpanel/pkg/config"
	"tableflip.dev/syncpanel/pkg/logging"
)

type session struct {
	cfg *config.Config
	svc *app.Service
}

type loadMode int

const (
	oneShot loadMode = iota
	// longRunning follows config file edits.
	longRunning
	// fullScreen is longRunning and keeps stderr clean; logs are only
	// written when a log file is configured.
	fullScreen
)

// load resolves configuration, starts logging and builds the service.
// Long running modes pick up later edits to the config file for the poll
// interval and log level.
func load(mode loadMode) (*session, error) {
	v := viper.GetViper()
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	if mode != fullScreen || cfg.LogFile != "" {
		if err := logging.Init(cfg.Logging()); err != nil {
			return nil, err
		}
	}
	svc := app.New(api.New(cfg.API()), app.WithInterval(cfg.Interval))

	if mode != oneShot {
		config.Watch(v, func(next *config.Config) {
			if next.Interval != svc.Loop.Interval() {
				svc.Loop.SetInterval(next.Interval)
				logging.Info("poll interval changed", zap.Duration("interval", next.Interval))
			}
			if next.LogLevel != logging.Level() {
				logging.SetLevel(next.LogLevel)
			}
		})
	}
	return &session{cfg: cfg, svc: svc}, nil
}
