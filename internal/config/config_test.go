package config_test

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/okian/rehearse/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
			convey.So(cfg.RemoteScorerURL, convey.ShouldBeEmpty)
			convey.So(cfg.DefaultQuestionCount, convey.ShouldEqual, 5)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then durations are derived from the numeric fields", func() {
			convey.So(cfg.RemoteScorerTimeout(), convey.ShouldEqual, 3*time.Second)
			convey.So(cfg.SessionTTL(), convey.ShouldEqual, time.Hour)
			convey.So(cfg.JanitorInterval(), convey.ShouldEqual, time.Minute)
			convey.So(cfg.FinishTimeout(), convey.ShouldEqual, 10*time.Second)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given invalid settings", t, func() {
		cases := map[string]func(*config.Config){
			"empty addr":        func(c *config.Config) { c.Addr = " " },
			"zero queue":        func(c *config.Config) { c.QueueSize = 0 },
			"zero questions":    func(c *config.Config) { c.DefaultQuestionCount = 0 },
			"negative ttl":      func(c *config.Config) { c.SessionTTLMinutes = -1 },
			"zero janitor":      func(c *config.Config) { c.JanitorIntervalSeconds = 0 },
			"zero remote bound": func(c *config.Config) { c.RemoteScorerTimeoutMS = 0 },
			"zero finish bound": func(c *config.Config) { c.FinishTimeoutMS = 0 },
			"unknown format":    func(c *config.Config) { c.LogFormat = "xml" },
		}
		for name, mutate := range cases {
			convey.Convey("Then "+name+" is rejected", func() {
				cfg := config.New()
				mutate(cfg)
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}
