package cron

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"easedrop/backend/config"
	"easedrop/backend/lifecycle"
)

const (
	ExpiryTask  = "expiry"
	LimiterTask = "limiter"
)

type Task struct {
	Name           string
	Interval       time.Duration
	IntervalAmount int
	TaskFn         func()
}

func (task Task) getCronString() string {
	var intervalChar rune
	switch task.Interval {
	case time.Second:
		intervalChar = 's'
	case time.Minute:
		intervalChar = 'm'
	case time.Hour:
		intervalChar = 'h'
	default:
		log.Fatalf("Unsupported cron interval type: %s", task.Interval)
		return ""
	}

	return fmt.Sprintf("@every %d%c", task.IntervalAmount, intervalChar)
}

// InitTasks schedules the background work: the expiry sweep that reclaims
// transfers nobody downloaded in time, and the limiter map cleanup. In
// debug mode the sweep runs every second so short expirations are testable.
func InitTasks(cfg config.ServerConfig, mgr *lifecycle.Manager, limiterFn func()) *cron.Cron {
	sweepSeconds := 60
	if cfg.IsDebugMode {
		sweepSeconds = 1
	}

	tasks := []Task{
		{
			Name:           ExpiryTask,
			Interval:       time.Second,
			IntervalAmount: sweepSeconds,
			TaskFn:         mgr.SweepExpired,
		},
		{
			Name:           LimiterTask,
			Interval:       time.Second,
			IntervalAmount: cfg.LimiterSeconds,
			TaskFn:         limiterFn,
		},
	}

	c := cron.New()
	for _, task := range tasks {
		_, err := c.AddFunc(task.getCronString(), task.TaskFn)
		if err == nil {
			log.Printf("Added cron task '%s'\n", task.Name)
		} else {
			log.Printf("Error adding cron task: %v\n", err)
		}
	}

	c.Start()
	return c
}
