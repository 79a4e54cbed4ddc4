package job

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/vpnclashfa-backup/freeconfig/internal/collect"
)

// Runner is satisfied by *collect.Collector.
type Runner interface {
	Run(ctx context.Context, refs []string) (*collect.Report, error)
}

// CollectJob 定时采集配置来源，并原子地发布最新报告供 HTTP 接口读取。
type CollectJob struct {
	runner  Runner
	sources []string
	logger  *slog.Logger
	latest  atomic.Pointer[collect.Report]
}

// NewCollectJob 创建采集任务。
func NewCollectJob(runner Runner, sources []string, logger *slog.Logger) *CollectJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &CollectJob{runner: runner, sources: append([]string(nil), sources...), logger: logger}
}

// Name implements Runnable.
func (j *CollectJob) Name() string { return "collect" }

// Run implements Runnable. A failed run keeps the previous snapshot.
func (j *CollectJob) Run(ctx context.Context) error {
	if len(j.sources) == 0 {
		return errors.New("collect job: no sources configured")
	}
	report, err := j.runner.Run(ctx, j.sources)
	if err != nil {
		return err
	}
	j.latest.Store(report)
	j.logger.Info("snapshot updated", "links", len(report.Links), "failed_sources", report.Failed())
	return nil
}

// Latest returns the most recent report, or nil before the first success.
func (j *CollectJob) Latest() *collect.Report {
	return j.latest.Load()
}
