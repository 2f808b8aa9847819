package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "eventsync"

// Registry 独立的Prometheus注册表，/metrics 只暴露这里的指标
var Registry = prometheus.NewRegistry()

// SiteFetchTotal 站点列表页抓取次数，outcome=ok/failed
var SiteFetchTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "site_fetch_total",
		Help:      "Listing page fetches per site by outcome",
	},
	[]string{"site", "outcome"},
)

// SiteZeroResultsTotal 抓取成功但解析出零条记录（页面标记可能已变化）
var SiteZeroResultsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "site_zero_results_total",
		Help:      "Successful fetches that produced zero records",
	},
	[]string{"site"},
)

// RecordsUpsertedTotal 入库记录数，op=created/updated
var RecordsUpsertedTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_upserted_total",
		Help:      "Records persisted per site by operation",
	},
	[]string{"site", "op"},
)

var PersistErrorsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "persist_errors_total",
		Help:      "Records skipped because the store rejected them",
	},
	[]string{"site"},
)

// ScrapeRunsTotal 爬取次数，outcome=ok/failed
var ScrapeRunsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scrape_runs_total",
		Help:      "Scrape runs by outcome",
	},
	[]string{"outcome"},
)

var ScrapeRunDuration = promauto.With(Registry).NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "scrape_run_duration_seconds",
		Help:      "Wall time of a full scrape run",
		Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
	},
)

var initOnce sync.Once

// Init 注册Go运行时与进程指标（可重复调用）
func Init() {
	initOnce.Do(func() {
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
