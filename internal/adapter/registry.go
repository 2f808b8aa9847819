package adapter

import (
	"sync"

	"EventSync/internal/config"
	"EventSync/internal/interfaces"
	"EventSync/internal/model"

	"github.com/sirupsen/logrus"
)

// ParserRegistry 按站点配置解析出解析器实例
type ParserRegistry struct {
	logger *logrus.Logger

	mu      sync.RWMutex
	parsers map[model.SiteType]interfaces.SiteParser
}

var _ interfaces.ParserResolver = (*ParserRegistry)(nil)

func NewParserRegistry(cfg *config.ScrapeConfig, logger *logrus.Logger) *ParserRegistry {
	r := &ParserRegistry{
		logger:  logger,
		parsers: make(map[model.SiteType]interfaces.SiteParser),
	}
	r.initParsersFromFactories(cfg)
	return r
}

// initParsersFromFactories 为配置中用到的解析器创建实例
func (r *ParserRegistry) initParsersFromFactories(cfg *config.ScrapeConfig) {
	r.logger.WithField("factory_parsers", ListFactories()).Debug("已注册的解析器工厂函数")

	for _, site := range cfg.EnabledSites() {
		siteType, ok := r.bindingFor(site)
		if !ok {
			r.logger.WithFields(logrus.Fields{
				"site": site.SiteName(),
				"url":  site.URL,
			}).Warn("站点未匹配到解析器，将产出零条记录")
			continue
		}
		if _, exists := r.parsers[siteType]; exists {
			continue
		}

		factory, ok := GetFactory(siteType)
		if !ok {
			r.logger.WithFields(logrus.Fields{
				"site":   site.SiteName(),
				"parser": siteType,
			}).Error("未找到对应的工厂函数（init未注册？）")
			continue
		}
		parser := factory(r.logger)
		if parser == nil {
			r.logger.WithField("parser", siteType).Error("工厂函数返回nil解析器实例")
			continue
		}
		r.parsers[siteType] = parser
		r.logger.WithFields(logrus.Fields{
			"site":   site.SiteName(),
			"parser": siteType,
		}).Info("解析器实例初始化成功")
	}
}

// bindingFor 显式配置优先，否则按域名匹配
func (r *ParserRegistry) bindingFor(site config.SiteConfig) (model.SiteType, bool) {
	if site.Parser != "" {
		return model.SiteType(site.Parser), true
	}
	return ResolveByURL(site.URL)
}

// ParserFor 获取站点对应的解析器；未识别的站点返回false
func (r *ParserRegistry) ParserFor(site config.SiteConfig) (interfaces.SiteParser, bool) {
	siteType, ok := r.bindingFor(site)
	if !ok {
		return nil, false
	}
	r.mu.RLock()
	parser, ok := r.parsers[siteType]
	r.mu.RUnlock()
	if !ok {
		// 运行期新增的站点（未在构造时出现）按需创建
		factory, found := GetFactory(siteType)
		if !found {
			return nil, false
		}
		parser = factory(r.logger)
		if parser == nil {
			return nil, false
		}
		r.mu.Lock()
		r.parsers[siteType] = parser
		r.mu.Unlock()
	}
	return parser, true
}

// ListRegisteredParsers 获取已初始化的解析器类型
func (r *ParserRegistry) ListRegisteredParsers() []model.SiteType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sites := make([]model.SiteType, 0, len(r.parsers))
	for s := range r.parsers {
		sites = append(sites, s)
	}
	return sites
}

// GetParserCount 已初始化的解析器数量
func (r *ParserRegistry) GetParserCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.parsers)
}
