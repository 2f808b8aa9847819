package adapter

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"EventSync/internal/interfaces"
	"EventSync/internal/model"

	"github.com/sirupsen/logrus"
)

// Factory 站点解析器工厂函数签名
type Factory func(logger *logrus.Logger) interfaces.SiteParser

// ========== 全局工厂函数注册表 ==========
var (
	factoryRegistry = make(map[model.SiteType]Factory)
	domainRegistry  = make(map[string]model.SiteType) // 域名片段 → 解析器类型
)

// Register 供解析器包init函数调用，注册工厂函数
func Register(site model.SiteType, factory Factory) {
	if factory == nil {
		panic(fmt.Sprintf("解析器%s的工厂函数不能为nil", site))
	}
	if _, exists := factoryRegistry[site]; exists {
		logrus.Warnf("解析器%s已注册，将覆盖原有实现", site)
	}
	factoryRegistry[site] = factory
	logrus.Debugf("解析器%s工厂函数注册成功", site)
}

// RegisterDomains 声明解析器负责的域名（按host子串匹配）
func RegisterDomains(site model.SiteType, domains ...string) {
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		domainRegistry[d] = site
	}
}

// GetFactory 获取指定解析器的工厂函数
func GetFactory(site model.SiteType) (Factory, bool) {
	factory, ok := factoryRegistry[site]
	return factory, ok
}

// ListFactories 列出所有已注册的解析器类型（有序）
func ListFactories() []model.SiteType {
	sites := make([]model.SiteType, 0, len(factoryRegistry))
	for s := range factoryRegistry {
		sites = append(sites, s)
	}
	sort.Slice(sites, func(i, j int) bool { return sites[i] < sites[j] })
	return sites
}

// ResolveByURL 按URL的host匹配已注册域名，较长的域名优先
func ResolveByURL(rawURL string) (model.SiteType, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", false
	}
	host := strings.ToLower(u.Hostname())

	domains := make([]string, 0, len(domainRegistry))
	for d := range domainRegistry {
		domains = append(domains, d)
	}
	sort.Slice(domains, func(i, j int) bool {
		if len(domains[i]) != len(domains[j]) {
			return len(domains[i]) > len(domains[j])
		}
		return domains[i] < domains[j]
	})
	for _, d := range domains {
		if strings.Contains(host, d) {
			return domainRegistry[d], true
		}
	}
	return "", false
}
