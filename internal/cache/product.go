package cache

import "strings"

// PublicProductKey 前台商品详情缓存键
func PublicProductKey(slug string) string {
	return "public:product:" + strings.TrimSpace(slug)
}
