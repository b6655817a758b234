package repository

import "gorm.io/gorm"

// maxListPageSize 仓库层单页上限，与接口层的限制一致
const maxListPageSize = 100

// pageWindow 计算分页的 limit/offset，pageSize 非正时返回 ok=false 表示不分页
func pageWindow(page, pageSize int) (limit, offset int, ok bool) {
	if pageSize <= 0 {
		return 0, 0, false
	}
	if pageSize > maxListPageSize {
		pageSize = maxListPageSize
	}
	if page < 1 {
		page = 1
	}
	return pageSize, (page - 1) * pageSize, true
}

func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	limit, offset, ok := pageWindow(page, pageSize)
	if query == nil || !ok {
		return query
	}
	return query.Limit(limit).Offset(offset)
}
