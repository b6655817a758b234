package repository

import (
	"strings"

	"gorm.io/gorm"
)

// dbDialectName 获取数据库方言名称，默认按 sqlite 处理。
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	name := strings.ToLower(strings.TrimSpace(db.Dialector.Name()))
	if name == "" {
		return "sqlite"
	}
	return name
}

// likeOperator 返回大小写不敏感的模糊匹配操作符。
func likeOperator(db *gorm.DB) string {
	return likeOperatorByDialect(dbDialectName(db))
}

func likeOperatorByDialect(dialect string) string {
	switch dialect {
	case "postgres", "postgresql":
		return "ILIKE"
	default:
		// sqlite 的 LIKE 对 ASCII 默认不区分大小写
		return "LIKE"
	}
}

// escapeLikePattern 转义 LIKE 通配符并包裹为包含匹配。
func escapeLikePattern(raw string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(strings.TrimSpace(raw)) + "%"
}

// buildLikeCondition 构建多列 OR 模糊匹配条件。
func buildLikeCondition(db *gorm.DB, columns ...string) string {
	op := likeOperator(db)
	parts := make([]string, 0, len(columns))
	for _, column := range columns {
		parts = append(parts, column+" "+op+` ? ESCAPE '\'`)
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}
