package metadata

import (
	"context"
	"fmt"

	"github.com/ichaly/ideabase/utl"
	"gorm.io/gorm"
)

// queryMeta 执行返回单行JSON的元数据SQL并解析
func queryMeta(ctx context.Context, db *gorm.DB, query string) (*dbMeta, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := db.WithContext(ctx).Raw(query).Rows()
	if err != nil {
		return nil, fmt.Errorf("执行元数据SQL失败: %w", err)
	}
	defer rows.Close()

	meta := &dbMeta{}
	if rows.Next() {
		var jsonData []byte
		if err := rows.Scan(&jsonData); err != nil {
			return nil, fmt.Errorf("扫描元数据结果失败: %w", err)
		}
		if err := utl.Unmarshal(jsonData, meta); err != nil {
			return nil, fmt.Errorf("解析元数据JSON失败: %w", err)
		}
	}
	return meta, rows.Err()
}
