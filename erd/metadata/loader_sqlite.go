package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

type sqliteForeignKey struct {
	Table string         `gorm:"column:table"`
	From  string         `gorm:"column:from"`
	To    sql.NullString `gorm:"column:to"`
}

// sqliteDialect SQLite没有information_schema，通过Migrator和PRAGMA读取
type sqliteDialect struct{}

func (my *sqliteDialect) readMeta(ctx context.Context, db *gorm.DB) (*dbMeta, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	db = db.WithContext(ctx)

	tables, err := db.Migrator().GetTables()
	if err != nil {
		return nil, fmt.Errorf("读取表失败: %w", err)
	}

	meta := &dbMeta{}
	for _, t := range tables {
		if strings.HasPrefix(t, "sqlite_") {
			continue
		}
		meta.Tables = append(meta.Tables, tableInfo{TableName: t})

		cols, err := db.Migrator().ColumnTypes(t)
		if err != nil {
			return nil, fmt.Errorf("读取表 %s 的字段失败: %w", t, err)
		}
		for i, c := range cols {
			meta.Columns = append(meta.Columns, columnInfo{
				TableName:  t,
				ColumnName: c.Name(),
				DataType:   strings.ToLower(c.DatabaseTypeName()),
				Position:   i + 1,
			})
		}

		var fks []sqliteForeignKey
		if err := db.Raw(fmt.Sprintf("PRAGMA foreign_key_list(%q)", t)).Scan(&fks).Error; err != nil {
			return nil, fmt.Errorf("读取表 %s 的外键失败: %w", t, err)
		}
		for _, fk := range fks {
			to := fk.To.String
			if !fk.To.Valid || to == "" {
				to = "id"
			}
			meta.ForeignKeys = append(meta.ForeignKeys, foreignKeyInfo{
				SourceTable:  t,
				SourceColumn: fk.From,
				TargetTable:  fk.Table,
				TargetColumn: to,
			})
		}
	}
	return meta, nil
}
