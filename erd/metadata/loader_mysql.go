package metadata

import (
	"context"

	"gorm.io/gorm"
)

// MySQL元数据查询SQL，返回当前库的表、字段、外键信息
const mysqlMetaSQL = `
WITH 
  tables AS (
    SELECT 
      table_name
    FROM 
      information_schema.tables
    WHERE 
      table_schema = DATABASE()
      AND table_type = 'BASE TABLE'
  ),
  columns AS (
    SELECT 
      c.table_name,
      c.column_name,
      c.data_type,
      c.ordinal_position
    FROM 
      information_schema.columns c
    JOIN 
      tables t ON c.table_name = t.table_name
    WHERE 
      c.table_schema = DATABASE()
  ),
  foreign_keys AS (
    SELECT DISTINCT
      k.table_name as source_table,
      k.column_name as source_column,
      k.referenced_table_name as target_table,
      k.referenced_column_name as target_column
    FROM 
      information_schema.key_column_usage k
    JOIN 
      tables t1 ON k.table_name = t1.table_name
    JOIN 
      tables t2 ON k.referenced_table_name = t2.table_name
    WHERE 
      k.constraint_schema = DATABASE()
      AND k.referenced_table_name IS NOT NULL
  )
SELECT 
  JSON_OBJECT(
    'tables', IFNULL((SELECT JSON_ARRAYAGG(JSON_OBJECT(
      'table_name', t.table_name
    )) FROM tables t), JSON_ARRAY()),
    'columns', IFNULL((SELECT JSON_ARRAYAGG(JSON_OBJECT(
      'table_name', c.table_name,
      'column_name', c.column_name,
      'data_type', c.data_type,
      'ordinal_position', c.ordinal_position
    )) FROM columns c), JSON_ARRAY()),
    'foreignKeys', IFNULL((SELECT JSON_ARRAYAGG(JSON_OBJECT(
      'source_table', fk.source_table,
      'source_column', fk.source_column,
      'target_table', fk.target_table,
      'target_column', fk.target_column
    )) FROM foreign_keys fk), JSON_ARRAY())
  ) as metadata
`

// mysqlDialect MySQL元数据读取，JSON_ARRAYAGG不保证顺序，排序在build中完成
type mysqlDialect struct{}

func (my *mysqlDialect) readMeta(ctx context.Context, db *gorm.DB) (*dbMeta, error) {
	return queryMeta(ctx, db, mysqlMetaSQL)
}
