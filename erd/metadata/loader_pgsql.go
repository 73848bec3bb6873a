package metadata

import (
	"context"

	"gorm.io/gorm"
)

// PostgreSQL元数据查询SQL，返回当前schema下的表、字段、外键信息
const pgsqlMetaSQL = `
WITH 
  tables AS (
    SELECT 
      c.table_name
    FROM 
      information_schema.tables c
    WHERE 
      c.table_schema = current_schema()
      AND c.table_type = 'BASE TABLE'
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
      c.table_schema = current_schema()
  ),
  foreign_keys AS (
    SELECT 
      kcu.table_name as source_table, 
      kcu.column_name as source_column,
      ccu.table_name as target_table,
      ccu.column_name as target_column
    FROM 
      information_schema.table_constraints tc
    JOIN 
      information_schema.key_column_usage kcu 
      ON tc.constraint_name = kcu.constraint_name
      AND tc.table_schema = kcu.table_schema
    JOIN 
      information_schema.constraint_column_usage ccu 
      ON tc.constraint_name = ccu.constraint_name
      AND tc.table_schema = ccu.table_schema
    WHERE 
      tc.constraint_type = 'FOREIGN KEY' 
      AND tc.table_schema = current_schema()
  )
SELECT 
  json_build_object(
    'tables', COALESCE((SELECT json_agg(json_build_object(
      'table_name', t.table_name
    ) ORDER BY t.table_name) FROM tables t), '[]'::json),
    'columns', COALESCE((SELECT json_agg(json_build_object(
      'table_name', c.table_name,
      'column_name', c.column_name,
      'data_type', c.data_type,
      'ordinal_position', c.ordinal_position
    ) ORDER BY c.table_name, c.ordinal_position) FROM columns c), '[]'::json),
    'foreignKeys', COALESCE((SELECT json_agg(json_build_object(
      'source_table', fk.source_table,
      'source_column', fk.source_column,
      'target_table', fk.target_table,
      'target_column', fk.target_column
    ) ORDER BY fk.source_table, fk.source_column) FROM foreign_keys fk), '[]'::json)
  ) as metadata
`

// pgsqlDialect PostgreSQL元数据读取
type pgsqlDialect struct{}

func (my *pgsqlDialect) readMeta(ctx context.Context, db *gorm.DB) (*dbMeta, error) {
	return queryMeta(ctx, db, pgsqlMetaSQL)
}
