package metadata

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/iancoleman/strcase"
	"github.com/ichaly/ideabase/erd/protocol"
	"github.com/ichaly/ideabase/log"
	"github.com/ichaly/ideabase/utl"
	"github.com/jinzhu/inflection"
	"github.com/samber/lo"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	strcase.ConfigureAcronym("ID", "Id")
}

// tableInfo 表信息结构
type tableInfo struct {
	TableName string `json:"table_name" gorm:"column:table_name"`
}

// columnInfo 列信息结构
type columnInfo struct {
	TableName  string `json:"table_name" gorm:"column:table_name"`
	ColumnName string `json:"column_name" gorm:"column:column_name"`
	DataType   string `json:"data_type" gorm:"column:data_type"`
	Position   int    `json:"ordinal_position" gorm:"column:ordinal_position"`
}

// foreignKeyInfo 外键信息结构
type foreignKeyInfo struct {
	SourceTable  string `json:"source_table" gorm:"column:source_table"`
	SourceColumn string `json:"source_column" gorm:"column:source_column"`
	TargetTable  string `json:"target_table" gorm:"column:target_table"`
	TargetColumn string `json:"target_column" gorm:"column:target_column"`
}

// dbMeta 数据库元数据
type dbMeta struct {
	Tables      []tableInfo      `json:"tables"`
	Columns     []columnInfo     `json:"columns"`
	ForeignKeys []foreignKeyInfo `json:"foreignKeys"`
}

// dialect 不同数据库读取元数据的方式
type dialect interface {
	readMeta(ctx context.Context, db *gorm.DB) (*dbMeta, error)
}

// DatabaseLoader 数据库反向加载器
type DatabaseLoader struct {
	dsn   string
	camel bool
	db    *gorm.DB
}

// NewDatabaseLoader 创建数据库加载器，camel为true时表名转换为单数大驼峰模型名
func NewDatabaseLoader(dsn string, camel bool) *DatabaseLoader {
	return &DatabaseLoader{dsn: strings.TrimSpace(dsn), camel: camel}
}

// NewDatabaseLoaderWithDB 使用已有连接创建数据库加载器
func NewDatabaseLoaderWithDB(db *gorm.DB, camel bool) *DatabaseLoader {
	return &DatabaseLoader{db: db, camel: camel, dsn: db.Dialector.Name()}
}

func (my *DatabaseLoader) Name() string  { return LoaderDatabase }
func (my *DatabaseLoader) Priority() int { return 60 }
func (my *DatabaseLoader) Support() bool { return my.dsn != "" || my.db != nil }

// Load 从数据库加载表结构
func (my *DatabaseLoader) Load(ctx context.Context, h Hoster) error {
	db, d, err := my.open()
	if err != nil {
		return protocol.NewLoadError(RedactDSN(my.dsn), err)
	}
	if my.db == nil {
		defer func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}()
	}

	meta, err := d.readMeta(ctx, db.WithContext(ctx))
	if err != nil {
		return protocol.NewLoadError(RedactDSN(my.dsn), err)
	}

	classes := my.build(meta)
	for _, c := range classes {
		if err := h.PutClass(c); err != nil {
			return fmt.Errorf("注入Hoster失败: %w", err)
		}
	}
	log.Info().Str("dialect", db.Dialector.Name()).Int("tables", len(classes)).Msg("数据库模型加载完成")
	return nil
}

// open 根据DSN前缀选择驱动
func (my *DatabaseLoader) open() (*gorm.DB, dialect, error) {
	db := my.db
	if db == nil {
		dialector, err := buildDialector(my.dsn)
		if err != nil {
			return nil, nil, err
		}
		db, err = gorm.Open(dialector, &gorm.Config{
			Logger:                 logger.Default.LogMode(logger.Silent),
			SkipDefaultTransaction: true,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("连接数据库失败: %w", err)
		}
	}

	switch db.Dialector.Name() {
	case "postgres":
		return db, &pgsqlDialect{}, nil
	case "mysql":
		return db, &mysqlDialect{}, nil
	case "sqlite":
		return db, &sqliteDialect{}, nil
	default:
		return nil, nil, fmt.Errorf("不支持的数据库类型: %s", db.Dialector.Name())
	}
}

func buildDialector(dsn string) (gorm.Dialector, error) {
	prefix, ok := utl.StartWithAny(dsn, "postgres://", "postgresql://", "mysql://", "sqlite://", "file:")
	if !ok {
		return nil, fmt.Errorf("无法识别的数据源: %s", RedactDSN(dsn))
	}
	switch prefix {
	case "postgres://", "postgresql://":
		return postgres.Open(dsn), nil
	case "mysql://":
		return mysql.Open(strings.TrimPrefix(dsn, prefix)), nil
	case "sqlite://":
		return sqlite.Open(strings.TrimPrefix(dsn, prefix)), nil
	default:
		return sqlite.Open(dsn), nil
	}
}

// build 组装模型，字段按列顺序排列
func (my *DatabaseLoader) build(meta *dbMeta) []*protocol.Class {
	sort.SliceStable(meta.Tables, func(i, j int) bool { return meta.Tables[i].TableName < meta.Tables[j].TableName })
	sort.SliceStable(meta.Columns, func(i, j int) bool {
		if meta.Columns[i].TableName != meta.Columns[j].TableName {
			return meta.Columns[i].TableName < meta.Columns[j].TableName
		}
		return meta.Columns[i].Position < meta.Columns[j].Position
	})

	index := make(map[string]*protocol.Class, len(meta.Tables))
	classes := make([]*protocol.Class, 0, len(meta.Tables))
	for _, t := range meta.Tables {
		name := my.modelName(t.TableName)
		if IsHidden(name) {
			continue
		}
		c := &protocol.Class{Name: name, Source: t.TableName}
		index[t.TableName] = c
		classes = append(classes, c)
	}
	for _, c := range meta.Columns {
		if class, ok := index[c.TableName]; ok {
			class.AddField(&protocol.Field{Name: c.ColumnName, Type: c.DataType})
		}
	}

	// 同一外键可能因约束重复出现
	fks := lo.UniqBy(meta.ForeignKeys, func(fk foreignKeyInfo) string {
		return fk.SourceTable + "." + fk.SourceColumn
	})
	for _, fk := range fks {
		class, ok := index[fk.SourceTable]
		if !ok {
			continue
		}
		f, ok := class.GetField(fk.SourceColumn)
		if !ok {
			continue
		}
		f.Relation = &protocol.Relation{
			Model:       class.Name,
			TargetModel: my.modelName(fk.TargetTable),
			Field:       fk.SourceColumn,
			TargetField: fk.TargetColumn,
		}
	}
	return classes
}

func (my *DatabaseLoader) modelName(table string) string {
	if !my.camel {
		return table
	}
	return strcase.ToCamel(inflection.Singular(table))
}

// RedactDSN 隐藏数据源中的密码
func RedactDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	if at < 0 {
		return dsn
	}
	head := dsn[:at]
	start := strings.Index(head, "://")
	start = lo.Ternary(start >= 0, start+3, 0)
	if colon := strings.Index(head[start:], ":"); colon >= 0 {
		return head[:start+colon+1] + "***" + dsn[at:]
	}
	return dsn
}

// withTimeout 元数据查询的超时
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, time.Minute)
}
