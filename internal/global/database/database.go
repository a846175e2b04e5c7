package database

import (
	"fmt"
	"net"
	"time"

	"hackathon-platform/config"
	"hackathon-platform/internal/global/sentry/tracing"
	"hackathon-platform/internal/model"
	"hackathon-platform/tools"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var DB *gorm.DB

// autoMigrateModels 需要自动迁移的模型列表
var autoMigrateModels = []any{
	&model.User{},
	&model.Event{},
	&model.EventJudge{},
	&model.Team{},
	&model.TeamMember{},
	&model.Submission{},
	&model.Evaluation{},
	&model.Comment{},
}

func Init() {
	db, err := Open(config.Get())
	tools.PanicOnErr(err)
	DB = db

	if tracing.IsEnabled() {
		tools.PanicOnErr(DB.Use(tracing.NewGormTracingPlugin()))
	}

	tools.PanicOnErr(Migrate(DB))
}

// Open 按配置的驱动建立连接
func Open(cfg *config.Config) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: true}, // 还是单数表名好
		// 唯一索引冲突统一翻译为 gorm.ErrDuplicatedKey
		TranslateError: true,
	}

	switch cfg.Mode {
	case config.ModeDebug:
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	case config.ModeRelease:
		gormConfig.Logger = logger.Discard
	}

	dialector, err := dialect(cfg.Database)
	if err != nil {
		return nil, err
	}
	return gorm.Open(dialector, gormConfig)
}

// Migrate 执行自动迁移
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(autoMigrateModels...)
}

func dialect(c config.Database) (gorm.Dialector, error) {
	switch c.Driver {
	case "", "mysql":
		dsn := mysqldriver.Config{
			User:                 c.Username,
			Passwd:               c.Password,
			Net:                  "tcp",
			Addr:                 net.JoinHostPort(c.Host, c.Port),
			DBName:               c.DBName,
			Params:               map[string]string{"charset": "utf8mb4"},
			ParseTime:            true,
			Loc:                  time.Local,
			AllowNativePasswords: true,
		}
		return mysql.Open(dsn.FormatDSN()), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			c.Host, c.Port, c.Username, c.Password, c.DBName)
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", c.Driver)
	}
}
