package database

import (
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Yuvraj-cyborg/deduck/pkg/logger"
)

type QuarantineRecord struct {
	ID            int64     `gorm:"primaryKey"`
	BatchID       string    `gorm:"index;not null"`
	QuarantineDir string    `gorm:"uniqueIndex:idx_dir_name;not null"`
	Name          string    `gorm:"uniqueIndex:idx_dir_name;not null"`
	OriginalPath  string    `gorm:"not null"`
	Size          int64     `gorm:"not null"`
	CreatedAt     time.Time `gorm:"not null"`
}

func (QuarantineRecord) TableName() string {
	return "quarantine_entries"
}

// Database 隔离记录，restore 依据它把文件放回原来的位置
type Database struct {
	db *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	logger.Get().Debug().Msgf("初始化隔离记录数据库，路径: %s", dbPath)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		logger.Get().Error().Err(err).Msgf("创建数据库目录失败: %s", filepath.Dir(dbPath))
		return nil, err
	}

	dsn := dbPath + "?_journal_mode=WAL"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		logger.Get().Error().Err(err).Msg("打开数据库连接失败")
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.AutoMigrate(&QuarantineRecord{}); err != nil {
		logger.Get().Error().Err(err).Msg("创建数据库表失败")
		sqlDB.Close()
		return nil, err
	}

	return &Database{db: db}, nil
}

// Record 记录一次隔离移动；同一隔离目录下的同名旧记录会被替换
func (d *Database) Record(batchID, quarantineDir, name, originalPath string, size int64) error {
	record := &QuarantineRecord{
		BatchID:       batchID,
		QuarantineDir: quarantineDir,
		Name:          name,
		OriginalPath:  originalPath,
		Size:          size,
		CreatedAt:     time.Now(),
	}

	err := d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quarantine_dir = ? AND name = ?", quarantineDir, name).
			Delete(&QuarantineRecord{}).Error; err != nil {
			return err
		}
		return tx.Create(record).Error
	})
	if err != nil {
		logger.Get().Error().Err(err).Msgf("插入隔离记录失败: %s", originalPath)
		return err
	}

	logger.Get().Trace().Msgf("记录隔离文件: %s -> %s", originalPath, name)
	return nil
}

func (d *Database) Forget(quarantineDir, name string) error {
	if err := d.db.Where("quarantine_dir = ? AND name = ?", quarantineDir, name).
		Delete(&QuarantineRecord{}).Error; err != nil {
		return err
	}
	return nil
}

func (d *Database) ForgetAll(quarantineDir string) error {
	if err := d.db.Where("quarantine_dir = ?", quarantineDir).
		Delete(&QuarantineRecord{}).Error; err != nil {
		return err
	}
	return nil
}

func (d *Database) Entries(quarantineDir string) ([]QuarantineRecord, error) {
	var records []QuarantineRecord
	err := d.db.Where("quarantine_dir = ?", quarantineDir).Order("name").Find(&records).Error
	return records, err
}

// Originals 返回隔离目录中每个文件名对应的原始路径
func (d *Database) Originals(quarantineDir string) (map[string]string, error) {
	records, err := d.Entries(quarantineDir)
	if err != nil {
		logger.Get().Error().Err(err).Msgf("查询隔离记录失败: %s", quarantineDir)
		return nil, err
	}

	originals := make(map[string]string, len(records))
	for _, r := range records {
		originals[r.Name] = r.OriginalPath
	}
	return originals, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		logger.Get().Error().Err(err).Msg("获取数据库连接失败")
		return err
	}
	return sqlDB.Close()
}
