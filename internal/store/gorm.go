package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/DoyleJ11/team-draft-backend/internal/engine"
)

type draftRecord struct {
	Code      string `gorm:"primaryKey;size:32"`
	Snapshot  string `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time
}

func (draftRecord) TableName() string { return "draft_states" }

// Postgres stores snapshots in a single jsonb column keyed by draft code.
type Postgres struct {
	db  *gorm.DB
	log *zap.Logger
}

func OpenPostgres(dsn string, log *zap.Logger) (*Postgres, error) {
	if dsn == "" {
		return nil, errors.New("database url required")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.AutoMigrate(&draftRecord{}); err != nil {
		return nil, fmt.Errorf("migrate draft_states: %w", err)
	}
	return &Postgres{db: db, log: log}, nil
}

func (p *Postgres) Load(ctx context.Context, code string) (engine.State, error) {
	var rec draftRecord
	err := p.db.WithContext(ctx).Where("code = ?", code).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return engine.State{}, ErrNotFound
	}
	if err != nil {
		return engine.State{}, fmt.Errorf("load draft %s: %w", code, err)
	}
	return unmarshalSnapshot([]byte(rec.Snapshot))
}

func (p *Postgres) Save(ctx context.Context, code string, s engine.State) error {
	data, err := marshalSnapshot(s)
	if err != nil {
		return err
	}
	rec := draftRecord{Code: code, Snapshot: string(data), UpdatedAt: time.Now().UTC()}
	err = p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"snapshot", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("save draft %s: %w", code, err)
	}
	p.log.Debug("draft saved", zap.String("code", code), zap.Int("bytes", len(data)))
	return nil
}

func (p *Postgres) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
