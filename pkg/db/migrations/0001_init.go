package migrations

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func init() {
	goose.AddMigrationContext(upInit, downInit)
}

type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ExternalID string    `gorm:"type:text;uniqueIndex;not null"`
	Username   string    `gorm:"type:text;not null"`
	Email      string    `gorm:"type:text;index"`
	AvatarURL  string    `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

type Sticker struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"type:text;not null"`
	URL         string    `gorm:"type:text;uniqueIndex;not null"`
	Description string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	User        User      `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

type Game struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index"`
	ElapsedSeconds *int      `gorm:"type:integer"`
	Score          *int      `gorm:"type:integer;index"`
	CreatedAt      time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	User           User      `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

type StickerFind struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	GameID    uuid.UUID `gorm:"type:uuid;not null;index:idx_finds_game_sticker"`
	StickerID uuid.UUID `gorm:"type:uuid;not null;index:idx_finds_game_sticker"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	Game      Game      `gorm:"foreignKey:GameID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Sticker   Sticker   `gorm:"foreignKey:StickerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

type ScoreboardEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	GameID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	Game      Game      `gorm:"foreignKey:GameID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	User      User      `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func upInit(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: tx, PreferSimpleProtocol: true}), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: false},
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return err
	}

	if err := gormDB.WithContext(ctx).AutoMigrate(
		&User{},
		&Sticker{},
		&Game{},
		&StickerFind{},
		&ScoreboardEntry{},
	); err != nil {
		return err
	}

	m := gormDB.WithContext(ctx).Migrator()
	for _, c := range []struct {
		model any
		name  string
	}{
		{&Sticker{}, "User"},
		{&Game{}, "User"},
		{&StickerFind{}, "Game"},
		{&StickerFind{}, "Sticker"},
		{&ScoreboardEntry{}, "Game"},
		{&ScoreboardEntry{}, "User"},
	} {
		if err := m.CreateConstraint(c.model, c.name); err != nil {
			return err
		}
	}

	return nil
}

func downInit(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: tx, PreferSimpleProtocol: true}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return err
	}

	return gormDB.WithContext(ctx).Migrator().DropTable(
		&ScoreboardEntry{},
		&StickerFind{},
		&Game{},
		&Sticker{},
		&User{},
	)
}
