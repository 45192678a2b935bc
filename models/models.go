package models

import (
	"strconv"
	"time"
)

// ID is the primary key type of every table. Ids are auto-incremented by the
// database, so a larger id always means a later insert.
type ID uint64

func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseID decodes the decimal form used in URLs and JSON bodies.
func ParseID(s string) (ID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return ID(v), nil
}

type User struct {
	ID           ID        `gorm:"primaryKey;autoIncrement"`
	Username     string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	DisplayName  string    `gorm:"type:varchar(120);not null"`
	Email        *string   `gorm:"type:varchar(320);uniqueIndex"`
	PasswordHash string    `gorm:"type:varchar(255)"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

// Follow is the directed edge Follower -> Following.
type Follow struct {
	FollowerID  ID        `gorm:"primaryKey;autoIncrement:false"`
	FollowingID ID        `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`

	Follower  User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Following User `gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE"`
}

type Murmur struct {
	ID        ID        `gorm:"primaryKey;autoIncrement;index:idx_murmur_created,priority:2"`
	UserID    ID        `gorm:"not null;index"`
	Content   string    `gorm:"type:varchar(280);not null"`
	CreatedAt time.Time `gorm:"not null;index:idx_murmur_created,priority:1"`
	UpdatedAt time.Time `gorm:"not null"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

type MurmurLike struct {
	UserID    ID        `gorm:"primaryKey;autoIncrement:false"`
	MurmurID  ID        `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Murmur Murmur `gorm:"foreignKey:MurmurID;constraint:OnDelete:CASCADE"`
}

// All lists every model in dependency order, for AutoMigrate.
func All() []any {
	return []any{&User{}, &Follow{}, &Murmur{}, &MurmurLike{}}
}
