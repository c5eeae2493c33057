package storage

import "time"

// Records are private to the package; the rest of the system only ever sees
// domain types through the MessageStore contract.

type userRecord struct {
	ID       string `gorm:"primaryKey;size:36"`
	Username string `gorm:"size:36;not null"`
}

func (userRecord) TableName() string { return "users" }

type channelRecord struct {
	ID   string `gorm:"primaryKey;size:64"`
	Name string `gorm:"size:64;not null"`
	Kind string `gorm:"size:8;not null;default:text"`
}

func (channelRecord) TableName() string { return "channels" }

type messageRecord struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	ChannelID string `gorm:"size:64;index;not null"`
	UserID    string `gorm:"size:36;not null"`
	Body      string `gorm:"type:text;not null"`
	CreatedAt time.Time
}

func (messageRecord) TableName() string { return "messages" }
