// Package storage is the persistence collaborator: a gorm-backed postgres
// store for users, channels and messages. Message ids are the table's
// autoincrement key, which gives the per-channel monotonic ordering the
// broadcast pipeline relies on.
package storage

import (
	"context"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dkeye/Huddle/internal/domain"
)

type Store struct {
	db *gorm.DB
}

func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&userRecord{}, &channelRecord{}, &messageRecord{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) InsertMessage(ctx context.Context, ch domain.ChannelID, user domain.UserID, body string) (*domain.Message, error) {
	rec := messageRecord{
		ChannelID: string(ch),
		UserID:    string(user),
		Body:      body,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, err
	}
	username, err := s.LookupUsername(ctx, user)
	if err != nil {
		username = string(user)
	}
	return &domain.Message{
		ID:        rec.ID,
		ChannelID: ch,
		UserID:    user,
		Username:  username,
		Body:      rec.Body,
		CreatedAt: rec.CreatedAt,
	}, nil
}

func (s *Store) LookupUsername(ctx context.Context, user domain.UserID) (string, error) {
	var rec userRecord
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", string(user)).Error; err != nil {
		return "", err
	}
	return rec.Username, nil
}

// RecentMessages returns the newest limit messages of ch, oldest first.
func (s *Store) RecentMessages(ctx context.Context, ch domain.ChannelID, limit int) ([]domain.Message, error) {
	type row struct {
		messageRecord
		Username string
	}
	var rows []row
	err := s.db.WithContext(ctx).
		Table("messages").
		Select("messages.*, users.username").
		Joins("INNER JOIN users ON users.id = messages.user_id").
		Where("messages.channel_id = ?", string(ch)).
		Order("messages.id DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.Message, len(rows))
	for i, r := range rows {
		// reversed so oldest comes first
		out[len(rows)-1-i] = domain.Message{
			ID:        r.ID,
			ChannelID: domain.ChannelID(r.ChannelID),
			UserID:    domain.UserID(r.UserID),
			Username:  r.Username,
			Body:      r.Body,
			CreatedAt: r.CreatedAt,
		}
	}
	return out, nil
}

// EnsureUser upserts the username lookup row. Registration itself lives in
// the external account service; this keeps the join working in dev setups.
func (s *Store) EnsureUser(ctx context.Context, user domain.UserID, username string) error {
	rec := userRecord{ID: string(user), Username: username}
	return s.db.WithContext(ctx).Save(&rec).Error
}

func (s *Store) EnsureChannel(ctx context.Context, ch domain.Channel) error {
	rec := channelRecord{ID: string(ch.ID), Name: ch.Name, Kind: string(ch.Kind)}
	return s.db.WithContext(ctx).Save(&rec).Error
}

func (s *Store) Channels(ctx context.Context) ([]domain.Channel, error) {
	var recs []channelRecord
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Channel, len(recs))
	for i, r := range recs {
		out[i] = domain.Channel{
			ID:   domain.ChannelID(r.ID),
			Name: r.Name,
			Kind: domain.ChannelKind(r.Kind),
		}
	}
	return out, nil
}
