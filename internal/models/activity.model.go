package models

import (
	"time"

	"github.com/google/uuid"
)

type ActivityType string

const (
	ActivityReview          ActivityType = "review"
	ActivityWatch           ActivityType = "watch"
	ActivityUnwatch         ActivityType = "unwatch"
	ActivityListAdd         ActivityType = "list_add"
	ActivityListRemove      ActivityType = "list_remove"
	ActivityWatchlistAdd    ActivityType = "watchlist_add"
	ActivityWatchlistRemove ActivityType = "watchlist_remove"
	ActivityLike            ActivityType = "like"
	ActivityUnlike          ActivityType = "unlike"
)

// Activity is an append-only log row. Rows are never updated.
type Activity struct {
	ID        int          `gorm:"type:int;primaryKey;autoIncrement" json:"id"`
	UserID    uuid.UUID    `gorm:"type:uuid;not null;index"          json:"userId"`
	Type      ActivityType `gorm:"type:text;not null;index"          json:"type"`
	RaceID    *int         `gorm:"type:int"                          json:"raceId,omitempty"`
	ListID    *int         `gorm:"type:int"                          json:"listId,omitempty"`
	Rating    *int         `gorm:"type:int"                          json:"rating,omitempty"`
	Review    *string      `gorm:"type:text"                         json:"review,omitempty"`
	CreatedAt time.Time    `gorm:"autoCreateTime"                    json:"createdAt"`
}

func NewRaceActivity(userID uuid.UUID, activityType ActivityType, raceID int) *Activity {
	return &Activity{UserID: userID, Type: activityType, RaceID: &raceID}
}

func NewListActivity(userID uuid.UUID, activityType ActivityType, listID, raceID int) *Activity {
	return &Activity{UserID: userID, Type: activityType, ListID: &listID, RaceID: &raceID}
}

// FeedEntry is one rating event as shown in a feed
type FeedEntry struct {
	ID        int          `json:"id"`
	Type      ActivityType `json:"type"`
	User      UserSummary  `json:"user"`
	Race      RaceSummary  `json:"race"`
	Rating    *int         `json:"rating,omitempty"`
	Review    *string      `json:"review,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}

// FeedRow is the flat projection the feed query scans into
type FeedRow struct {
	ID        int
	UserID    uuid.UUID
	Username  string
	Avatar    *string
	RaceID    int
	RaceName  string
	RaceYear  int
	RaceImage *string
	Rating    int
	Review    *string
	CreatedAt time.Time
}

func (r FeedRow) ToEntry() FeedEntry {
	rating := r.Rating
	return FeedEntry{
		ID:   r.ID,
		Type: ActivityReview,
		User: UserSummary{
			ID:       r.UserID,
			Username: r.Username,
			Avatar:   r.Avatar,
		},
		Race: RaceSummary{
			ID:    r.RaceID,
			Name:  r.RaceName,
			Year:  r.RaceYear,
			Image: r.RaceImage,
		},
		Rating:    &rating,
		Review:    r.Review,
		CreatedAt: r.CreatedAt,
	}
}

func FeedEntriesFromRows(rows []FeedRow) []FeedEntry {
	entries := make([]FeedEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.ToEntry())
	}
	return entries
}
