package model

import (
	"time"
)

type User struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Email        string    `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

// SessionUser is the denormalized identity kept next to a session.
type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type Source string

const (
	SourceBase Source = "base"
	SourceUser Source = "user"
)

// Movie is a catalog entry of either origin. Unknown descriptive fields are
// empty strings.
type Movie struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Year        int    `json:"year"`
	DurationMin string `json:"durationMin"`
	ReleaseDate string `json:"releaseDate"`
	Rating      string `json:"rating"`
	Director    string `json:"director"`
	Poster      string `json:"poster"`
	Source      Source `json:"source"`
}

// UserMovie is a movie privately owned by one account.
type UserMovie struct {
	ID          uint      `gorm:"primaryKey"`
	OwnerID     string    `gorm:"size:36;not null;uniqueIndex:idx_owner_movie;uniqueIndex:idx_owner_title_year"`
	MovieID     int       `gorm:"not null;uniqueIndex:idx_owner_movie;index"`
	Title       string    `gorm:"size:255;not null"`
	TitleKey    string    `gorm:"size:255;not null;index:idx_title_year;uniqueIndex:idx_owner_title_year"`
	Year        int       `gorm:"not null;index:idx_title_year;uniqueIndex:idx_owner_title_year"`
	DurationMin string    `gorm:"size:16"`
	ReleaseDate string    `gorm:"size:32"`
	Rating      string    `gorm:"size:16"`
	Director    string    `gorm:"size:255"`
	Poster      string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (m UserMovie) ToMovie() Movie {
	return Movie{
		ID:          m.MovieID,
		Title:       m.Title,
		Year:        m.Year,
		DurationMin: m.DurationMin,
		ReleaseDate: m.ReleaseDate,
		Rating:      m.Rating,
		Director:    m.Director,
		Poster:      m.Poster,
		Source:      SourceUser,
	}
}

type ListKind string

const (
	ListFavorites ListKind = "favorites"
	ListWatched   ListKind = "watched"
)

func (k ListKind) Valid() bool {
	return k == ListFavorites || k == ListWatched
}

// MovieListEntry is one member of a user's favorites or watched set.
type MovieListEntry struct {
	OwnerID   string    `gorm:"primaryKey;size:36"`
	Kind      ListKind  `gorm:"primaryKey;type:varchar(16)"`
	MovieID   int       `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time `gorm:"not null;index"`
}

type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Key       string    `gorm:"size:300;not null;index" json:"-"`
	Author    string    `gorm:"size:255;not null" json:"author"`
	Date      string    `gorm:"size:10;not null" json:"date"`
	Text      string    `gorm:"size:800;not null" json:"text"`
	CreatedAt time.Time `gorm:"not null" json:"-"`
}

const MovieIdentityLock = "movie_id"

// IdentityLock rows are locked FOR UPDATE while an id is minted, so writers on
// every server instance take turns.
type IdentityLock struct {
	Name string `gorm:"primaryKey;size:32"`
}

// Tables lists every gorm model, in migration order.
func Tables() []any {
	return []any{&User{}, &UserMovie{}, &MovieListEntry{}, &Comment{}, &IdentityLock{}}
}
