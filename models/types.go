package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire and storage format of album dates.
const DateLayout = "2006-01-02"

// Game constants
const (
	// MaxTries is the highest try count recorded for a success.
	MaxTries = 5
	// FailedTries is the synthetic try count stored for a failed play.
	FailedTries = MaxTries + 1
	// CompleteAlbumSize is the image count of a fully built album.
	CompleteAlbumSize = 6
)

// Identity sources
const (
	IdentityClient  = "client"
	IdentitySession = "session"
	IdentityMinted  = "minted"
)

// AlbumKey identifies an album by its scheduled date and sequence number.
type AlbumKey struct {
	Date   string `json:"album_date"`
	Number int    `json:"album_number"`
}

func (k AlbumKey) String() string {
	return fmt.Sprintf("%s#%d", k.Date, k.Number)
}

// Validate checks that the date parses as YYYY-MM-DD and the number is positive.
func (k AlbumKey) Validate() error {
	if k.Date == "" {
		return fmt.Errorf("album_date is required")
	}
	if _, err := time.Parse(DateLayout, k.Date); err != nil {
		return fmt.Errorf("album_date must be YYYY-MM-DD, got %q", k.Date)
	}
	if k.Number < 1 {
		return fmt.Errorf("album_number must be >= 1, got %d", k.Number)
	}
	return nil
}

// ParseAlbumKey builds a key from path segments such as "2025-03-01" and "2".
func ParseAlbumKey(date, number string) (AlbumKey, error) {
	n, err := strconv.Atoi(strings.TrimSpace(number))
	if err != nil {
		return AlbumKey{}, fmt.Errorf("album_number must be an integer, got %q", number)
	}
	key := AlbumKey{Date: strings.TrimSpace(date), Number: n}
	if err := key.Validate(); err != nil {
		return AlbumKey{}, err
	}
	return key, nil
}

// Request types

// SubmitPlayRequest is the inbound play result. UserID is optional; the
// X-User-ID header or the session cookie are used when it is empty.
type SubmitPlayRequest struct {
	UserID      string `json:"user_id"`
	AlbumDate   string `json:"album_date"`
	AlbumNumber int    `json:"album_number"`
	Succeeded   bool   `json:"succeeded"`
	Tries       int    `json:"tries"`
}

type ScheduleImageRequest struct {
	AlbumDate   string `json:"album_date"`
	AlbumNumber int    `json:"album_number"`
}

type MoveAlbumRequest struct {
	AlbumDate   string `json:"album_date"`
	AlbumNumber int    `json:"album_number"`
}

// Response types

type IdentityResponse struct {
	UserID string `json:"user_id"`
	Source string `json:"source"`
}

// PlayResultView is the stored outcome of a user's first play. Tries uses the
// combined encoding: 1..5 for a success, 6 for a failure.
type PlayResultView struct {
	Succeeded     bool      `json:"succeeded"`
	Tries         int       `json:"tries"`
	Phrase        string    `json:"phrase"`
	FirstPlayedAt time.Time `json:"first_played_at"`
	LastPlayedAt  time.Time `json:"last_played_at"`
	LastPlayedAgo string    `json:"last_played_ago"`
}

type UserResultResponse struct {
	HasPlayed   bool            `json:"has_played"`
	PlayCount   int             `json:"play_count"`
	IsFirstPlay bool            `json:"is_first_play"`
	Result      *PlayResultView `json:"result"`
}

type HistogramView struct {
	Try1 int `json:"try_1"`
	Try2 int `json:"try_2"`
	Try3 int `json:"try_3"`
	Try4 int `json:"try_4"`
	Try5 int `json:"try_5"`
}

type AlbumStatsResponse struct {
	TotalPlayers       int           `json:"total_players"`
	Successes          int           `json:"successes"`
	Failures           int           `json:"failures"`
	TotalTries         int           `json:"total_tries"`
	SuccessRatePercent float64       `json:"success_rate_percent"`
	Histogram          HistogramView `json:"histogram"`
	Degraded           bool          `json:"degraded,omitempty"`
}

type SubmitPlayResponse struct {
	UserID      string             `json:"user_id"`
	IsFirstPlay bool               `json:"is_first_play"`
	PlayCount   int                `json:"play_count"`
	Result      UserResultResponse `json:"result"`
	Stats       AlbumStatsResponse `json:"stats"`
}

type AlbumListResponse struct {
	AlbumDate string            `json:"album_date"`
	Albums    []AlbumWithImages `json:"albums"`
	Total     int               `json:"total"`
}

type ImageListResponse struct {
	Images []Image `json:"images"`
	Total  int     `json:"total"`
}

type UploadImageResponse struct {
	ImageID string `json:"image_id"`
	URL     string `json:"url"`
	Message string `json:"message"`
}

type ImageOfTheDayResponse struct {
	Image    Image `json:"image"`
	Fallback bool  `json:"fallback"`
}

type TitlesResponse struct {
	Titles   []string `json:"titles"`
	Fallback bool     `json:"fallback,omitempty"`
}

type HistoryEntry struct {
	AlbumDate  string `json:"album_date"`
	Albums     int    `json:"albums"`
	ImageCount int    `json:"image_count"`
	FirstTitle string `json:"first_title"`
	Completed  bool   `json:"completed"`
}

type HistoryResponse struct {
	Albums []HistoryEntry `json:"albums"`
	Total  int            `json:"total"`
}

// Domain types

type Album struct {
	Key       AlbumKey  `json:"key"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

type Image struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	StoredName  string    `json:"-"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Album       *AlbumKey `json:"album,omitempty"`
	Position    *int      `json:"position,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type AlbumWithImages struct {
	Album      Album   `json:"album"`
	Images     []Image `json:"images"`
	Total      int     `json:"total"`
	FinalTitle string  `json:"final_title,omitempty"`
}

// AttemptRecord is one user's standing on one album. Tries is meaningful
// only when Succeeded is true.
type AttemptRecord struct {
	UserHash      string    `json:"-"`
	Album         AlbumKey  `json:"album"`
	Succeeded     bool      `json:"succeeded"`
	Tries         int       `json:"tries"`
	PlayCount     int       `json:"play_count"`
	FirstPlayedAt time.Time `json:"first_played_at"`
	LastPlayedAt  time.Time `json:"last_played_at"`
}

// EncodedTries returns the combined storage encoding: Tries, or FailedTries
// for a failed play.
func (r AttemptRecord) EncodedTries() int {
	if !r.Succeeded {
		return FailedTries
	}
	return r.Tries
}

type AttemptOutcome struct {
	IsFirstPlay bool `json:"is_first_play"`
	PlayCount   int  `json:"play_count"`
}

// AlbumAggregate is the album-level rollup of first plays.
// Histogram[k-1] counts successes that needed exactly k tries.
type AlbumAggregate struct {
	Album        AlbumKey      `json:"album"`
	TotalPlayers int           `json:"total_players"`
	Successes    int           `json:"successes"`
	Failures     int           `json:"failures"`
	TotalTries   int           `json:"total_tries"`
	Histogram    [MaxTries]int `json:"histogram"`
}

// HistogramSum is the total of all buckets; it equals Successes when consistent.
func (a AlbumAggregate) HistogramSum() int {
	sum := 0
	for _, n := range a.Histogram {
		sum += n
	}
	return sum
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
