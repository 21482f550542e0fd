// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package albums

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/danielhkuo/daily-gallery/apperr"
	"github.com/danielhkuo/daily-gallery/auth"
	"github.com/danielhkuo/daily-gallery/db"
	"github.com/danielhkuo/daily-gallery/models"
)

const imageColumns = `id, file_name, stored_name, url, title, description, album_date, album_number, position, created_at`

// Store is the album catalog: albums, images and their schedule.
type Store struct {
	runner *db.Runner
	db     *sql.DB
	now    func() time.Time
}

func NewStore(runner *db.Runner) *Store {
	return &Store{runner: runner, db: runner.DB(), now: time.Now}
}

// NewImage is the metadata persisted for an upload.
type NewImage struct {
	FileName    string
	StoredName  string
	URL         string
	Title       string
	Description string
	Album       *models.AlbumKey
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TodayDate is the current album date in server local time.
func (s *Store) TodayDate() string {
	return s.now().Format(models.DateLayout)
}

// AlbumExists reports whether an album row exists for key.
func (s *Store) AlbumExists(ctx context.Context, key models.AlbumKey) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM album WHERE album_date = $1 AND album_number = $2
	`, key.Date, key.Number).Scan(&n)
	if err != nil {
		return false, db.MapError("albums.exists", err)
	}
	return n > 0, nil
}

// Get returns an album and its active images in position order.
func (s *Store) Get(ctx context.Context, key models.AlbumKey) (models.AlbumWithImages, error) {
	const op = "albums.get"

	if err := key.Validate(); err != nil {
		return models.AlbumWithImages{}, apperr.InvalidInput(op, "%v", err)
	}

	album, err := getAlbum(ctx, s.db, key)
	if err != nil {
		return models.AlbumWithImages{}, err
	}

	images, err := queryImages(ctx, s.db, `
		SELECT `+imageColumns+` FROM image
		WHERE album_date = $1 AND album_number = $2 AND active = TRUE
		ORDER BY position
	`, key.Date, key.Number)
	if err != nil {
		return models.AlbumWithImages{}, db.MapError(op, err)
	}

	return withImages(album, images), nil
}

// ListByDate returns every album scheduled on date, in number order.
func (s *Store) ListByDate(ctx context.Context, date string) ([]models.AlbumWithImages, error) {
	const op = "albums.list_by_date"

	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return nil, apperr.InvalidInput(op, "date must be YYYY-MM-DD, got %q", date)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT album_date, album_number, title, created_at
		FROM album
		WHERE album_date = $1
		ORDER BY album_number
	`, date)
	if err != nil {
		return nil, db.MapError(op, err)
	}
	var list []models.Album
	for rows.Next() {
		a, err := scanAlbum(rows)
		if err != nil {
			rows.Close()
			return nil, db.MapError(op, err)
		}
		list = append(list, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, db.MapError(op, err)
	}

	images, err := queryImages(ctx, s.db, `
		SELECT `+imageColumns+` FROM image
		WHERE album_date = $1 AND active = TRUE
		ORDER BY album_number, position
	`, date)
	if err != nil {
		return nil, db.MapError(op, err)
	}

	byNumber := make(map[int][]models.Image)
	for _, img := range images {
		byNumber[img.Album.Number] = append(byNumber[img.Album.Number], img)
	}

	result := make([]models.AlbumWithImages, 0, len(list))
	for _, a := range list {
		result = append(result, withImages(a, byNumber[a.Key.Number]))
	}
	return result, nil
}

// Today returns the albums scheduled for the current date.
func (s *Store) Today(ctx context.Context) ([]models.AlbumWithImages, error) {
	return s.ListByDate(ctx, s.TodayDate())
}

// CreateImage stores upload metadata and, when img.Album is set, schedules
// the image at the next free position of that album.
func (s *Store) CreateImage(ctx context.Context, img NewImage) (models.Image, error) {
	const op = "albums.create_image"

	img.Title = strings.TrimSpace(img.Title)
	if img.Title == "" {
		return models.Image{}, apperr.InvalidInput(op, "title is required")
	}
	if img.StoredName == "" || img.URL == "" {
		return models.Image{}, apperr.InvalidInput(op, "stored file is required")
	}
	if img.Album != nil {
		if err := img.Album.Validate(); err != nil {
			return models.Image{}, apperr.InvalidInput(op, "%v", err)
		}
	}

	imageID, err := auth.GenerateID(12)
	if err != nil {
		return models.Image{}, apperr.Wrap(apperr.CodeInternal, op, err)
	}

	var created models.Image
	err = s.runner.InTx(ctx, op, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO image (id, file_name, stored_name, url, title, description, active, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7)
		`, imageID, img.FileName, img.StoredName, img.URL, img.Title, img.Description, db.Now())
		if err != nil {
			return err
		}

		if img.Album != nil {
			if err := scheduleInTx(ctx, tx, imageID, *img.Album); err != nil {
				return err
			}
		}

		created, err = getImage(ctx, tx, imageID)
		return err
	})
	if err != nil {
		return models.Image{}, err
	}

	slog.Info("image created", "image_id", imageID, "title", img.Title, "scheduled", img.Album != nil)
	return created, nil
}

// ScheduleImage assigns an image to the next free position of an album,
// creating the album row if needed. Scheduling an image into the album it
// already belongs to is a no-op.
func (s *Store) ScheduleImage(ctx context.Context, imageID string, key models.AlbumKey) (models.Image, error) {
	const op = "albums.schedule_image"

	if strings.TrimSpace(imageID) == "" {
		return models.Image{}, apperr.InvalidInput(op, "image_id is required")
	}
	if err := key.Validate(); err != nil {
		return models.Image{}, apperr.InvalidInput(op, "%v", err)
	}

	var scheduled models.Image
	err := s.runner.InTx(ctx, op, func(ctx context.Context, tx *sql.Tx) error {
		current, err := getImage(ctx, tx, imageID)
		if err != nil {
			return err
		}
		if current.Album != nil && *current.Album == key {
			scheduled = current
			return nil
		}

		if err := scheduleInTx(ctx, tx, imageID, key); err != nil {
			return err
		}
		scheduled, err = getImage(ctx, tx, imageID)
		return err
	})
	if err != nil {
		return models.Image{}, err
	}

	slog.Info("image scheduled", "image_id", imageID, "album", key.String(), "position", *scheduled.Position)
	return scheduled, nil
}

func scheduleInTx(ctx context.Context, tx *sql.Tx, imageID string, key models.AlbumKey) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO album (album_date, album_number, title, created_at)
		VALUES ($1, $2, '', $3)
		ON CONFLICT (album_date, album_number) DO NOTHING
	`, key.Date, key.Number, db.Now())
	if err != nil {
		return err
	}

	var position int
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(position), 0) + 1 FROM image
		WHERE album_date = $1 AND album_number = $2
	`, key.Date, key.Number).Scan(&position)
	if err != nil {
		return err
	}

	// A concurrent schedule into the same slot violates the unique
	// (album, position) key and the transaction is retried.
	res, err := tx.ExecContext(ctx, `
		UPDATE image SET album_date = $1, album_number = $2, position = $3
		WHERE id = $4
	`, key.Date, key.Number, position, imageID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("albums.schedule_image", "image %s not found", imageID)
	}
	return nil
}

// MoveAlbum re-schedules an album and its images to another key. Albums
// that already have recorded plays cannot move, because attempts and
// aggregates are keyed by album.
func (s *Store) MoveAlbum(ctx context.Context, from, to models.AlbumKey) error {
	const op = "albums.move"

	if err := from.Validate(); err != nil {
		return apperr.InvalidInput(op, "source: %v", err)
	}
	if err := to.Validate(); err != nil {
		return apperr.InvalidInput(op, "target: %v", err)
	}
	if from == to {
		return apperr.InvalidInput(op, "album is already scheduled at %s", to)
	}

	err := s.runner.InTx(ctx, op, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := getAlbum(ctx, tx, from); err != nil {
			return err
		}

		var n int
		if err := tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM album WHERE album_date = $1 AND album_number = $2
		`, to.Date, to.Number).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return apperr.Conflict(op, "album %s already exists", to)
		}

		if err := tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM attempt WHERE album_date = $1 AND album_number = $2
		`, from.Date, from.Number).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return apperr.InvalidInput(op, "album %s has %d recorded plays and cannot move", from, n)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO album (album_date, album_number, title, created_at)
			SELECT $3, $4, title, created_at FROM album
			WHERE album_date = $1 AND album_number = $2
		`, from.Date, from.Number, to.Date, to.Number); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE image SET album_date = $3, album_number = $4
			WHERE album_date = $1 AND album_number = $2
		`, from.Date, from.Number, to.Date, to.Number); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			DELETE FROM album WHERE album_date = $1 AND album_number = $2
		`, from.Date, from.Number)
		return err
	})
	if err != nil {
		return err
	}

	slog.Info("album moved", "from", from.String(), "to", to.String())
	return nil
}

// ListImages returns all active images, scheduled ones first with the
// newest date at the top.
func (s *Store) ListImages(ctx context.Context) ([]models.Image, error) {
	images, err := queryImages(ctx, s.db, `
		SELECT `+imageColumns+` FROM image
		WHERE active = TRUE
		ORDER BY (album_date IS NULL), album_date DESC, album_number, position, created_at DESC
	`)
	if err != nil {
		return nil, db.MapError("albums.list_images", err)
	}
	return images, nil
}

// ImageOfTheDay returns the first image of today's first album. When
// nothing is scheduled a random active image is returned with fallback
// set. Each call records a row in image_view.
func (s *Store) ImageOfTheDay(ctx context.Context) (img models.Image, fallback bool, err error) {
	const op = "albums.image_of_the_day"
	today := s.TodayDate()

	err = s.runner.InTx(ctx, op, func(ctx context.Context, tx *sql.Tx) error {
		images, err := queryImages(ctx, tx, `
			SELECT `+imageColumns+` FROM image
			WHERE album_date = $1 AND album_number = 1 AND active = TRUE
			ORDER BY position
			LIMIT 1
		`, today)
		if err != nil {
			return err
		}
		fallback = len(images) == 0

		if fallback {
			images, err = queryImages(ctx, tx, `
				SELECT `+imageColumns+` FROM image
				WHERE active = TRUE
				ORDER BY RANDOM()
				LIMIT 1
			`)
			if err != nil {
				return err
			}
			if len(images) == 0 {
				return apperr.NotFound(op, "no images available")
			}
		}
		img = images[0]

		viewID, err := auth.GenerateID(12)
		if err != nil {
			return apperr.Wrap(apperr.CodeInternal, op, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO image_view (id, image_id, shown_on, shown_at)
			VALUES ($1, $2, $3, $4)
		`, viewID, img.ID, today, db.Now())
		return err
	})
	if err != nil {
		return models.Image{}, false, err
	}

	if fallback {
		slog.Info("no image scheduled for today, using random image", "date", today, "image_id", img.ID)
	}
	return img, fallback, nil
}

// Titles returns the distinct titles of active images.
func (s *Store) Titles(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT title FROM image WHERE active = TRUE ORDER BY title
	`)
	if err != nil {
		return nil, db.MapError("albums.titles", err)
	}
	defer rows.Close()

	titles := []string{}
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, db.MapError("albums.titles", err)
		}
		titles = append(titles, title)
	}
	if err := rows.Err(); err != nil {
		return nil, db.MapError("albums.titles", err)
	}
	return titles, nil
}

// History groups albums by date, newest first.
func (s *Store) History(ctx context.Context) ([]models.HistoryEntry, error) {
	const op = "albums.history"

	rows, err := s.db.QueryContext(ctx, `
		SELECT a.album_date, a.album_number, a.title, i.title
		FROM album a
		LEFT JOIN image i
			ON i.album_date = a.album_date AND i.album_number = a.album_number AND i.active = TRUE
		ORDER BY a.album_date DESC, a.album_number, i.position
	`)
	if err != nil {
		return nil, db.MapError(op, err)
	}
	defer rows.Close()

	entries := []models.HistoryEntry{}
	var (
		current    *models.HistoryEntry
		lastNumber int
	)
	for rows.Next() {
		var (
			date       string
			number     int
			albumTitle string
			imageTitle sql.NullString
		)
		if err := rows.Scan(&date, &number, &albumTitle, &imageTitle); err != nil {
			return nil, db.MapError(op, err)
		}

		if current == nil || current.AlbumDate != date {
			entries = append(entries, models.HistoryEntry{AlbumDate: date})
			current = &entries[len(entries)-1]
			lastNumber = 0
		}
		if number != lastNumber {
			current.Albums++
			lastNumber = number
			if current.FirstTitle == "" && albumTitle != "" {
				current.FirstTitle = albumTitle
			}
		}
		if imageTitle.Valid {
			current.ImageCount++
			if current.FirstTitle == "" {
				current.FirstTitle = imageTitle.String
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, db.MapError(op, err)
	}

	for i := range entries {
		entries[i].Completed = entries[i].ImageCount >= models.CompleteAlbumSize
	}
	return entries, nil
}

func getAlbum(ctx context.Context, q queryer, key models.AlbumKey) (models.Album, error) {
	row := q.QueryRowContext(ctx, `
		SELECT album_date, album_number, title, created_at
		FROM album
		WHERE album_date = $1 AND album_number = $2
	`, key.Date, key.Number)

	album, err := scanAlbum(row)
	if err == sql.ErrNoRows {
		return models.Album{}, apperr.NotFound("albums.get", "album %s not found", key)
	}
	if err != nil {
		return models.Album{}, db.MapError("albums.get", err)
	}
	return album, nil
}

func getImage(ctx context.Context, q queryer, imageID string) (models.Image, error) {
	images, err := queryImages(ctx, q, `SELECT `+imageColumns+` FROM image WHERE id = $1`, imageID)
	if err != nil {
		return models.Image{}, err
	}
	if len(images) == 0 {
		return models.Image{}, apperr.NotFound("albums.get_image", "image %s not found", imageID)
	}
	return images[0], nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAlbum(row scanner) (models.Album, error) {
	var (
		a         models.Album
		createdAt db.Time
	)
	if err := row.Scan(&a.Key.Date, &a.Key.Number, &a.Title, &createdAt); err != nil {
		return models.Album{}, err
	}
	a.CreatedAt = createdAt.Time
	return a, nil
}

func queryImages(ctx context.Context, q queryer, query string, args ...any) ([]models.Image, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := []models.Image{}
	for rows.Next() {
		var (
			img       models.Image
			date      sql.NullString
			number    sql.NullInt64
			position  sql.NullInt64
			createdAt db.Time
		)
		if err := rows.Scan(&img.ID, &img.FileName, &img.StoredName, &img.URL, &img.Title,
			&img.Description, &date, &number, &position, &createdAt); err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		if date.Valid && number.Valid {
			img.Album = &models.AlbumKey{Date: date.String, Number: int(number.Int64)}
		}
		if position.Valid {
			p := int(position.Int64)
			img.Position = &p
		}
		img.CreatedAt = createdAt.Time
		images = append(images, img)
	}
	return images, rows.Err()
}

func withImages(album models.Album, images []models.Image) models.AlbumWithImages {
	if images == nil {
		images = []models.Image{}
	}
	result := models.AlbumWithImages{
		Album:  album,
		Images: images,
		Total:  len(images),
	}
	if len(images) > 0 {
		result.FinalTitle = images[len(images)-1].Title
	}
	return result
}
