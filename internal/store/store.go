package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/AbbyGrylls/impetus9-backend/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS registrations (
    id TEXT PRIMARY KEY,
    event_name TEXT NOT NULL,
    team_name TEXT NOT NULL,
    cap_name TEXT NOT NULL,
    cap_phone TEXT NOT NULL,
    cap_roll TEXT NOT NULL DEFAULT '',
    participant_type TEXT NOT NULL CHECK (participant_type IN ('INTERNAL', 'EXTERNAL')),
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_registrations_event ON registrations(event_name, created_at);

CREATE TABLE IF NOT EXISTS team_members (
    registration_id TEXT NOT NULL REFERENCES registrations(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    roll TEXT NOT NULL DEFAULT '',
    phone TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (registration_id, position)
);

CREATE TABLE IF NOT EXISTS download_locks (
    event_name TEXT PRIMARY KEY,
    vcards_downloaded INTEGER NOT NULL DEFAULT 0,
    first_downloader_name TEXT,
    download_time TIMESTAMP
);
`

// ErrLockNotFound is returned when a download lock row is read before it was
// ever created for the event.
var ErrLockNotFound = errors.New("store: download lock not found")

// Store persists registrations and per-event download locks in SQLite.
// The first-download claim is a single conditional UPDATE, so its atomicity is
// guaranteed by the database rather than by any locking in this package.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and ensures
// the schema exists.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	log.Debug().Str("path", path).Msg("store: database opened")
	return &Store{db: db}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateRegistration stores a registration and its team members in one
// transaction. Member order is preserved via an explicit position column.
func (s *Store) CreateRegistration(ctx context.Context, reg *model.Registration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO registrations (id, event_name, team_name, cap_name, cap_phone, cap_roll, participant_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		reg.ID, reg.EventName, reg.TeamName, reg.CapName, reg.CapPhone, reg.CapRoll, string(reg.ParticipantType), reg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert registration: %w", err)
	}

	for i, m := range reg.Members {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO team_members (registration_id, position, name, roll, phone)
			VALUES (?, ?, ?, ?, ?)`,
			reg.ID, i, m.Name, m.Roll, m.Phone)
		if err != nil {
			return fmt.Errorf("failed to insert team member %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit registration: %w", err)
	}

	log.Debug().
		Str("registration_id", reg.ID).
		Str("event_name", reg.EventName).
		Str("team_name", reg.TeamName).
		Int("members", len(reg.Members)).
		Msg("store: registration created")
	return nil
}

// RegistrationsByEvent returns all registrations for the event, newest first,
// with team members in their original order.
func (s *Store) RegistrationsByEvent(ctx context.Context, eventName string) ([]model.Registration, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_name, team_name, cap_name, cap_phone, cap_roll, participant_type, created_at
		FROM registrations
		WHERE event_name = ?
		ORDER BY created_at DESC, id`,
		eventName)
	if err != nil {
		return nil, fmt.Errorf("failed to query registrations: %w", err)
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		var reg model.Registration
		var pt string
		if err := rows.Scan(&reg.ID, &reg.EventName, &reg.TeamName, &reg.CapName, &reg.CapPhone, &reg.CapRoll, &pt, &reg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan registration: %w", err)
		}
		reg.ParticipantType = model.ParticipantType(pt)
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate registrations: %w", err)
	}

	for i := range regs {
		members, err := s.membersOf(ctx, regs[i].ID)
		if err != nil {
			return nil, err
		}
		regs[i].Members = members
	}

	log.Debug().Str("event_name", eventName).Int("registrations", len(regs)).Msg("store: registrations fetched")
	return regs, nil
}

func (s *Store) membersOf(ctx context.Context, registrationID string) ([]model.TeamMember, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, roll, phone
		FROM team_members
		WHERE registration_id = ?
		ORDER BY position`,
		registrationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query team members: %w", err)
	}
	defer rows.Close()

	var members []model.TeamMember
	for rows.Next() {
		var m model.TeamMember
		if err := rows.Scan(&m.Name, &m.Roll, &m.Phone); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// EnsureLock creates the download lock row for the event if it does not exist
// and returns the current record. A concurrent creation is tolerated: the
// insert is a no-op on conflict and the row is re-read afterwards.
func (s *Store) EnsureLock(ctx context.Context, eventName string) (*model.DownloadLock, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO download_locks (event_name) VALUES (?)
		ON CONFLICT(event_name) DO NOTHING`,
		eventName)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure download lock: %w", err)
	}
	return s.GetLock(ctx, eventName)
}

// GetLock reads the download lock row for the event.
func (s *Store) GetLock(ctx context.Context, eventName string) (*model.DownloadLock, error) {
	lock := &model.DownloadLock{EventName: eventName}
	var downloaded int
	var name sql.NullString
	var at sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT vcards_downloaded, first_downloader_name, download_time
		FROM download_locks
		WHERE event_name = ?`,
		eventName).Scan(&downloaded, &name, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLockNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read download lock: %w", err)
	}
	lock.VCardsDownloaded = downloaded != 0
	if name.Valid {
		lock.FirstDownloaderName = &name.String
	}
	if at.Valid {
		t := at.Time
		lock.DownloadTime = &t
	}
	return lock, nil
}

// TryClaimLock attempts the one-time UNCLAIMED→CLAIMED transition for the event.
// The downloader identity and timestamp are set in the same conditional update
// that checks the record is still unclaimed, so under concurrent callers exactly
// one observes won=true. The lock row must already exist (see EnsureLock).
func (s *Store) TryClaimLock(ctx context.Context, eventName, downloaderName string, at time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE download_locks
		SET vcards_downloaded = 1, first_downloader_name = ?, download_time = ?
		WHERE event_name = ? AND vcards_downloaded = 0`,
		downloaderName, at, eventName)
	if err != nil {
		return false, fmt.Errorf("failed to claim download lock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read claim result: %w", err)
	}
	won := n == 1
	log.Debug().
		Str("event_name", eventName).
		Str("downloader", downloaderName).
		Bool("won", won).
		Msg("store: download lock claim attempted")
	return won, nil
}
