package registry

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"XingHe-API/model"

	_ "github.com/mattn/go-sqlite3"
)

var ErrSessionNotFound = errors.New("session not found")

// Store 会话注册表，频道维度的直播记录落在 SQLite。
// 结束的会话保留为历史，同频道再次开播时复用该行。
type Store struct {
	db *sql.DB
}

func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000", path))
	if err != nil {
		return nil, fmt.Errorf("打开会话库失败: %w", err)
	}
	return db, nil
}

func NewStore(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS live_sessions (
		channel_id  TEXT PRIMARY KEY,
		host_id     TEXT NOT NULL,
		host_name   TEXT NOT NULL DEFAULT '',
		host_avatar TEXT NOT NULL DEFAULT '',
		status      TEXT NOT NULL DEFAULT 'live',
		view_count  INTEGER NOT NULL DEFAULT 0,
		created_at  TIMESTAMP NOT NULL,
		updated_at  TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_live_sessions_status ON live_sessions(status);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("初始化会话表失败: %w", err)
	}
	return nil
}

// CreateSession 主播开播。同频道的历史记录被复用，观看数清零。
func (s *Store) CreateSession(channelID, hostID, hostName, hostAvatar string) error {
	now := time.Now()
	query := `
	INSERT INTO live_sessions (channel_id, host_id, host_name, host_avatar, status, view_count, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, 0, ?, ?)
	ON CONFLICT(channel_id) DO UPDATE SET
		host_id = excluded.host_id,
		host_name = excluded.host_name,
		host_avatar = excluded.host_avatar,
		status = excluded.status,
		view_count = 0,
		updated_at = excluded.updated_at
	`
	if _, err := s.db.Exec(query, channelID, hostID, hostName, hostAvatar, model.StatusLive, now, now); err != nil {
		return fmt.Errorf("创建会话失败: %w", err)
	}
	return nil
}

// EndSession 主播下播，记录保留为历史
func (s *Store) EndSession(channelID string) error {
	query := `UPDATE live_sessions SET status = ?, view_count = 0, updated_at = ? WHERE channel_id = ?`
	res, err := s.db.Exec(query, model.StatusEnded, time.Now(), channelID)
	if err != nil {
		return fmt.Errorf("结束会话失败: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Join 观众进房。计数在存储层原子自增，不做读改写。
func (s *Store) Join(channelID string) (int, error) {
	query := `UPDATE live_sessions SET view_count = view_count + 1, updated_at = ? WHERE channel_id = ? AND status = ?`
	res, err := s.db.Exec(query, time.Now(), channelID, model.StatusLive)
	if err != nil {
		return 0, fmt.Errorf("进房计数失败: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, ErrSessionNotFound
	}
	return s.viewCount(channelID)
}

// Leave 观众离房。计数原子自减，下限为0。
func (s *Store) Leave(channelID string) (int, error) {
	query := `
	UPDATE live_sessions
	SET view_count = CASE WHEN view_count > 0 THEN view_count - 1 ELSE 0 END, updated_at = ?
	WHERE channel_id = ?
	`
	res, err := s.db.Exec(query, time.Now(), channelID)
	if err != nil {
		return 0, fmt.Errorf("离房计数失败: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, ErrSessionNotFound
	}
	return s.viewCount(channelID)
}

func (s *Store) viewCount(channelID string) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT view_count FROM live_sessions WHERE channel_id = ?`, channelID).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrSessionNotFound
		}
		return 0, err
	}
	return count, nil
}

func (s *Store) GetSession(channelID string) (*model.LiveSession, error) {
	query := `
	SELECT channel_id, host_id, host_name, host_avatar, status, view_count, created_at, updated_at
	FROM live_sessions WHERE channel_id = ?
	`
	session := &model.LiveSession{}
	err := s.db.QueryRow(query, channelID).Scan(
		&session.ChannelID, &session.HostID, &session.HostName, &session.HostAvatar,
		&session.Status, &session.ViewCount, &session.CreatedAt, &session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("查询会话失败: %w", err)
	}
	return session, nil
}

// ListLive 正在直播的频道，用于发现页的 LIVE 角标
func (s *Store) ListLive() ([]*model.LiveSession, error) {
	query := `
	SELECT channel_id, host_id, host_name, host_avatar, status, view_count, created_at, updated_at
	FROM live_sessions WHERE status = ? ORDER BY updated_at DESC
	`
	rows, err := s.db.Query(query, model.StatusLive)
	if err != nil {
		return nil, fmt.Errorf("查询直播列表失败: %w", err)
	}
	defer rows.Close()

	var sessions []*model.LiveSession
	for rows.Next() {
		session := &model.LiveSession{}
		if err := rows.Scan(
			&session.ChannelID, &session.HostID, &session.HostName, &session.HostAvatar,
			&session.Status, &session.ViewCount, &session.CreatedAt, &session.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("读取直播列表失败: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}
