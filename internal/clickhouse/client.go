package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/Billy-Davies-2/team-draft/internal/models"
)

// Recorder is the analytics sink fed with completed rosters
type Recorder interface {
	RecordRoster(ctx context.Context, roster models.Roster) error
	// TeamScores returns team name -> score for the latest roster of event
	TeamScores(ctx context.Context, event string) (map[string]int, error)
	Ping(ctx context.Context) error
	Close() error
}

// Client provides ClickHouse integration for pick analytics
type Client struct {
	conn driver.Conn
}

// NewClient creates a new ClickHouse client and makes sure the picks table
// exists
func NewClient(addr, database, username, password string) (*Client, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	ctx := context.Background()
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	c := &Client{conn: conn}
	if err := c.EnsureSchema(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// EnsureSchema creates the draft_picks table
func (c *Client) EnsureSchema(ctx context.Context) error {
	err := c.conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS draft_picks (
			event        String,
			mode         LowCardinality(String),
			pick         UInt32,
			player_id    String,
			player_name  String,
			tier         LowCardinality(String),
			team_id      UInt16,
			team_name    String,
			completed_at DateTime64(3, 'UTC')
		)
		ENGINE = MergeTree
		ORDER BY (event, completed_at, pick)
	`)
	if err != nil {
		return fmt.Errorf("failed to create draft_picks table: %w", err)
	}
	return nil
}

// RecordRoster writes one row per pick in a single batch
func (c *Client) RecordRoster(ctx context.Context, roster models.Roster) error {
	batch, err := c.conn.PrepareBatch(ctx, `INSERT INTO draft_picks`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	for _, rec := range roster.History {
		err := batch.Append(
			roster.Event,
			string(roster.Mode),
			uint32(rec.Pick),
			rec.Player.ID,
			rec.Player.Name,
			string(rec.Player.Tier),
			uint16(rec.TeamID),
			rec.TeamName,
			roster.CompletedAt.UTC(),
		)
		if err != nil {
			batch.Abort()
			return fmt.Errorf("failed to append pick %d: %w", rec.Pick, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send picks: %w", err)
	}
	return nil
}

// TeamScores sums tier values per team over the latest draft of event
func (c *Client) TeamScores(ctx context.Context, event string) (map[string]int, error) {
	query := `
		SELECT
			team_name,
			toInt64(sum(multiIf(tier = 'A', 100, tier = 'B', 50, tier = 'C', 10, 0))) AS score
		FROM draft_picks
		WHERE event = $1
		AND completed_at = (SELECT max(completed_at) FROM draft_picks WHERE event = $1)
		GROUP BY team_name
	`

	rows, err := c.conn.Query(ctx, query, event)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := make(map[string]int)
	for rows.Next() {
		var name string
		var score int64
		if err := rows.Scan(&name, &score); err != nil {
			return nil, err
		}
		scores[name] = int(score)
	}
	return scores, rows.Err()
}

// Ping checks the connection
func (c *Client) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

// Close closes the ClickHouse connection
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
