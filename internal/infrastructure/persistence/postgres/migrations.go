package postgres

// Embedded migrations for the bot schema. Versions are append-only.

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_members",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_awards",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
		{
			Version: 3,
			Name:    "create_daily_activity",
			UpSQL:   migration003Up,
			DownSQL: migration003Down,
		},
	}
}

const migration001Up = `
CREATE TABLE IF NOT EXISTS members (
    id            BIGINT PRIMARY KEY,
    handle        TEXT NOT NULL DEFAULT '',
    joined_at     TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    messages      INTEGER NOT NULL DEFAULT 0,
    comments      INTEGER NOT NULL DEFAULT 0,
    books         INTEGER NOT NULL DEFAULT 0,
    rank_messages TEXT NOT NULL DEFAULT '',
    rank_comments TEXT NOT NULL DEFAULT '',
    rank_combined TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_members_handle ON members (lower(handle));
`

const migration001Down = `
DROP TABLE IF EXISTS members;
`

const migration002Up = `
CREATE TABLE IF NOT EXISTS awards (
    member_id  BIGINT NOT NULL REFERENCES members(id) ON DELETE CASCADE,
    code       TEXT NOT NULL,
    awarded_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    PRIMARY KEY (member_id, code)
);
`

const migration002Down = `
DROP TABLE IF EXISTS awards;
`

const migration003Up = `
CREATE TABLE IF NOT EXISTS daily_activity (
    member_id BIGINT NOT NULL REFERENCES members(id) ON DELETE CASCADE,
    day       DATE NOT NULL,
    messages  INTEGER NOT NULL DEFAULT 0,
    comments  INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (member_id, day)
);
`

const migration003Down = `
DROP TABLE IF EXISTS daily_activity;
`
