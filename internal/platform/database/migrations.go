package database

import (
	"database/sql"
	"fmt"
	"log"

	migrate "github.com/rubenv/sql-migrate"
)

// Migrations is the ordered schema history of the service.
var Migrations = &migrate.MemoryMigrationSource{
	Migrations: []*migrate.Migration{
		{
			Id: "0001_users",
			Up: []string{`
				CREATE TABLE IF NOT EXISTS users (
					id TEXT PRIMARY KEY,
					email TEXT NOT NULL UNIQUE,
					name TEXT NOT NULL DEFAULT '',
					photo TEXT NOT NULL DEFAULT '',
					bio TEXT NOT NULL DEFAULT '',
					address TEXT NOT NULL DEFAULT '',
					role TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				)`,
				`CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at DESC)`,
			},
			Down: []string{`DROP TABLE IF EXISTS users`},
		},
		{
			Id: "0002_contests",
			Up: []string{`
				CREATE TABLE IF NOT EXISTS contests (
					id TEXT PRIMARY KEY,
					slug TEXT NOT NULL DEFAULT '',
					name TEXT NOT NULL,
					image TEXT NOT NULL DEFAULT '',
					description TEXT NOT NULL DEFAULT '',
					price NUMERIC(12, 2) NOT NULL DEFAULT 0,
					prize_money NUMERIC(12, 2) NOT NULL DEFAULT 0,
					task_instruction TEXT NOT NULL DEFAULT '',
					contest_type TEXT NOT NULL DEFAULT '',
					deadline TIMESTAMPTZ NOT NULL,
					creator_email TEXT NOT NULL,
					status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
					participants INTEGER NOT NULL DEFAULT 0,
					winner_name TEXT,
					winner_email TEXT,
					winner_photo TEXT,
					winner_task_info TEXT,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				)`,
				`CREATE INDEX IF NOT EXISTS idx_contests_creator_email ON contests(creator_email)`,
				`CREATE INDEX IF NOT EXISTS idx_contests_status ON contests(status)`,
				`CREATE INDEX IF NOT EXISTS idx_contests_winner_email ON contests(winner_email)`,
				`CREATE TABLE IF NOT EXISTS contest_registrations (
					contest_id TEXT NOT NULL REFERENCES contests(id) ON DELETE CASCADE,
					email TEXT NOT NULL,
					registered_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (contest_id, email)
				)`,
				`CREATE TABLE IF NOT EXISTS contest_submissions (
					id BIGSERIAL PRIMARY KEY,
					contest_id TEXT NOT NULL REFERENCES contests(id) ON DELETE CASCADE,
					name TEXT NOT NULL DEFAULT '',
					email TEXT NOT NULL,
					photo TEXT NOT NULL DEFAULT '',
					task_info TEXT NOT NULL,
					submitted_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				)`,
				// Identical entries collapse into one row; task_info can be long, so hash the content.
				`CREATE UNIQUE INDEX IF NOT EXISTS uq_contest_submissions_entry ON contest_submissions
					(contest_id, email, md5(name || chr(31) || photo || chr(31) || task_info))`,
			},
			Down: []string{
				`DROP TABLE IF EXISTS contest_submissions`,
				`DROP TABLE IF EXISTS contest_registrations`,
				`DROP TABLE IF EXISTS contests`,
			},
		},
		{
			Id: "0003_payments",
			Up: []string{`
				CREATE TABLE IF NOT EXISTS payments (
					id TEXT PRIMARY KEY,
					contest_id TEXT NOT NULL,
					email TEXT NOT NULL,
					amount NUMERIC(12, 2) NOT NULL,
					currency TEXT NOT NULL DEFAULT 'usd',
					session_id TEXT NOT NULL UNIQUE,
					paid_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				)`,
				`CREATE INDEX IF NOT EXISTS idx_payments_email ON payments(email)`,
			},
			Down: []string{`DROP TABLE IF EXISTS payments`},
		},
	},
}

// Migrate applies every pending migration.
func Migrate(db *sql.DB) error {
	n, err := migrate.Exec(db, "postgres", Migrations, migrate.Up)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	if n > 0 {
		log.Printf("Applied %d database migrations", n)
	} else {
		log.Println("No database migrations to apply")
	}
	return nil
}
