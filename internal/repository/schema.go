package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

func InitializeDBSchema(db *sqlx.DB) error {
	_, err := db.ExecContext(context.Background(), `
CREATE TABLE IF NOT EXISTS shows (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	movie_title VARCHAR(255) NOT NULL,
	start_time TIMESTAMP WITH TIME ZONE NOT NULL,
	seat_price NUMERIC(10, 2) NOT NULL,
	occupied_seats JSONB NOT NULL DEFAULT '{}'::jsonb,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
);`)
	if err != nil {
		return fmt.Errorf("failed to create shows table: %w", err)
	}

	_, err = db.ExecContext(context.Background(), `
CREATE TABLE IF NOT EXISTS bookings (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	user_id VARCHAR(255) NOT NULL,
	user_email VARCHAR(255) NOT NULL,
	show_id UUID NOT NULL REFERENCES shows (id),
	seats TEXT[] NOT NULL,
	amount NUMERIC(10, 2) NOT NULL,
	is_paid BOOLEAN NOT NULL DEFAULT FALSE,
	payment_link TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
);`)
	if err != nil {
		return fmt.Errorf("failed to create bookings table: %w", err)
	}

	_, err = db.ExecContext(context.Background(), `
CREATE TABLE IF NOT EXISTS scheduled_checks (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	booking_id UUID NOT NULL,
	fire_at TIMESTAMP WITH TIME ZONE NOT NULL,
	done BOOLEAN NOT NULL DEFAULT FALSE
);`)
	if err != nil {
		return fmt.Errorf("failed to create scheduled_checks table: %w", err)
	}

	_, err = db.ExecContext(context.Background(), `
CREATE INDEX IF NOT EXISTS scheduled_checks_pending_idx
	ON scheduled_checks (fire_at) WHERE NOT done;`)
	if err != nil {
		return fmt.Errorf("failed to create scheduled_checks index: %w", err)
	}

	return nil
}
