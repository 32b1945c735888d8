package relay

import (
	"context"
	"database/sql"
)

type archive struct {
	db *sql.DB
}

// NewArchive — postgres-архив доставок. Таблица:
//
//	CREATE TABLE deliveries (
//	    id         uuid PRIMARY KEY,
//	    direction  text NOT NULL,
//	    user_id    bigint NOT NULL,
//	    role       text NOT NULL DEFAULT '',
//	    kind       text NOT NULL,
//	    text       text NOT NULL DEFAULT '',
//	    created_at timestamptz NOT NULL DEFAULT now()
//	);
func NewArchive(db *sql.DB) Archive {
	return &archive{db: db}
}

func (a *archive) SaveDelivery(ctx context.Context, rec *DeliveryRecord) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO deliveries (id, direction, user_id, role, kind, text)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		rec.ID,
		rec.Direction,
		rec.UserID,
		rec.Role,
		rec.Kind,
		rec.Text,
	)
	return err
}
