package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/banshee-data/cellcycle/internal/cellcycle/phasetable"
)

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat64(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullDuration(d *phasetable.Duration) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func intFromNull(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func durationFromNull(v sql.NullString) (*phasetable.Duration, error) {
	if !v.Valid {
		return nil, nil
	}
	d, err := phasetable.ParseDuration(v.String)
	if err != nil {
		return nil, fmt.Errorf("parse duration %q: %w", v.String, err)
	}
	return &d, nil
}
