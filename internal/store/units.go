package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/siquant/internal/qerr"
	"github.com/roach88/siquant/internal/unit"
)

// Record is a stored unit definition.
type Record struct {
	ID  string
	Seq int64
	unit.Definition
}

// DefineUnit stores a unit definition. The symbol is canonicalized before it
// is written. Returns false without error when the symbol is already stored.
func (s *Store) DefineUnit(ctx context.Context, def unit.Definition) (bool, error) {
	if err := def.Validate(); err != nil {
		return false, fmt.Errorf("define unit: %w", err)
	}
	symbol, err := unit.Canonicalize(def.Symbol)
	if err != nil {
		return false, fmt.Errorf("define unit: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("define unit: begin: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM units`).Scan(&seq); err != nil {
		return false, fmt.Errorf("define unit: next seq: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO units
		(id, symbol, name, plural, quantity, dimensionality, scale, prefixes, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol) DO NOTHING
	`,
		s.ids.Generate(),
		symbol,
		def.Name,
		def.Plural,
		def.Quantity,
		def.Dimensionality,
		def.Scale,
		def.Prefixes,
		seq,
	)
	if err != nil {
		return false, fmt.Errorf("define unit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("define unit: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("define unit: commit: %w", err)
	}
	return n > 0, nil
}

// ListUnits returns every stored unit in definition order.
// Returns an empty slice (not nil) if nothing is stored.
func (s *Store) ListUnits(ctx context.Context) ([]Record, error) {
	return s.FindUnits(ctx, nil)
}

// GetUnit returns the stored unit with the given symbol, or an UNKNOWN_SYMBOL
// error.
func (s *Store) GetUnit(ctx context.Context, symbol string) (Record, error) {
	key, err := unit.Canonicalize(symbol)
	if err != nil {
		return Record{}, err
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT id, symbol, name, plural, quantity, dimensionality, scale, prefixes, seq
		FROM units
		WHERE symbol = ?
	`, key)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, qerr.Unknown(symbol)
	}
	return rec, err
}

// DeleteUnit removes the stored unit with the given symbol, reporting whether
// a row was deleted. Registries already loaded keep the unit.
func (s *Store) DeleteUnit(ctx context.Context, symbol string) (bool, error) {
	key, err := unit.Canonicalize(symbol)
	if err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM units WHERE symbol = ?`, key)
	if err != nil {
		return false, fmt.Errorf("delete unit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete unit: %w", err)
	}
	return n > 0, nil
}

// LoadInto defines every stored unit in reg and returns how many were
// registered. Stored symbols that reg already defines are skipped with a
// warning.
func (s *Store) LoadInto(ctx context.Context, reg *unit.Registry) (int, error) {
	records, err := s.ListUnits(ctx)
	if err != nil {
		return 0, err
	}

	loaded := 0
	for _, rec := range records {
		if u, ok := reg.ForSymbol(rec.Symbol); ok && u.Defined() {
			slog.Warn("stored unit shadowed by registry", "symbol", rec.Symbol, "id", rec.ID)
			continue
		}
		if _, err := reg.Define(rec.Definition); err != nil {
			return loaded, fmt.Errorf("load unit %q: %w", rec.Symbol, err)
		}
		loaded++
	}
	slog.Debug("loaded stored units", "count", loaded)
	return loaded, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	err := row.Scan(
		&rec.ID,
		&rec.Symbol,
		&rec.Name,
		&rec.Plural,
		&rec.Quantity,
		&rec.Dimensionality,
		&rec.Scale,
		&rec.Prefixes,
		&rec.Seq,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("scan unit: %w", err)
	}
	return rec, nil
}
