package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/guibruno93/lorcana-companion/internal/meta"
	"github.com/guibruno93/lorcana-companion/internal/storage"
)

// ErrDeckNotFound is returned when a corpus deck does not exist.
var ErrDeckNotFound = errors.New("corpus deck not found")

const (
	decksTable = "historical_decks"
	cardsTable = "historical_deck_cards"
)

var deckColumns = []string{"id", "format", "archetype", "event", "event_date", "placement", "source"}

// CorpusFilter narrows List. Zero values match everything.
type CorpusFilter struct {
	Format    string
	Archetype string
	MaxFinish *int
	Limit     uint64
}

// CorpusStats summarizes the stored corpus.
type CorpusStats struct {
	Decks       int            `json:"decks"`
	Cards       int            `json:"cards"`
	ByFormat    map[string]int `json:"by_format"`
	ByArchetype map[string]int `json:"by_archetype"`
	LastImport  time.Time      `json:"last_import"`
}

// CorpusRepository stores historical tournament decks.
type CorpusRepository interface {
	meta.CorpusSource

	// Import inserts or replaces decks by ID in a single transaction.
	Import(ctx context.Context, decks []*meta.HistoricalDeck) (int, error)

	// GetByID retrieves a deck with its cards.
	GetByID(ctx context.Context, id string) (*meta.HistoricalDeck, error)

	// List retrieves decks in import order.
	List(ctx context.Context, filter CorpusFilter) ([]*meta.HistoricalDeck, error)

	// Count returns the number of stored decks.
	Count(ctx context.Context) (int, error)

	// Stats summarizes the corpus.
	Stats(ctx context.Context) (*CorpusStats, error)

	// Delete deletes a deck by its ID.
	Delete(ctx context.Context, id string) error

	// Clear removes every deck.
	Clear(ctx context.Context) error
}

type corpusRepository struct {
	db  *storage.DB
	now func() time.Time
}

// NewCorpusRepository creates a new corpus repository.
func NewCorpusRepository(db *storage.DB) CorpusRepository {
	return &corpusRepository{db: db, now: time.Now}
}

// Import inserts or replaces decks by ID in a single transaction.
func (r *corpusRepository) Import(ctx context.Context, decks []*meta.HistoricalDeck) (int, error) {
	importedAt := r.now().UTC()
	imported := 0

	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		for _, deck := range decks {
			if deck == nil || deck.ID == "" {
				continue
			}
			if err := r.upsertDeck(ctx, tx, deck, importedAt); err != nil {
				return err
			}
			imported++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to import corpus: %w", err)
	}

	return imported, nil
}

func (r *corpusRepository) upsertDeck(ctx context.Context, tx *sql.Tx, deck *meta.HistoricalDeck, importedAt time.Time) error {
	var finish any
	if f := deck.Finish(); f != nil {
		finish = *f
	}

	query, args, err := squirrel.Insert(decksTable).
		Columns(append(deckColumns, "finish", "imported_at")...).
		Values(deck.ID, deck.Format, deck.Archetype, deck.Event, deck.Date, deck.Placement, deck.Source, finish, importedAt).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			format = excluded.format,
			archetype = excluded.archetype,
			event = excluded.event,
			event_date = excluded.event_date,
			placement = excluded.placement,
			source = excluded.source,
			finish = excluded.finish,
			imported_at = excluded.imported_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build deck insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert deck %s: %w", deck.ID, err)
	}

	query, args, err = squirrel.Delete(cardsTable).Where(squirrel.Eq{"deck_id": deck.ID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build card delete: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to clear cards of deck %s: %w", deck.ID, err)
	}

	if len(deck.Cards) == 0 {
		return nil
	}

	insert := squirrel.Insert(cardsTable).Columns("deck_id", "position", "card_id", "name", "quantity")
	rows := 0
	for i, card := range deck.Cards {
		if card.Quantity <= 0 {
			continue
		}
		insert = insert.Values(deck.ID, i, card.CardID, card.Name, card.Quantity)
		rows++
	}
	if rows == 0 {
		return nil
	}

	query, args, err = insert.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build card insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert cards of deck %s: %w", deck.ID, err)
	}
	return nil
}

// GetByID retrieves a deck with its cards.
func (r *corpusRepository) GetByID(ctx context.Context, id string) (*meta.HistoricalDeck, error) {
	decks, err := r.query(ctx, squirrel.Eq{"id": id}, 0)
	if err != nil {
		return nil, err
	}
	if len(decks) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrDeckNotFound, id)
	}
	return decks[0], nil
}

// List retrieves decks in import order.
func (r *corpusRepository) List(ctx context.Context, filter CorpusFilter) ([]*meta.HistoricalDeck, error) {
	where := squirrel.And{}
	if filter.Format != "" {
		where = append(where, squirrel.Expr("format = ? COLLATE NOCASE", filter.Format))
	}
	if filter.Archetype != "" {
		where = append(where, squirrel.Expr("archetype = ? COLLATE NOCASE", filter.Archetype))
	}
	if filter.MaxFinish != nil {
		where = append(where, squirrel.Or{
			squirrel.Eq{"finish": nil},
			squirrel.LtOrEq{"finish": *filter.MaxFinish},
		})
	}
	return r.query(ctx, where, filter.Limit)
}

// query loads the decks matching where, then their cards in one pass.
func (r *corpusRepository) query(ctx context.Context, where squirrel.Sqlizer, limit uint64) ([]*meta.HistoricalDeck, error) {
	decksQuery := squirrel.Select(deckColumns...).From(decksTable).Where(where).OrderBy("seq")
	ids := squirrel.Select("id").From(decksTable).Where(where).OrderBy("seq")
	if limit > 0 {
		decksQuery = decksQuery.Limit(limit)
		ids = ids.Limit(limit)
	}

	query, args, err := decksQuery.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build deck query: %w", err)
	}

	rows, err := r.db.Conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer rows.Close()

	decks := make([]*meta.HistoricalDeck, 0)
	byID := make(map[string]*meta.HistoricalDeck)
	for rows.Next() {
		deck := &meta.HistoricalDeck{Cards: []meta.DeckCard{}}
		if err := rows.Scan(&deck.ID, &deck.Format, &deck.Archetype, &deck.Event, &deck.Date, &deck.Placement, &deck.Source); err != nil {
			return nil, fmt.Errorf("failed to scan deck: %w", err)
		}
		decks = append(decks, deck)
		byID[deck.ID] = deck
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating decks: %w", err)
	}
	if len(decks) == 0 {
		return decks, nil
	}

	subquery, subargs, err := ids.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build deck id query: %w", err)
	}
	query, args, err = squirrel.Select("deck_id", "card_id", "name", "quantity").
		From(cardsTable).
		Where(squirrel.Expr("deck_id IN ("+subquery+")", subargs...)).
		OrderBy("deck_id", "position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build card query: %w", err)
	}

	cardRows, err := r.db.Conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list deck cards: %w", err)
	}
	defer cardRows.Close()

	for cardRows.Next() {
		var deckID string
		var card meta.DeckCard
		if err := cardRows.Scan(&deckID, &card.CardID, &card.Name, &card.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan deck card: %w", err)
		}
		if deck, ok := byID[deckID]; ok {
			deck.Cards = append(deck.Cards, card)
		}
	}
	if err := cardRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deck cards: %w", err)
	}

	return decks, nil
}

// Count returns the number of stored decks.
func (r *corpusRepository) Count(ctx context.Context) (int, error) {
	query, args, err := squirrel.Select("COUNT(*)").From(decksTable).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var count int
	if err := r.db.Conn().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count decks: %w", err)
	}
	return count, nil
}

// Stats summarizes the corpus.
func (r *corpusRepository) Stats(ctx context.Context) (*CorpusStats, error) {
	stats := &CorpusStats{
		ByFormat:    make(map[string]int),
		ByArchetype: make(map[string]int),
	}

	var lastImport sql.NullString
	err := r.db.Conn().QueryRowContext(ctx,
		`SELECT COUNT(*), MAX(imported_at) FROM `+decksTable).Scan(&stats.Decks, &lastImport)
	if err != nil {
		return nil, fmt.Errorf("failed to get corpus totals: %w", err)
	}
	if lastImport.Valid {
		stats.LastImport = parseTimestamp(lastImport.String)
	}

	err = r.db.Conn().QueryRowContext(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM `+cardsTable).Scan(&stats.Cards)
	if err != nil {
		return nil, fmt.Errorf("failed to count corpus cards: %w", err)
	}

	if err := r.countBy(ctx, "format", stats.ByFormat); err != nil {
		return nil, err
	}
	if err := r.countBy(ctx, "archetype", stats.ByArchetype); err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *corpusRepository) countBy(ctx context.Context, column string, into map[string]int) error {
	query, args, err := squirrel.Select(column, "COUNT(*)").From(decksTable).GroupBy(column).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build %s breakdown: %w", column, err)
	}

	rows, err := r.db.Conn().QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to count decks by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("failed to scan %s breakdown: %w", column, err)
		}
		if key == "" {
			key = meta.UnknownArchetype
		}
		into[key] += count
	}
	return rows.Err()
}

// Delete deletes a deck by its ID. Its cards go with it.
func (r *corpusRepository) Delete(ctx context.Context, id string) error {
	query, args, err := squirrel.Delete(decksTable).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete: %w", err)
	}

	result, err := r.db.Conn().ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete deck: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrDeckNotFound, id)
	}
	return nil
}

// Clear removes every deck.
func (r *corpusRepository) Clear(ctx context.Context) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+cardsTable); err != nil {
			return fmt.Errorf("failed to clear deck cards: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+decksTable); err != nil {
			return fmt.Errorf("failed to clear decks: %w", err)
		}
		return nil
	})
}

// Corpus returns every stored deck as a snapshot versioned by the latest import.
func (r *corpusRepository) Corpus(ctx context.Context) (*meta.CorpusSnapshot, error) {
	decks, err := r.List(ctx, CorpusFilter{})
	if err != nil {
		return nil, err
	}

	var lastImport sql.NullString
	err = r.db.Conn().QueryRowContext(ctx, `SELECT MAX(imported_at) FROM `+decksTable).Scan(&lastImport)
	if err != nil {
		return nil, fmt.Errorf("failed to get corpus version: %w", err)
	}

	snap := &meta.CorpusSnapshot{
		Decks:    decks,
		LoadedAt: r.now(),
		Source:   "sqlite:" + r.db.Path(),
	}
	if lastImport.Valid {
		snap.Version = parseTimestamp(lastImport.String)
	}
	return snap, nil
}

// parseTimestamp reads the layouts SQLite drivers use for DATETIME columns.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{
		"2006-01-02 15:04:05.999999999-07:00",
		time.RFC3339Nano,
		"2006-01-02 15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
