package book

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // registers the $n placeholder dialect
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookshelf/internal/genre"
)

const (
	dialectPostgres = "postgres"

	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"

	constraintGenreFK    = "book_genres_genre_id_fkey"
	constraintTitleCheck = "books_title_not_blank"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// selectBooks loads books with their associations aggregated into arrays, so a
// book and its genre set come back in one row.
func selectBooks() *goqu.SelectDataset {
	return goqu.Dialect(dialectPostgres).
		From(goqu.T("books").As("b")).
		Select(
			goqu.I("b.id"),
			goqu.I("b.owner_id"),
			goqu.I("b.title"),
			goqu.I("b.author"),
			goqu.I("b.created_at"),
			goqu.I("b.updated_at"),
			goqu.L(`COALESCE(array_agg(g.id ORDER BY g.id) FILTER (WHERE g.id IS NOT NULL), '{}')`).As("genre_ids"),
			goqu.L(`COALESCE(array_agg(g.name ORDER BY g.id) FILTER (WHERE g.id IS NOT NULL), '{}')`).As("genre_names"),
		).
		LeftJoin(goqu.T("book_genres").As("bg"), goqu.On(goqu.I("bg.book_id").Eq(goqu.I("b.id")))).
		LeftJoin(goqu.T("genres").As("g"), goqu.On(goqu.I("g.id").Eq(goqu.I("bg.genre_id")))).
		GroupBy(goqu.I("b.id"))
}

func scanBook(row pgx.Row) (Book, error) {
	var b Book
	var names []string
	if err := row.Scan(&b.ID, &b.OwnerID, &b.Title, &b.Author, &b.CreatedAt, &b.UpdatedAt, &b.GenreIDs, &names); err != nil {
		return Book{}, err
	}
	b.Genres = make([]genre.Genre, len(b.GenreIDs))
	for i, id := range b.GenreIDs {
		b.Genres[i] = genre.Genre{ID: id, Name: names[i]}
	}
	return b, nil
}

func (r *PostgresRepo) FindByID(ctx context.Context, id int64) (Book, error) {
	query, args, err := selectBooks().
		Where(goqu.I("b.id").Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return Book{}, fmt.Errorf("%w: build find query: %w", ErrStorage, err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(r.db.QueryRow(timeoutCtx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, classify("find book", err)
	}
	return b, nil
}

func (r *PostgresRepo) FindAllByOwner(ctx context.Context, ownerID string) ([]Book, error) {
	query, args, err := selectBooks().
		Where(goqu.I("b.owner_id").Eq(ownerID)).
		Order(goqu.I("b.title").Asc(), goqu.I("b.id").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("%w: build list query: %w", ErrStorage, err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, args...)
	if err != nil {
		return nil, classify("list books", err)
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, classify("scan book", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list books", err)
	}
	return out, nil
}

func (r *PostgresRepo) Insert(ctx context.Context, b *Book) (int64, error) {
	if strings.TrimSpace(b.Title) == "" {
		return 0, &ValidationError{Fields: []FieldError{{Field: "title", Message: "title is required"}}}
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tx, err := r.db.Begin(timeoutCtx)
	if err != nil {
		return 0, classify("begin insert", err)
	}
	defer tx.Rollback(timeoutCtx)

	const insertSQL = `
		INSERT INTO books (owner_id, title, author, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(timeoutCtx, insertSQL, b.OwnerID, b.Title, b.Author).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return 0, classify("insert book", err)
	}

	if err := insertAssociations(timeoutCtx, tx, b.ID, b.GenreIDs); err != nil {
		return 0, err
	}

	if err := tx.Commit(timeoutCtx); err != nil {
		return 0, classify("commit insert", err)
	}
	return b.ID, nil
}

// Replace overwrites title, author and the association set. The book row is
// locked first so concurrent writers serialize on it; owner_id is never written.
func (r *PostgresRepo) Replace(ctx context.Context, b *Book) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tx, err := r.db.Begin(timeoutCtx)
	if err != nil {
		return classify("begin replace", err)
	}
	defer tx.Rollback(timeoutCtx)

	var locked int64
	if err := tx.QueryRow(timeoutCtx, `SELECT id FROM books WHERE id = $1 FOR UPDATE`, b.ID).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return classify("lock book", err)
	}

	const updateSQL = `
		UPDATE books SET title = $2, author = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	if err := tx.QueryRow(timeoutCtx, updateSQL, b.ID, b.Title, b.Author).Scan(&b.UpdatedAt); err != nil {
		return classify("update book", err)
	}

	if _, err := tx.Exec(timeoutCtx, `DELETE FROM book_genres WHERE book_id = $1`, b.ID); err != nil {
		return classify("clear genres", err)
	}
	if err := insertAssociations(timeoutCtx, tx, b.ID, b.GenreIDs); err != nil {
		return err
	}

	if err := tx.Commit(timeoutCtx); err != nil {
		return classify("commit replace", err)
	}
	return nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id int64) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tx, err := r.db.Begin(timeoutCtx)
	if err != nil {
		return classify("begin delete", err)
	}
	defer tx.Rollback(timeoutCtx)

	// The FK cascades too; clearing explicitly keeps the contract independent of the schema.
	if _, err := tx.Exec(timeoutCtx, `DELETE FROM book_genres WHERE book_id = $1`, id); err != nil {
		return classify("clear genres", err)
	}
	tag, err := tx.Exec(timeoutCtx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return classify("delete book", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(timeoutCtx); err != nil {
		return classify("commit delete", err)
	}
	return nil
}

func insertAssociations(ctx context.Context, tx pgx.Tx, bookID int64, genreIDs []int64) error {
	if len(genreIDs) == 0 {
		return nil
	}
	query, args, err := associationInsert(bookID, genreIDs).ToSQL()
	if err != nil {
		return fmt.Errorf("%w: build association insert: %w", ErrStorage, err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return classify("insert genres", err)
	}
	return nil
}

func associationInsert(bookID int64, genreIDs []int64) *goqu.InsertDataset {
	vals := make([][]any, 0, len(genreIDs))
	for _, id := range genreIDs {
		vals = append(vals, []any{bookID, id})
	}
	return goqu.Dialect(dialectPostgres).
		Insert("book_genres").
		Cols("book_id", "genre_id").
		Vals(vals...).
		OnConflict(goqu.DoNothing()).
		Prepared(true)
}

// classify maps Postgres failures onto the package's error kinds.
func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgForeignKeyViolation && pgErr.ConstraintName == constraintGenreFK:
			return fmt.Errorf("%s: %w", op, &InvalidGenreError{})
		case pgErr.Code == pgCheckViolation && pgErr.ConstraintName == constraintTitleCheck:
			return fmt.Errorf("%s: %w", op, &ValidationError{Fields: []FieldError{{Field: "title", Message: "title is required"}}})
		}
	}
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
