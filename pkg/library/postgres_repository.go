package library

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/librarium/librarium/pkg/errors"
)

// PostgresRepository implements Repository using pgx. Book removal on
// library deletion is the schema's ON DELETE CASCADE, not application code.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL-based library repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const libraryColumns = `id, name, description, owner_id, created_at, updated_at`

func (r *PostgresRepository) CreateLibrary(ctx context.Context, arg CreateLibraryParams) (Library, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO libraries (name, description, owner_id)
		 VALUES ($1, $2, $3)
		 RETURNING `+libraryColumns,
		arg.Name, arg.Description, arg.OwnerID)
	return scanLibrary(row, arg.Name)
}

func (r *PostgresRepository) GetLibrary(ctx context.Context, id uuid.UUID) (Library, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+libraryColumns+` FROM libraries WHERE id = $1`, id)
	return scanLibrary(row, id.String())
}

func (r *PostgresRepository) ListLibraries(ctx context.Context) ([]Library, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+libraryColumns+` FROM libraries ORDER BY created_at, id`)
	if err != nil {
		return nil, errors.Downstream(err, "failed to list libraries")
	}
	return collectLibraries(rows)
}

func (r *PostgresRepository) ListLibrariesByOwner(ctx context.Context, ownerID uuid.UUID) ([]Library, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+libraryColumns+` FROM libraries WHERE owner_id = $1 ORDER BY created_at, id`,
		ownerID)
	if err != nil {
		return nil, errors.Downstream(err, "failed to list libraries by owner")
	}
	return collectLibraries(rows)
}

func (r *PostgresRepository) UpdateLibrary(ctx context.Context, id uuid.UUID, arg UpdateLibraryParams) (Library, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE libraries
		 SET name        = COALESCE($2, name),
		     description = COALESCE($3, description),
		     updated_at  = now()
		 WHERE id = $1
		 RETURNING `+libraryColumns,
		id, arg.Name, arg.Description)
	return scanLibrary(row, id.String())
}

func (r *PostgresRepository) DeleteLibrary(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM libraries WHERE id = $1`, id)
	if err != nil {
		return errors.Downstream(err, "failed to delete library")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("library", id.String())
	}
	return nil
}

const bookColumns = `id, library_id, title, author, isbn, status, flagged, created_at, updated_at`

func (r *PostgresRepository) CreateBook(ctx context.Context, arg CreateBookParams) (Book, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO books (library_id, title, author, isbn)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+bookColumns,
		arg.LibraryID, arg.Title, arg.Author, arg.ISBN)

	book, err := scanBook(row, arg.Title)
	if err != nil {
		var pgErr *pgconn.PgError
		if stderrors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Book{}, errors.NotFound("library", arg.LibraryID.String())
		}
		return Book{}, err
	}
	return book, nil
}

func (r *PostgresRepository) GetBook(ctx context.Context, id uuid.UUID) (Book, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = $1`, id)
	return scanBook(row, id.String())
}

func (r *PostgresRepository) ListBooks(ctx context.Context, libraryID uuid.UUID) ([]Book, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+bookColumns+` FROM books WHERE library_id = $1 ORDER BY created_at, id`,
		libraryID)
	if err != nil {
		return nil, errors.Downstream(err, "failed to list books")
	}
	defer rows.Close()

	var out []Book
	for rows.Next() {
		book, err := scanBook(rows, libraryID.String())
		if err != nil {
			return nil, err
		}
		out = append(out, book)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Downstream(err, "failed to read books")
	}
	return out, nil
}

func (r *PostgresRepository) UpdateBook(ctx context.Context, id uuid.UUID, arg UpdateBookParams) (Book, error) {
	var status *string
	if arg.Status != nil {
		s := string(*arg.Status)
		status = &s
	}
	row := r.pool.QueryRow(ctx,
		`UPDATE books
		 SET title      = COALESCE($2, title),
		     author     = COALESCE($3, author),
		     isbn       = COALESCE($4, isbn),
		     status     = COALESCE($5, status),
		     updated_at = now()
		 WHERE id = $1
		 RETURNING `+bookColumns,
		id, arg.Title, arg.Author, arg.ISBN, status)
	return scanBook(row, id.String())
}

func (r *PostgresRepository) SetBookFlagged(ctx context.Context, id uuid.UUID, flagged bool) (Book, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE books SET flagged = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING `+bookColumns,
		id, flagged)
	return scanBook(row, id.String())
}

func (r *PostgresRepository) DeleteBook(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return errors.Downstream(err, "failed to delete book")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("book", id.String())
	}
	return nil
}

func scanLibrary(row pgx.Row, identifier string) (Library, error) {
	var lib Library
	err := row.Scan(&lib.ID, &lib.Name, &lib.Description, &lib.OwnerID, &lib.CreatedAt, &lib.UpdatedAt)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return Library{}, errors.NotFound("library", identifier)
		}
		return Library{}, errors.Downstream(err, "failed to query library")
	}
	return lib, nil
}

func scanBook(row pgx.Row, identifier string) (Book, error) {
	var book Book
	var status string
	err := row.Scan(&book.ID, &book.LibraryID, &book.Title, &book.Author, &book.ISBN,
		&status, &book.Flagged, &book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return Book{}, errors.NotFound("book", identifier)
		}
		return Book{}, errors.Downstream(err, "failed to query book")
	}
	book.Status = BookStatus(status)
	return book, nil
}

func collectLibraries(rows pgx.Rows) ([]Library, error) {
	defer rows.Close()

	var out []Library
	for rows.Next() {
		lib, err := scanLibrary(rows, "")
		if err != nil {
			return nil, err
		}
		out = append(out, lib)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Downstream(err, "failed to read libraries")
	}
	return out, nil
}
