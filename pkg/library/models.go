package library

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Library is a user-owned catalog of books
type Library struct {
	ID          uuid.UUID
	Name        string
	Description string
	OwnerID     uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BookStatus tracks a copy's circulation state
type BookStatus string

const (
	BookAvailable BookStatus = "available"
	BookBorrowed  BookStatus = "borrowed"
	BookLost      BookStatus = "lost"
	BookDamaged   BookStatus = "damaged"
)

// ParseBookStatus validates a status string from the wire
func ParseBookStatus(s string) (BookStatus, bool) {
	switch BookStatus(s) {
	case BookAvailable, BookBorrowed, BookLost, BookDamaged:
		return BookStatus(s), true
	}
	return "", false
}

// Book is a single catalog entry. Flagged marks content hidden by a
// moderator.
type Book struct {
	ID        uuid.UUID
	LibraryID uuid.UUID
	Title     string
	Author    string
	ISBN      string
	Status    BookStatus
	Flagged   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateLibraryParams carries the fields a caller supplies for a new library
type CreateLibraryParams struct {
	Name        string
	Description string
	OwnerID     uuid.UUID
}

// UpdateLibraryParams carries the mutable library fields; nil means keep
type UpdateLibraryParams struct {
	Name        *string
	Description *string
}

// CreateBookParams carries the fields a caller supplies for a new book
type CreateBookParams struct {
	LibraryID uuid.UUID
	Title     string
	Author    string
	ISBN      string
}

// UpdateBookParams carries the mutable book fields; nil means keep
type UpdateBookParams struct {
	Title  *string
	Author *string
	ISBN   *string
	Status *BookStatus
}

// Repository persists libraries and books. DeleteLibrary removes the
// library's books in the same operation.
type Repository interface {
	CreateLibrary(ctx context.Context, arg CreateLibraryParams) (Library, error)
	GetLibrary(ctx context.Context, id uuid.UUID) (Library, error)
	ListLibraries(ctx context.Context) ([]Library, error)
	ListLibrariesByOwner(ctx context.Context, ownerID uuid.UUID) ([]Library, error)
	UpdateLibrary(ctx context.Context, id uuid.UUID, arg UpdateLibraryParams) (Library, error)
	DeleteLibrary(ctx context.Context, id uuid.UUID) error

	CreateBook(ctx context.Context, arg CreateBookParams) (Book, error)
	GetBook(ctx context.Context, id uuid.UUID) (Book, error)
	ListBooks(ctx context.Context, libraryID uuid.UUID) ([]Book, error)
	UpdateBook(ctx context.Context, id uuid.UUID, arg UpdateBookParams) (Book, error)
	SetBookFlagged(ctx context.Context, id uuid.UUID, flagged bool) (Book, error)
	DeleteBook(ctx context.Context, id uuid.UUID) error
}
