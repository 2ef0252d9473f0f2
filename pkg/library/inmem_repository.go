package library

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/librarium/librarium/pkg/errors"
)

// InMemoryRepository keeps libraries and books in maps. Used by tests and
// the no-database binary.
type InMemoryRepository struct {
	mu        sync.RWMutex
	libraries map[uuid.UUID]Library
	books     map[uuid.UUID]Book
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		libraries: make(map[uuid.UUID]Library),
		books:     make(map[uuid.UUID]Book),
	}
}

func (r *InMemoryRepository) CreateLibrary(ctx context.Context, arg CreateLibraryParams) (Library, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	lib := Library{
		ID:          uuid.New(),
		Name:        arg.Name,
		Description: arg.Description,
		OwnerID:     arg.OwnerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.libraries[lib.ID] = lib
	return lib, nil
}

func (r *InMemoryRepository) GetLibrary(ctx context.Context, id uuid.UUID) (Library, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lib, ok := r.libraries[id]
	if !ok {
		return Library{}, errors.NotFound("library", id.String())
	}
	return lib, nil
}

func (r *InMemoryRepository) ListLibraries(ctx context.Context) ([]Library, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Library, 0, len(r.libraries))
	for _, lib := range r.libraries {
		out = append(out, lib)
	}
	sortLibraries(out)
	return out, nil
}

func (r *InMemoryRepository) ListLibrariesByOwner(ctx context.Context, ownerID uuid.UUID) ([]Library, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Library
	for _, lib := range r.libraries {
		if lib.OwnerID == ownerID {
			out = append(out, lib)
		}
	}
	sortLibraries(out)
	return out, nil
}

func (r *InMemoryRepository) UpdateLibrary(ctx context.Context, id uuid.UUID, arg UpdateLibraryParams) (Library, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lib, ok := r.libraries[id]
	if !ok {
		return Library{}, errors.NotFound("library", id.String())
	}
	if arg.Name != nil {
		lib.Name = *arg.Name
	}
	if arg.Description != nil {
		lib.Description = *arg.Description
	}
	lib.UpdatedAt = time.Now().UTC()
	r.libraries[id] = lib
	return lib, nil
}

// DeleteLibrary removes the library and every book in it, mirroring the
// ON DELETE CASCADE behavior of the SQL schema.
func (r *InMemoryRepository) DeleteLibrary(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.libraries[id]; !ok {
		return errors.NotFound("library", id.String())
	}
	delete(r.libraries, id)
	for bookID, book := range r.books {
		if book.LibraryID == id {
			delete(r.books, bookID)
		}
	}
	return nil
}

func (r *InMemoryRepository) CreateBook(ctx context.Context, arg CreateBookParams) (Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.libraries[arg.LibraryID]; !ok {
		return Book{}, errors.NotFound("library", arg.LibraryID.String())
	}
	now := time.Now().UTC()
	book := Book{
		ID:        uuid.New(),
		LibraryID: arg.LibraryID,
		Title:     arg.Title,
		Author:    arg.Author,
		ISBN:      arg.ISBN,
		Status:    BookAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.books[book.ID] = book
	return book, nil
}

func (r *InMemoryRepository) GetBook(ctx context.Context, id uuid.UUID) (Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	book, ok := r.books[id]
	if !ok {
		return Book{}, errors.NotFound("book", id.String())
	}
	return book, nil
}

func (r *InMemoryRepository) ListBooks(ctx context.Context, libraryID uuid.UUID) ([]Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Book
	for _, book := range r.books {
		if book.LibraryID == libraryID {
			out = append(out, book)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *InMemoryRepository) UpdateBook(ctx context.Context, id uuid.UUID, arg UpdateBookParams) (Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	book, ok := r.books[id]
	if !ok {
		return Book{}, errors.NotFound("book", id.String())
	}
	if arg.Title != nil {
		book.Title = *arg.Title
	}
	if arg.Author != nil {
		book.Author = *arg.Author
	}
	if arg.ISBN != nil {
		book.ISBN = *arg.ISBN
	}
	if arg.Status != nil {
		book.Status = *arg.Status
	}
	book.UpdatedAt = time.Now().UTC()
	r.books[id] = book
	return book, nil
}

func (r *InMemoryRepository) SetBookFlagged(ctx context.Context, id uuid.UUID, flagged bool) (Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	book, ok := r.books[id]
	if !ok {
		return Book{}, errors.NotFound("book", id.String())
	}
	book.Flagged = flagged
	book.UpdatedAt = time.Now().UTC()
	r.books[id] = book
	return book, nil
}

func (r *InMemoryRepository) DeleteBook(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.books[id]; !ok {
		return errors.NotFound("book", id.String())
	}
	delete(r.books, id)
	return nil
}

func sortLibraries(libs []Library) {
	sort.Slice(libs, func(i, j int) bool {
		if libs[i].CreatedAt.Equal(libs[j].CreatedAt) {
			return libs[i].ID.String() < libs[j].ID.String()
		}
		return libs[i].CreatedAt.Before(libs[j].CreatedAt)
	})
}
