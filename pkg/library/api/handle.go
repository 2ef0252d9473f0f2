package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/librarium/librarium/pkg/errors"
	"github.com/librarium/librarium/pkg/identity"
	"github.com/librarium/librarium/pkg/library"
)

type Handle struct {
	libraryService *library.LibraryService
	identityStore  identity.Store
}

func NewHandle(libraryService *library.LibraryService, identityStore identity.Store) Handle {
	return Handle{
		libraryService: libraryService,
		identityStore:  identityStore,
	}
}

// Routes mounts the catalog CRUD surface behind bearer authentication
func (h Handle) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(identity.RequireAuth(h.identityStore))

	r.Route("/libraries", func(r chi.Router) {
		r.Get("/", h.ListLibraries)
		r.Post("/", h.CreateLibrary)
		r.Route("/{libraryID}", func(r chi.Router) {
			r.Get("/", h.GetLibrary)
			r.Put("/", h.UpdateLibrary)
			r.Delete("/", h.DeleteLibrary)
			r.Get("/books", h.ListBooks)
			r.Post("/books", h.CreateBook)
		})
	})
	r.Route("/books/{bookID}", func(r chi.Router) {
		r.Get("/", h.GetBook)
		r.Put("/", h.UpdateBook)
		r.Delete("/", h.DeleteBook)
		r.Put("/flag", h.FlagBook)
	})
	return r
}

type libraryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     uuid.UUID `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type bookResponse struct {
	ID        uuid.UUID `json:"id"`
	LibraryID uuid.UUID `json:"libraryId"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	ISBN      string    `json:"isbn"`
	Status    string    `json:"status"`
	Flagged   bool      `json:"flagged"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toLibraryResponse(l library.Library) libraryResponse {
	return libraryResponse{
		ID:          l.ID,
		Name:        l.Name,
		Description: l.Description,
		OwnerID:     l.OwnerID,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

func toBookResponse(b library.Book) bookResponse {
	return bookResponse{
		ID:        b.ID,
		LibraryID: b.LibraryID,
		Title:     b.Title,
		Author:    b.Author,
		ISBN:      b.ISBN,
		Status:    string(b.Status),
		Flagged:   b.Flagged,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

type createLibraryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updateLibraryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type createBookRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	ISBN   string `json:"isbn"`
}

type updateBookRequest struct {
	Title  *string `json:"title"`
	Author *string `json:"author"`
	ISBN   *string `json:"isbn"`
	Status *string `json:"status"`
}

type flagBookRequest struct {
	Flagged bool `json:"flagged"`
}

// ListLibraries returns all libraries visible to the caller
// (GET /libraries)
func (h Handle) ListLibraries(w http.ResponseWriter, r *http.Request) {
	callerID, ok := identity.CallerID(r.Context())
	if !ok {
		renderError(w, r, errors.Unauthenticated("missing caller identity"))
		return
	}

	libs, err := h.libraryService.ListLibraries(r.Context(), callerID)
	if err != nil {
		renderError(w, r, err)
		return
	}

	out := make([]libraryResponse, 0, len(libs))
	for _, l := range libs {
		out = append(out, toLibraryResponse(l))
	}
	render.JSON(w, r, out)
}

// CreateLibrary creates a library owned by the caller
// (POST /libraries)
func (h Handle) CreateLibrary(w http.ResponseWriter, r *http.Request) {
	callerID, ok := identity.CallerID(r.Context())
	if !ok {
		renderError(w, r, errors.Unauthenticated("missing caller identity"))
		return
	}

	var req createLibraryRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, errors.InvalidInput("body", "invalid json"))
		return
	}

	lib, err := h.libraryService.CreateLibrary(r.Context(), callerID, req.Name, req.Description)
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toLibraryResponse(lib))
}

// GetLibrary returns one library
// (GET /libraries/{libraryID})
func (h Handle) GetLibrary(w http.ResponseWriter, r *http.Request) {
	callerID, libraryID, ok := h.callerAndID(w, r, "libraryID")
	if !ok {
		return
	}
	lib, err := h.libraryService.GetLibrary(r.Context(), callerID, libraryID)
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, toLibraryResponse(lib))
}

// UpdateLibrary updates name/description
// (PUT /libraries/{libraryID})
func (h Handle) UpdateLibrary(w http.ResponseWriter, r *http.Request) {
	callerID, libraryID, ok := h.callerAndID(w, r, "libraryID")
	if !ok {
		return
	}

	var req updateLibraryRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, errors.InvalidInput("body", "invalid json"))
		return
	}

	lib, err := h.libraryService.UpdateLibrary(r.Context(), callerID, libraryID, library.UpdateLibraryParams{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, toLibraryResponse(lib))
}

// DeleteLibrary removes a library and its books
// (DELETE /libraries/{libraryID})
func (h Handle) DeleteLibrary(w http.ResponseWriter, r *http.Request) {
	callerID, libraryID, ok := h.callerAndID(w, r, "libraryID")
	if !ok {
		return
	}
	if err := h.libraryService.DeleteLibrary(r.Context(), callerID, libraryID); err != nil {
		renderError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// ListBooks returns a library's books
// (GET /libraries/{libraryID}/books)
func (h Handle) ListBooks(w http.ResponseWriter, r *http.Request) {
	callerID, libraryID, ok := h.callerAndID(w, r, "libraryID")
	if !ok {
		return
	}
	books, err := h.libraryService.ListBooks(r.Context(), callerID, libraryID)
	if err != nil {
		renderError(w, r, err)
		return
	}
	out := make([]bookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, toBookResponse(b))
	}
	render.JSON(w, r, out)
}

// CreateBook adds a book to a library
// (POST /libraries/{libraryID}/books)
func (h Handle) CreateBook(w http.ResponseWriter, r *http.Request) {
	callerID, libraryID, ok := h.callerAndID(w, r, "libraryID")
	if !ok {
		return
	}

	var req createBookRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, errors.InvalidInput("body", "invalid json"))
		return
	}

	book, err := h.libraryService.CreateBook(r.Context(), callerID, library.CreateBookParams{
		LibraryID: libraryID,
		Title:     req.Title,
		Author:    req.Author,
		ISBN:      req.ISBN,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toBookResponse(book))
}

// GetBook returns one book
// (GET /books/{bookID})
func (h Handle) GetBook(w http.ResponseWriter, r *http.Request) {
	callerID, bookID, ok := h.callerAndID(w, r, "bookID")
	if !ok {
		return
	}
	book, err := h.libraryService.GetBook(r.Context(), callerID, bookID)
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, toBookResponse(book))
}

// UpdateBook updates a book's fields
// (PUT /books/{bookID})
func (h Handle) UpdateBook(w http.ResponseWriter, r *http.Request) {
	callerID, bookID, ok := h.callerAndID(w, r, "bookID")
	if !ok {
		return
	}

	var req updateBookRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, errors.InvalidInput("body", "invalid json"))
		return
	}

	var status *library.BookStatus
	if req.Status != nil {
		s := library.BookStatus(*req.Status)
		status = &s
	}
	book, err := h.libraryService.UpdateBook(r.Context(), callerID, bookID, library.UpdateBookParams{
		Title:  req.Title,
		Author: req.Author,
		ISBN:   req.ISBN,
		Status: status,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, toBookResponse(book))
}

// FlagBook sets or clears the moderation flag
// (PUT /books/{bookID}/flag)
func (h Handle) FlagBook(w http.ResponseWriter, r *http.Request) {
	callerID, bookID, ok := h.callerAndID(w, r, "bookID")
	if !ok {
		return
	}

	var req flagBookRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, errors.InvalidInput("body", "invalid json"))
		return
	}

	book, err := h.libraryService.FlagBook(r.Context(), callerID, bookID, req.Flagged)
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, toBookResponse(book))
}

// DeleteBook removes one book
// (DELETE /books/{bookID})
func (h Handle) DeleteBook(w http.ResponseWriter, r *http.Request) {
	callerID, bookID, ok := h.callerAndID(w, r, "bookID")
	if !ok {
		return
	}
	if err := h.libraryService.DeleteBook(r.Context(), callerID, bookID); err != nil {
		renderError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// callerAndID resolves the authenticated caller and the uuid path parameter,
// rendering the error itself when either is missing
func (h Handle) callerAndID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, uuid.UUID, bool) {
	callerID, ok := identity.CallerID(r.Context())
	if !ok {
		renderError(w, r, errors.Unauthenticated("missing caller identity"))
		return uuid.Nil, uuid.Nil, false
	}
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		renderError(w, r, errors.InvalidInput(param, "must be a valid uuid"))
		return uuid.Nil, uuid.Nil, false
	}
	return callerID, id, true
}

type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	render.Status(r, errors.MapErrorCodeToHTTPStatus(code))
	render.JSON(w, r, apiError{Error: errors.GetMessage(err), Code: string(code)})
}
