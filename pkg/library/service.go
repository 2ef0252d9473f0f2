package library

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/librarium/librarium/pkg/authz"
	"github.com/librarium/librarium/pkg/errors"
	"github.com/librarium/librarium/pkg/role"
)

// LibraryService gates every catalog operation through the authorization
// policy. The caller's role is loaded fresh from the registry on each call;
// decisions are never cached across requests.
type LibraryService struct {
	repo        Repository
	roleService *role.RoleService
}

func NewLibraryService(repo Repository, roleService *role.RoleService) *LibraryService {
	return &LibraryService{repo: repo, roleService: roleService}
}

// authorize loads the caller's current role and evaluates the policy
func (s *LibraryService) authorize(ctx context.Context, callerID uuid.UUID, action authz.Action, resourceOwnerID uuid.UUID) error {
	callerRole, err := s.roleService.GetUserRole(ctx, callerID)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeNotFound) {
			return errors.Forbidden("caller has no assigned role")
		}
		return errors.Wrap(err, errors.ErrCodeDownstream, "failed to load caller role")
	}

	decision := authz.Decide(authz.Input{
		CallerID:        callerID,
		CallerRole:      callerRole,
		Action:          action,
		ResourceOwnerID: resourceOwnerID,
	})
	if !decision.Allowed {
		slog.Warn("Catalog operation denied",
			"callerId", callerID, "action", string(action), "reason", decision.Reason)
		return errors.Forbidden(decision.Reason)
	}
	return nil
}

func (s *LibraryService) CreateLibrary(ctx context.Context, callerID uuid.UUID, name, description string) (Library, error) {
	if strings.TrimSpace(name) == "" {
		return Library{}, errors.InvalidInput("name", "must not be empty")
	}
	if err := s.authorize(ctx, callerID, authz.ActionCreateResource, callerID); err != nil {
		return Library{}, err
	}
	return s.repo.CreateLibrary(ctx, CreateLibraryParams{
		Name:        name,
		Description: description,
		OwnerID:     callerID,
	})
}

func (s *LibraryService) GetLibrary(ctx context.Context, callerID, libraryID uuid.UUID) (Library, error) {
	lib, err := s.repo.GetLibrary(ctx, libraryID)
	if err != nil {
		return Library{}, err
	}
	if err := s.authorize(ctx, callerID, authz.ActionReadResource, lib.OwnerID); err != nil {
		return Library{}, err
	}
	return lib, nil
}

func (s *LibraryService) ListLibraries(ctx context.Context, callerID uuid.UUID) ([]Library, error) {
	if err := s.authorize(ctx, callerID, authz.ActionReadResource, callerID); err != nil {
		return nil, err
	}
	return s.repo.ListLibraries(ctx)
}

func (s *LibraryService) ListLibrariesByOwner(ctx context.Context, callerID, ownerID uuid.UUID) ([]Library, error) {
	if err := s.authorize(ctx, callerID, authz.ActionReadResource, ownerID); err != nil {
		return nil, err
	}
	return s.repo.ListLibrariesByOwner(ctx, ownerID)
}

func (s *LibraryService) UpdateLibrary(ctx context.Context, callerID, libraryID uuid.UUID, arg UpdateLibraryParams) (Library, error) {
	if arg.Name != nil && strings.TrimSpace(*arg.Name) == "" {
		return Library{}, errors.InvalidInput("name", "must not be empty")
	}
	lib, err := s.repo.GetLibrary(ctx, libraryID)
	if err != nil {
		return Library{}, err
	}
	if err := s.authorize(ctx, callerID, authz.ActionUpdateResource, lib.OwnerID); err != nil {
		return Library{}, err
	}
	return s.repo.UpdateLibrary(ctx, libraryID, arg)
}

// DeleteLibrary removes the library and, through the repository's cascade,
// every book in it.
func (s *LibraryService) DeleteLibrary(ctx context.Context, callerID, libraryID uuid.UUID) error {
	lib, err := s.repo.GetLibrary(ctx, libraryID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, callerID, authz.ActionDeleteResource, lib.OwnerID); err != nil {
		return err
	}
	if err := s.repo.DeleteLibrary(ctx, libraryID); err != nil {
		return err
	}
	slog.Info("Library deleted", "callerId", callerID, "libraryId", libraryID)
	return nil
}

func (s *LibraryService) CreateBook(ctx context.Context, callerID uuid.UUID, arg CreateBookParams) (Book, error) {
	if strings.TrimSpace(arg.Title) == "" {
		return Book{}, errors.InvalidInput("title", "must not be empty")
	}
	lib, err := s.repo.GetLibrary(ctx, arg.LibraryID)
	if err != nil {
		return Book{}, err
	}
	if err := s.authorize(ctx, callerID, authz.ActionCreateResource, lib.OwnerID); err != nil {
		return Book{}, err
	}
	return s.repo.CreateBook(ctx, arg)
}

func (s *LibraryService) GetBook(ctx context.Context, callerID, bookID uuid.UUID) (Book, error) {
	book, err := s.repo.GetBook(ctx, bookID)
	if err != nil {
		return Book{}, err
	}
	lib, err := s.repo.GetLibrary(ctx, book.LibraryID)
	if err != nil {
		return Book{}, err
	}
	if err := s.authorize(ctx, callerID, authz.ActionReadResource, lib.OwnerID); err != nil {
		return Book{}, err
	}
	return book, nil
}

func (s *LibraryService) ListBooks(ctx context.Context, callerID, libraryID uuid.UUID) ([]Book, error) {
	lib, err := s.repo.GetLibrary(ctx, libraryID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, callerID, authz.ActionReadResource, lib.OwnerID); err != nil {
		return nil, err
	}
	return s.repo.ListBooks(ctx, libraryID)
}

func (s *LibraryService) UpdateBook(ctx context.Context, callerID, bookID uuid.UUID, arg UpdateBookParams) (Book, error) {
	if arg.Status != nil {
		if _, ok := ParseBookStatus(string(*arg.Status)); !ok {
			return Book{}, errors.InvalidInput("status", "must be one of available, borrowed, lost, damaged")
		}
	}
	book, err := s.repo.GetBook(ctx, bookID)
	if err != nil {
		return Book{}, err
	}
	lib, err := s.repo.GetLibrary(ctx, book.LibraryID)
	if err != nil {
		return Book{}, err
	}
	if err := s.authorize(ctx, callerID, authz.ActionUpdateResource, lib.OwnerID); err != nil {
		return Book{}, err
	}
	return s.repo.UpdateBook(ctx, bookID, arg)
}

// FlagBook marks or clears a book as moderated content. Unlike deletion
// this is open to moderators.
func (s *LibraryService) FlagBook(ctx context.Context, callerID, bookID uuid.UUID, flagged bool) (Book, error) {
	book, err := s.repo.GetBook(ctx, bookID)
	if err != nil {
		return Book{}, err
	}
	lib, err := s.repo.GetLibrary(ctx, book.LibraryID)
	if err != nil {
		return Book{}, err
	}
	if err := s.authorize(ctx, callerID, authz.ActionModerateResource, lib.OwnerID); err != nil {
		return Book{}, err
	}
	return s.repo.SetBookFlagged(ctx, bookID, flagged)
}

func (s *LibraryService) DeleteBook(ctx context.Context, callerID, bookID uuid.UUID) error {
	book, err := s.repo.GetBook(ctx, bookID)
	if err != nil {
		return err
	}
	lib, err := s.repo.GetLibrary(ctx, book.LibraryID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, callerID, authz.ActionDeleteResource, lib.OwnerID); err != nil {
		return err
	}
	return s.repo.DeleteBook(ctx, bookID)
}
