package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/creance-pos/internal/domain/entity"
	"github.com/sangkips/creance-pos/internal/domain/ledger"
	"github.com/sangkips/creance-pos/pkg/apperror"
)

// CategoryService handles product categories. Categories are either top level
// or children of a top-level category.
type CategoryService struct {
	store ledger.Store
	opts  SettlementOptions
}

// NewCategoryService creates a new category service
func NewCategoryService(store ledger.Store, opts SettlementOptions) *CategoryService {
	return &CategoryService{store: store, opts: opts}
}

// CategoryNode is a top-level category with its children
type CategoryNode struct {
	entity.Category
	Children []entity.Category `json:"children"`
}

// CreateCategoryInput represents the create category input
type CreateCategoryInput struct {
	Name     string
	ParentID *uuid.UUID
}

// CreateCategory creates a category under an optional top-level parent
func (s *CategoryService) CreateCategory(ctx context.Context, input *CreateCategoryInput) (*entity.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "name", Message: "Category name is required"}})
	}

	ctx, cancel := s.opts.storeCtx(ctx)
	defer cancel()

	if err := s.checkParent(ctx, uuid.Nil, input.ParentID); err != nil {
		return nil, err
	}

	category := &entity.Category{ID: uuid.New(), Name: name, ParentID: input.ParentID}
	if err := s.store.CommitBatch(ctx, ledger.NewBatch().CreateCategory(category)); err != nil {
		return nil, apperror.NewStoreCommitFailure(err)
	}
	return s.store.GetCategory(ctx, category.ID)
}

// GetCategory retrieves a category by ID
func (s *CategoryService) GetCategory(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	ctx, cancel := s.opts.storeCtx(ctx)
	defer cancel()
	category, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Category")
	}
	return category, nil
}

// ListCategories returns all categories as a two-level tree, sorted by name
func (s *CategoryService) ListCategories(ctx context.Context) ([]CategoryNode, error) {
	ctx, cancel := s.opts.storeCtx(ctx)
	defer cancel()
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return buildTree(categories), nil
}

// UpdateCategoryInput represents the update category input
type UpdateCategoryInput struct {
	ID          uuid.UUID
	Name        *string
	ParentID    *uuid.UUID
	ClearParent bool
}

// UpdateCategory renames or moves a category
func (s *CategoryService) UpdateCategory(ctx context.Context, input *UpdateCategoryInput) (*entity.Category, error) {
	ctx, cancel := s.opts.storeCtx(ctx)
	defer cancel()

	category, err := s.store.GetCategory(ctx, input.ID)
	if err != nil {
		return nil, lookupError(err, "Category")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "name", Message: "Category name is required"}})
		}
		category.Name = name
	}

	switch {
	case input.ClearParent:
		category.ParentID = nil
	case input.ParentID != nil:
		if err := s.checkParent(ctx, category.ID, input.ParentID); err != nil {
			return nil, err
		}
		category.ParentID = input.ParentID
	}

	if err := s.store.CommitBatch(ctx, ledger.NewBatch().UpdateCategory(category)); err != nil {
		return nil, catalogCommitError(err, "Category")
	}
	return s.store.GetCategory(ctx, category.ID)
}

// DeleteCategory deletes a category that has no children. Its products become
// uncategorized in the same batch.
func (s *CategoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := s.opts.storeCtx(ctx)
	defer cancel()

	if _, err := s.store.GetCategory(ctx, id); err != nil {
		return lookupError(err, "Category")
	}

	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	for _, c := range categories {
		if c.ParentID != nil && *c.ParentID == id {
			return apperror.NewConflictError("Category has subcategories, delete them first")
		}
	}

	batch := ledger.NewBatch().DetachCategory(id).DeleteCategory(id)
	if err := s.store.CommitBatch(ctx, batch); err != nil {
		return catalogCommitError(err, "Category")
	}
	return nil
}

// checkParent enforces the two-level rule for category self with the proposed parent.
func (s *CategoryService) checkParent(ctx context.Context, self uuid.UUID, parentID *uuid.UUID) error {
	if parentID == nil {
		return nil
	}
	if *parentID == self {
		return apperror.NewBadRequestError("A category cannot be its own parent")
	}

	parent, err := s.store.GetCategory(ctx, *parentID)
	if err != nil {
		return lookupError(err, "Parent category")
	}
	if !parent.IsTopLevel() {
		return apperror.NewBadRequestError("Parent must be a top-level category")
	}

	if self == uuid.Nil {
		return nil
	}
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	for _, c := range categories {
		if c.ParentID != nil && *c.ParentID == self {
			return apperror.NewBadRequestError("A category with subcategories cannot be nested")
		}
	}
	return nil
}

func buildTree(categories []entity.Category) []CategoryNode {
	children := make(map[uuid.UUID][]entity.Category)
	var roots []CategoryNode
	for _, c := range categories {
		if c.ParentID == nil {
			roots = append(roots, CategoryNode{Category: c})
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], c)
	}

	byName := func(a, b string) bool { return strings.ToLower(a) < strings.ToLower(b) }
	sort.SliceStable(roots, func(i, j int) bool { return byName(roots[i].Name, roots[j].Name) })

	nodes := make([]CategoryNode, 0, len(roots))
	for _, root := range roots {
		kids := children[root.ID]
		sort.SliceStable(kids, func(i, j int) bool { return byName(kids[i].Name, kids[j].Name) })
		if kids == nil {
			kids = []entity.Category{}
		}
		root.Children = kids
		nodes = append(nodes, root)
	}
	return nodes
}
