// Package category resolves the two-level category hierarchy: the fixed
// predefined main categories, user-created mains and the sub-categories
// that time is tracked against.
package category

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/maruel/natural"
	"github.com/sadopc/dailyschedule/internal/apperr"
	"github.com/sadopc/dailyschedule/internal/store"
)

// Repository is the persistence the service needs. *store.Store satisfies it.
type Repository interface {
	InsertCategory(ctx context.Context, c store.Category) (*store.Category, error)
	EnsureCategory(ctx context.Context, c store.Category) (*store.Category, error)
	GetCategory(ctx context.Context, uid, id string) (*store.Category, error)
	GetCategoryByKey(ctx context.Context, uid, key string) (*store.Category, error)
	ListCategories(ctx context.Context, uid string, activeOnly bool) ([]store.Category, error)
	UpdateCategory(ctx context.Context, c store.Category) (*store.Category, error)
	DeleteCategory(ctx context.Context, uid, id string) error
}

// Service scopes every category operation to one user.
type Service struct {
	repo Repository
	uid  string
}

func NewService(repo Repository, uid string) *Service {
	return &Service{repo: repo, uid: uid}
}

// Input carries the user-editable fields of a new category.
type Input struct {
	Name        string
	Description string
	Color       string
	Icon        string
	ParentKey   string
}

// Patch carries a partial update. Nil fields are left unchanged.
type Patch struct {
	Name        *string
	Description *string
	Color       *string
	Icon        *string
	ParentKey   *string
}

// ResolveMainCategories returns the predefined mains in their fixed order,
// each replaced by the user's persisted record when one exists, followed by
// the user's own active mains in creation order. Predefined mains that were
// never persisted are returned with ID equal to their key.
func (s *Service) ResolveMainCategories(ctx context.Context) ([]store.Category, error) {
	all, err := s.repo.ListCategories(ctx, s.uid, false)
	if err != nil {
		return nil, apperr.Persistence("list categories", err)
	}
	return s.resolveMains(all), nil
}

func (s *Service) resolveMains(all []store.Category) []store.Category {
	return Mains(s.uid, all)
}

// Mains merges the predefined main categories with the mains found in all.
// A persisted record wins over its preset; user mains follow in the order
// given. Presets without a record get ID equal to their key.
func Mains(uid string, all []store.Category) []store.Category {
	persisted := make(map[string]store.Category)
	for _, c := range all {
		if c.IsMain() {
			persisted[c.Key] = c
		}
	}

	mains := make([]store.Category, 0, len(Predefined))
	for _, p := range Predefined {
		if c, ok := persisted[p.Key]; ok {
			mains = append(mains, c)
			continue
		}
		mains = append(mains, fromPreset(uid, p))
	}
	for _, c := range all {
		if c.IsMain() && c.Active && !IsPredefined(c.Key) {
			mains = append(mains, c)
		}
	}
	return mains
}

// ResolveSubCategories returns the active sub-categories under mainKey in
// natural name order.
func (s *Service) ResolveSubCategories(ctx context.Context, mainKey string) ([]store.Category, error) {
	all, err := s.repo.ListCategories(ctx, s.uid, true)
	if err != nil {
		return nil, apperr.Persistence("list categories", err)
	}
	return subsOf(all, mainKey), nil
}

func subsOf(all []store.Category, mainKey string) []store.Category {
	var subs []store.Category
	for _, c := range all {
		if c.Kind == store.KindSub && c.Active && c.Parent() == mainKey {
			subs = append(subs, c)
		}
	}
	sort.SliceStable(subs, func(i, j int) bool {
		return natural.Less(strings.ToLower(subs[i].Name), strings.ToLower(subs[j].Name))
	})
	return subs
}

// CreateSubCategory validates in and stores a new sub-category under
// in.ParentKey. The parent main is persisted first if it has no record yet.
func (s *Service) CreateSubCategory(ctx context.Context, in Input) (*store.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Invalid("name", "name is required")
	}

	all, err := s.repo.ListCategories(ctx, s.uid, false)
	if err != nil {
		return nil, apperr.Persistence("list categories", err)
	}
	if !s.mainExists(all, in.ParentKey) {
		return nil, apperr.Invalid("parent", "main category %q does not exist", in.ParentKey)
	}
	if dup := findSub(all, in.ParentKey, name, ""); dup != nil {
		return nil, apperr.Invalid("name", "%q already exists in this category", dup.Name)
	}

	if _, err := s.EnsureMainCategory(ctx, in.ParentKey); err != nil {
		return nil, err
	}

	parent := in.ParentKey
	c, err := s.repo.InsertCategory(ctx, store.Category{
		UID:         s.uid,
		Key:         "cat_" + uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Color:       orDefault(in.Color, DefaultColor),
		Icon:        orDefault(in.Icon, DefaultIcon),
		Kind:        store.KindSub,
		ParentKey:   &parent,
		Active:      true,
	})
	if err != nil {
		return nil, apperr.Persistence("create sub-category", err)
	}
	return c, nil
}

// UpdateSubCategory merges p into the sub-category id. Renames and moves are
// checked for duplicates the same way creation is.
func (s *Service) UpdateSubCategory(ctx context.Context, id string, p Patch) (*store.Category, error) {
	c, err := s.repo.GetCategory(ctx, s.uid, id)
	if err != nil {
		return nil, apperr.Persistence("get category", err)
	}
	if c.Kind != store.KindSub {
		return nil, apperr.Invalid("type", "%q is a main category", c.Name)
	}

	if p.Name != nil {
		c.Name = strings.TrimSpace(*p.Name)
		if c.Name == "" {
			return nil, apperr.Invalid("name", "name is required")
		}
	}
	if p.Description != nil {
		c.Description = strings.TrimSpace(*p.Description)
	}
	if p.Color != nil {
		c.Color = orDefault(*p.Color, DefaultColor)
	}
	if p.Icon != nil {
		c.Icon = orDefault(*p.Icon, DefaultIcon)
	}

	all, err := s.repo.ListCategories(ctx, s.uid, false)
	if err != nil {
		return nil, apperr.Persistence("list categories", err)
	}
	if p.ParentKey != nil && *p.ParentKey != c.Parent() {
		if !s.mainExists(all, *p.ParentKey) {
			return nil, apperr.Invalid("parent", "main category %q does not exist", *p.ParentKey)
		}
		if _, err := s.EnsureMainCategory(ctx, *p.ParentKey); err != nil {
			return nil, err
		}
		parent := *p.ParentKey
		c.ParentKey = &parent
	}
	if dup := findSub(all, c.Parent(), c.Name, c.ID); dup != nil {
		return nil, apperr.Invalid("name", "%q already exists in this category", dup.Name)
	}

	updated, err := s.repo.UpdateCategory(ctx, *c)
	if err != nil {
		return nil, apperr.Persistence("update sub-category", err)
	}
	return updated, nil
}

// DeleteSubCategory removes the sub-category. Sessions tracked against it
// are kept.
func (s *Service) DeleteSubCategory(ctx context.Context, id string) error {
	c, err := s.repo.GetCategory(ctx, s.uid, id)
	if err != nil {
		return apperr.Persistence("get category", err)
	}
	if c.Kind != store.KindSub {
		return apperr.Invalid("type", "%q is a main category", c.Name)
	}
	return apperr.Persistence("delete sub-category", s.repo.DeleteCategory(ctx, s.uid, id))
}

// CreateMainCategory stores a user-defined main category.
func (s *Service) CreateMainCategory(ctx context.Context, in Input) (*store.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Invalid("name", "name is required")
	}
	mains, err := s.ResolveMainCategories(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range mains {
		if strings.EqualFold(m.Name, name) {
			return nil, apperr.Invalid("name", "%q already exists", m.Name)
		}
	}

	c, err := s.repo.InsertCategory(ctx, store.Category{
		UID:         s.uid,
		Key:         "main_" + uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Color:       orDefault(in.Color, DefaultColor),
		Icon:        orDefault(in.Icon, DefaultIcon),
		Kind:        store.KindMain,
		Active:      true,
	})
	if err != nil {
		return nil, apperr.Persistence("create main category", err)
	}
	return c, nil
}

// EnsureMainCategory returns the persisted record for the main category
// key, creating it from the predefined set if needed. Repeated or
// concurrent calls yield the same record.
func (s *Service) EnsureMainCategory(ctx context.Context, key string) (*store.Category, error) {
	p, ok := presetFor(key)
	if !ok {
		c, err := s.repo.GetCategoryByKey(ctx, s.uid, key)
		if err != nil {
			return nil, apperr.Persistence("get main category", err)
		}
		if !c.IsMain() {
			return nil, apperr.Invalid("parent", "%q is not a main category", c.Name)
		}
		return c, nil
	}

	c := fromPreset(s.uid, p)
	c.ID = ""
	persisted, err := s.repo.EnsureCategory(ctx, c)
	if err != nil {
		return nil, apperr.Persistence("ensure main category", err)
	}
	return persisted, nil
}

// All returns every resolved main category followed by every active
// sub-category. This is the category set tracking and analytics work on.
func (s *Service) All(ctx context.Context) ([]store.Category, error) {
	all, err := s.repo.ListCategories(ctx, s.uid, false)
	if err != nil {
		return nil, apperr.Persistence("list categories", err)
	}
	out := s.resolveMains(all)
	for _, c := range all {
		if c.Kind == store.KindSub && c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}

// Node is one main category with its active sub-categories.
type Node struct {
	Main store.Category
	Subs []store.Category
}

// Tree returns the resolved mains in display order, each with its
// sub-categories in natural name order, from a single listing.
func (s *Service) Tree(ctx context.Context) ([]Node, error) {
	all, err := s.repo.ListCategories(ctx, s.uid, true)
	if err != nil {
		return nil, apperr.Persistence("list categories", err)
	}
	mains := s.resolveMains(all)
	nodes := make([]Node, len(mains))
	for i, m := range mains {
		nodes[i] = Node{Main: m, Subs: subsOf(all, m.Key)}
	}
	return nodes, nil
}

// Lookup returns the category with the given store id.
func (s *Service) Lookup(ctx context.Context, id string) (*store.Category, error) {
	c, err := s.repo.GetCategory(ctx, s.uid, id)
	if err != nil {
		return nil, apperr.Persistence("get category", err)
	}
	return c, nil
}

// Resolve finds a trackable category by id, stable key or case-insensitive
// name. A predefined main that has no record yet is persisted so that the
// returned category always has a store id.
func (s *Service) Resolve(ctx context.Context, ref string) (*store.Category, error) {
	ref = strings.TrimSpace(ref)
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range all {
		if c.ID == ref || c.Key == ref || strings.EqualFold(c.Name, ref) {
			if c.IsMain() && c.ID == c.Key {
				return s.EnsureMainCategory(ctx, c.Key)
			}
			return &c, nil
		}
	}
	return nil, apperr.NotFound("category", ref)
}

func (s *Service) mainExists(all []store.Category, key string) bool {
	if key == "" {
		return false
	}
	for _, m := range s.resolveMains(all) {
		if m.Key == key {
			return true
		}
	}
	return false
}

func fromPreset(uid string, p Preset) store.Category {
	return store.Category{
		ID:     p.Key,
		UID:    uid,
		Key:    p.Key,
		Name:   p.Name,
		Color:  p.Color,
		Icon:   p.Icon,
		Kind:   store.KindMain,
		Active: true,
	}
}

// findSub returns a sub under parent whose name matches case-insensitively,
// ignoring the category with id skipID.
func findSub(all []store.Category, parent, name, skipID string) *store.Category {
	for i := range all {
		c := &all[i]
		if c.Kind == store.KindSub && c.ID != skipID && c.Parent() == parent && strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
