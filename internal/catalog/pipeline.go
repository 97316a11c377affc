// Package catalog is the mutation pipeline: it applies create, update,
// delete, and status-change operations against the remote store when
// attached, or against the local mirror with equivalent semantics when not.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ballop/merchplan/internal/blob"
	"github.com/ballop/merchplan/internal/engine"
	"github.com/ballop/merchplan/internal/models"
	"github.com/ballop/merchplan/internal/remote"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrAttachmentUpload = errors.New("attachment upload failed")
	ErrInvalidStatus    = errors.New("invalid status")
)

// Target says whether a save addresses a known entity or creates one. It is
// decided at the call site rather than inferred from the identifier shape.
type Target struct {
	existing bool
	key      string
}

// NewEntity targets a create. A payload that nevertheless carries an
// identifier already present in the mirror is treated as an update-in-place
// under that identifier.
func NewEntity() Target { return Target{} }

// ExistingEntity targets an update-in-place at key.
func ExistingEntity(key string) Target { return Target{existing: true, key: key} }

// Service is the mutation pipeline.
type Service struct {
	store remote.Store // nil in local-only mode
	state *engine.State
	stage *stager // nil when no blob store is attached
	log   *zap.Logger

	newKey func() string
}

// NewService creates the pipeline. store and blobs may each be nil.
func NewService(store remote.Store, state *engine.State, blobs blob.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		store:  store,
		state:  state,
		log:    log,
		newKey: uuid.NewString,
	}
	if blobs != nil {
		s.stage = &stager{blobs: blobs, now: time.Now}
	}
	return s
}

// attached reports whether commits go through the remote store: both a
// store and a resolved account must be present.
func (s *Service) attached() bool {
	if s.store == nil {
		return false
	}
	_, ok := s.state.Account()
	return ok
}

func productPath(id string) string { return "products/" + id }

// Save applies a create-or-update. Attribution is stamped once, pending
// attachments are staged first, and the entity write happens last; a
// staging failure aborts the save with the prior state untouched.
func (s *Service) Save(ctx context.Context, target Target, p models.Product, files Attachments) (models.Product, error) {
	s.stampAttribution(&p)

	if s.stage != nil && s.attached() && !files.Empty() {
		if err := s.stage.stage(ctx, &p, files); err != nil {
			return models.Product{}, err
		}
	}

	if s.attached() {
		return s.commitRemote(ctx, target, p)
	}
	return s.commitLocal(target, p), nil
}

func (s *Service) commitRemote(ctx context.Context, target Target, p models.Product) (models.Product, error) {
	switch {
	case target.existing:
		p.ID = target.key
		if err := s.store.Set(ctx, productPath(target.key), p); err != nil {
			return models.Product{}, fmt.Errorf("write product: %w", err)
		}
	default:
		if _, ok := s.state.Product(p.ID); p.ID != "" && ok {
			// The payload's identifier is already a known entity.
			if err := s.store.Set(ctx, productPath(p.ID), p); err != nil {
				return models.Product{}, fmt.Errorf("write product: %w", err)
			}
		} else {
			key, err := s.store.Push(ctx, "products", p)
			if err != nil {
				return models.Product{}, fmt.Errorf("create product: %w", err)
			}
			p.ID = key
		}
	}
	return p, nil
}

func (s *Service) commitLocal(target Target, p models.Product) models.Product {
	if target.existing {
		p.ID = target.key
	} else if p.ID == "" {
		p.ID = s.newKey()
	}
	s.state.UpsertProduct(p)
	return p
}

// stampAttribution sets authorship from the acting account on first save
// only; a pre-existing author is never overwritten.
func (s *Service) stampAttribution(p *models.Product) {
	if strings.TrimSpace(p.Author) != "" {
		return
	}
	actor, ok := s.state.Account()
	if !ok {
		return
	}
	p.AuthorUID = actor.UID
	if actor.Name != "" {
		p.Author = actor.Name
	}
	if actor.Department != "" {
		p.Department = actor.Department
	}
	if p.Author == "" && actor.DisplayName != "" {
		p.Author = actor.DisplayName
	}
}

// Update merge-writes only the supplied fields; the record is never
// replaced wholesale.
func (s *Service) Update(ctx context.Context, id string, fields map[string]any) error {
	current, ok := s.state.Product(id)
	if !ok {
		return ErrProductNotFound
	}

	if s.attached() {
		if err := s.store.Merge(ctx, productPath(id), fields); err != nil {
			return fmt.Errorf("merge product: %w", err)
		}
		return nil
	}

	merged, err := mergeProduct(current, fields)
	if err != nil {
		return err
	}
	merged.ID = id
	s.state.UpsertProduct(merged)
	return nil
}

// UpdateStatus is the narrow status-change mutation.
func (s *Service) UpdateStatus(ctx context.Context, id string, status models.Status) error {
	if !models.ValidStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.Update(ctx, id, map[string]any{"status": string(status)})
}

// Delete removes the entity: an absence write remotely, a filter locally.
// Confirmation is the caller's concern.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, ok := s.state.Product(id); !ok {
		return ErrProductNotFound
	}
	if s.attached() {
		if err := s.store.Delete(ctx, productPath(id)); err != nil {
			return fmt.Errorf("delete product: %w", err)
		}
		return nil
	}
	s.state.RemoveProduct(id)
	return nil
}

// UpdateBrands persists the registry remotely for administrators; everyone
// else gets the local-only equivalent.
func (s *Service) UpdateBrands(ctx context.Context, brands []string) error {
	actor, ok := s.state.Account()
	if s.attached() && ok && actor.Role == models.RoleAdmin {
		if err := s.store.Set(ctx, "settings/brands", brands); err != nil {
			return fmt.Errorf("write brands: %w", err)
		}
		return nil
	}
	s.state.SetBrands(brands)
	return nil
}

// UpdateProfile sets the acting account's name and department.
func (s *Service) UpdateProfile(ctx context.Context, name, department string) error {
	actor, ok := s.state.Account()
	if !ok {
		return errors.New("no resolved account")
	}
	if s.attached() {
		err := s.store.Merge(ctx, "users/"+actor.UID, map[string]any{
			"name":       name,
			"department": department,
		})
		if err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		return nil
	}
	actor.Name = name
	actor.Department = department
	s.state.SetAccount(&actor)
	return nil
}

// mergeProduct applies a partial field map onto a product through its JSON
// form, so local merges follow the same field names as remote ones.
func mergeProduct(p models.Product, fields map[string]any) (models.Product, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return models.Product{}, err
	}
	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return models.Product{}, err
	}
	for k, v := range fields {
		doc[k] = v
	}
	raw, err = json.Marshal(doc)
	if err != nil {
		return models.Product{}, err
	}
	var out models.Product
	if err := json.Unmarshal(raw, &out); err != nil {
		return models.Product{}, fmt.Errorf("invalid field value: %w", err)
	}
	return out, nil
}
