package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hiroki-koketsu/kanban-board/internal/model"
	"github.com/hiroki-koketsu/kanban-board/internal/store"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Registered users and address book contacts can both be assigned to tasks.
const (
	UsersPath    = "/users"
	ContactsPath = "/contacts"
)

// ContactRepository reads assignable people from the store. Its only
// write is Add, which appends without rewriting the collection.
type ContactRepository struct {
	store store.Client
}

// NewContactRepository creates a ContactRepository backed by s.
func NewContactRepository(s store.Client) *ContactRepository {
	return &ContactRepository{store: s}
}

// LoadAll returns registered users followed by contacts.
func (r *ContactRepository) LoadAll(ctx context.Context) ([]model.Contact, error) {
	ctx, span := tracer.Start(ctx, "ContactRepository.LoadAll")
	defer span.End()

	all := []model.Contact{}
	for _, path := range []string{UsersPath, ContactsPath} {
		raw, err := r.store.Read(ctx, path)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to load %s: %w", store.CleanPath(path), err)
		}
		if raw == nil {
			continue
		}
		var contacts []model.Contact
		if err := json.Unmarshal(raw, &contacts); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", store.CleanPath(path), err)
		}
		for _, c := range contacts {
			if c.ID != "" {
				all = append(all, c)
			}
		}
	}

	span.SetAttributes(attribute.Int("contact.count", len(all)))
	return all, nil
}

// GetByID finds a user or contact by id. It returns nil when no one
// matches.
func (r *ContactRepository) GetByID(ctx context.Context, id string) (*model.Contact, error) {
	ctx, span := tracer.Start(ctx, "ContactRepository.GetByID",
		trace.WithAttributes(attribute.String("contact.id", id)),
	)
	defer span.End()

	if id == "" {
		return nil, nil
	}
	all, err := r.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, nil
}

// Add appends c to the contact collection and returns the child name the
// store gave it.
func (r *ContactRepository) Add(ctx context.Context, c *model.Contact) (string, error) {
	ctx, span := tracer.Start(ctx, "ContactRepository.Add",
		trace.WithAttributes(attribute.String("contact.id", c.ID)),
	)
	defer span.End()

	if c.ID == "" {
		return "", errors.New("contact has no id")
	}
	name, err := r.store.Append(ctx, ContactsPath, c)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to add contact: %w", err)
	}
	return name, nil
}
