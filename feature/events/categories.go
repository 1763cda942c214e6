package events

import (
	"context"

	"event-sync/core/remote"
	"event-sync/feature/events/models"

	"go.uber.org/zap"
)

// CategoryLister loads the remote category vocabulary.
type CategoryLister interface {
	ListCategories(ctx context.Context) ([]remote.Category, error)
}

// Categories resolves source labels against the remote vocabulary of one run.
type Categories struct {
	byName map[models.Category]models.Ref
}

// NewCategories builds a resolver from the remote vocabulary.
func NewCategories(list []remote.Category) *Categories {
	c := &Categories{byName: make(map[models.Category]models.Ref, len(list))}
	for _, cat := range list {
		c.byName[models.Category(cat.Name)] = models.Ref{ID: cat.ID}
	}
	return c
}

// LoadCategories loads the vocabulary. A failure is logged and yields an
// empty vocabulary so every label becomes a tag.
func LoadCategories(ctx context.Context, lister CategoryLister, logger *zap.Logger) *Categories {
	list, err := lister.ListCategories(ctx)
	if err != nil {
		logger.Error("Failed to load categories, continuing without", zap.Error(err))
		return NewCategories(nil)
	}
	logger.Info("Loaded categories", zap.Int("count", len(list)))
	return NewCategories(list)
}

// Len returns the size of the vocabulary.
func (c *Categories) Len() int {
	return len(c.byName)
}

// Resolve splits labels into category refs and free text tags. A label
// becomes a category when the table maps it and the remote knows the
// canonical name; everything else is kept verbatim as a tag. Refs are
// deduplicated in label order.
func (c *Categories) Resolve(labels []string) ([]models.Ref, []string) {
	var refs []models.Ref
	var tags []string
	seen := make(map[string]bool)

	for _, label := range labels {
		canonical := models.MapSourceCategory(label)
		ref, known := c.byName[canonical]
		if canonical == models.CategoryUnmapped || !known {
			tags = append(tags, label)
			continue
		}
		if !seen[ref.ID] {
			seen[ref.ID] = true
			refs = append(refs, ref)
		}
	}
	return refs, tags
}
