// Package loam serves field definitions from a Loam document
// repository. Each option set is one markdown document whose
// frontmatter carries the set definition; the body is free-form
// documentation for the billing team. Editing definitions is a git
// commit, not a database migration.
package loam

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/loam"

	"github.com/claritydental/walkout/pkg/fields"
)

// Source implements ports.FieldDefinitionSource over a Loam
// repository.
type Source struct {
	repo *loam.TypedRepository[fields.OptionSet]
}

// New creates a source over an already-initialized typed repository.
func New(repo *loam.TypedRepository[fields.OptionSet]) *Source {
	return &Source{repo: repo}
}

// Open initializes the Loam repository at path and wraps it.
func Open(path string, opts ...loam.Option) (*Source, error) {
	repo, err := loam.Init(path, opts...)
	if err != nil {
		return nil, fmt.Errorf("init loam repository at %s: %w", path, err)
	}
	return New(loam.NewTypedRepository[fields.OptionSet](repo)), nil
}

// List returns the option sets defined in the repository, ordered by
// set id. With activeOnly set, inactive options are filtered out.
func (s *Source) List(ctx context.Context, activeOnly bool) ([]fields.OptionSet, error) {
	docs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list field definition documents: %w", err)
	}

	seen := make(map[int]string)
	sets := make([]fields.OptionSet, 0, len(docs))
	for _, doc := range docs {
		set := doc.Data
		if set.SetID == 0 {
			return nil, fmt.Errorf("document %s: missing setId", doc.ID)
		}
		if prev, dup := seen[set.SetID]; dup {
			return nil, fmt.Errorf("set id %d defined in both %s and %s", set.SetID, prev, doc.ID)
		}
		seen[set.SetID] = doc.ID

		if activeOnly {
			kept := make([]fields.Option, 0, len(set.Options))
			for _, opt := range set.Options {
				if opt.IsActive {
					kept = append(kept, opt)
				}
			}
			set.Options = kept
		}
		sets = append(sets, set)
	}

	sort.Slice(sets, func(i, j int) bool { return sets[i].SetID < sets[j].SetID })
	return sets, nil
}

// Registry builds a resolved registry from the repository contents.
func (s *Source) Registry(ctx context.Context) (*fields.Registry, error) {
	sets, err := s.List(ctx, false)
	if err != nil {
		return nil, err
	}
	return fields.New(sets)
}
