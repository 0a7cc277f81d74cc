package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mpay/mpay/internal/domain"
)

// TagUseCase handles the hierarchical tag forest.
type TagUseCase struct {
	txManager TransactionManager
	tagRepo   TagRepository
	logger    zerolog.Logger
}

// NewTagUseCase creates a new TagUseCase.
func NewTagUseCase(txManager TransactionManager, tagRepo TagRepository, logger zerolog.Logger) *TagUseCase {
	return &TagUseCase{
		txManager: txManager,
		tagRepo:   tagRepo,
		logger:    logger,
	}
}

// CreateTag creates a single tag, optionally under a parent referenced by its
// hierarchical name. The parent must already exist.
func (uc *TagUseCase) CreateTag(ctx context.Context, name string, description *string, parentPath *string) (*domain.Tag, error) {
	name, err := domain.SanitizeTagName(name)
	if err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var parentID *int64
	if parentPath != nil {
		parent, err := resolveTagPath(ctx, tx, uc.tagRepo, *parentPath)
		if err != nil {
			return nil, err
		}
		parentID = &parent.ID
	}

	tag := &domain.Tag{
		Name:        name,
		Description: description,
		ParentID:    parentID,
	}

	if err := uc.tagRepo.Create(ctx, tx, tag); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.logger.Info().Str("tag", name).Msg("tag created")

	return tag, nil
}

// ResolveHierarchicalTag resolves a "/"-joined path from a root tag to a
// descendant. A root tag never matches a nested leaf of the same name.
func (uc *TagUseCase) ResolveHierarchicalTag(ctx context.Context, path string) (*domain.Tag, error) {
	return resolveTagPath(ctx, nil, uc.tagRepo, path)
}

// CreateOrGetHierarchicalTag walks a hierarchical path, creating missing
// segments along the way. Descriptions cannot be set via this path because it
// may create more than one tag.
func (uc *TagUseCase) CreateOrGetHierarchicalTag(ctx context.Context, path string) (*domain.Tag, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	tag, err := ensureTagPath(ctx, tx, uc.tagRepo, path)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return tag, nil
}

// DeleteTag removes a tag. Associations to transactions are cascaded away;
// the transactions themselves survive.
func (uc *TagUseCase) DeleteTag(ctx context.Context, path string) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := resolveTagPath(ctx, tx, uc.tagRepo, path)
	if err != nil {
		return err
	}

	if err := uc.tagRepo.Delete(ctx, tx, tag.ID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	uc.logger.Info().Str("tag", path).Msg("tag deleted")

	return nil
}

// ListTags returns all tags with their computed hierarchical names.
func (uc *TagUseCase) ListTags(ctx context.Context) ([]domain.TagRecord, error) {
	tags, err := uc.tagRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*domain.Tag, len(tags))
	for _, t := range tags {
		byID[t.ID] = t
	}

	records := make([]domain.TagRecord, 0, len(tags))
	for _, t := range tags {
		name, err := hierarchicalName(t, byID)
		if err != nil {
			return nil, err
		}
		records = append(records, domain.TagRecord{
			ID:               t.ID,
			Name:             t.Name,
			HierarchicalName: name,
			Description:      t.Description,
			ParentID:         t.ParentID,
		})
	}

	return records, nil
}

// TagTree renders the tag forest as an indented tree.
func (uc *TagUseCase) TagTree(ctx context.Context) (string, error) {
	tags, err := uc.tagRepo.List(ctx)
	if err != nil {
		return "", err
	}

	roots := buildTagForest(tags)

	var b strings.Builder
	for i, root := range roots {
		renderTagTree(&b, root, "", i == len(roots)-1)
	}

	return b.String(), nil
}

// resolveTagPath splits a hierarchical name on "/" and walks from the root,
// matching each successive (name, parent) pair.
func resolveTagPath(ctx context.Context, tx Transaction, repo TagRepository, path string) (*domain.Tag, error) {
	var (
		parentID *int64
		current  *domain.Tag
	)

	for _, segment := range strings.Split(strings.TrimSpace(path), "/") {
		tag, err := repo.GetByNameAndParent(ctx, tx, segment, parentID)
		if err != nil {
			if isNotFound(err) {
				return nil, fmt.Errorf("%w: tag %q does not exist", domain.ErrNotFound, path)
			}
			return nil, err
		}
		current = tag
		parentID = &tag.ID
	}

	return current, nil
}

// ensureTagPath is resolveTagPath with creation of missing segments.
func ensureTagPath(ctx context.Context, tx Transaction, repo TagRepository, path string) (*domain.Tag, error) {
	var (
		parentID *int64
		current  *domain.Tag
	)

	for _, segment := range strings.Split(strings.TrimSpace(path), "/") {
		tag, err := repo.GetByNameAndParent(ctx, tx, segment, parentID)
		if err != nil {
			if !isNotFound(err) {
				return nil, err
			}

			name, err := domain.SanitizeTagName(segment)
			if err != nil {
				return nil, err
			}

			tag = &domain.Tag{Name: name, ParentID: parentID}
			if err := repo.Create(ctx, tx, tag); err != nil {
				return nil, err
			}
		}
		current = tag
		parentID = &tag.ID
	}

	return current, nil
}

// hierarchicalName walks parent links up to the root. The walk is bounded by
// the number of tags so an accidental parent cycle surfaces as ErrIntegrity
// instead of an infinite loop.
func hierarchicalName(tag *domain.Tag, byID map[int64]*domain.Tag) (string, error) {
	segments := []string{tag.Name}

	current := tag
	for steps := 0; current.ParentID != nil; steps++ {
		if steps > len(byID) {
			return "", fmt.Errorf("%w: tag parent cycle involving tag %d", domain.ErrIntegrity, tag.ID)
		}
		parent, ok := byID[*current.ParentID]
		if !ok {
			return "", fmt.Errorf("%w: tag %d references missing parent %d", domain.ErrIntegrity, current.ID, *current.ParentID)
		}
		segments = append([]string{parent.Name}, segments...)
		current = parent
	}

	return strings.Join(segments, "/"), nil
}

func buildTagForest(tags []*domain.Tag) []*domain.TagNode {
	nodes := make(map[int64]*domain.TagNode, len(tags))
	for _, t := range tags {
		nodes[t.ID] = &domain.TagNode{Tag: *t}
	}

	var roots []*domain.TagNode
	for _, t := range tags {
		node := nodes[t.ID]
		if t.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[*t.ParentID]; ok {
			parent.Children = append(parent.Children, node)
		}
	}

	sortTagNodes(roots)
	for _, n := range nodes {
		sortTagNodes(n.Children)
	}

	return roots
}

func sortTagNodes(nodes []*domain.TagNode) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Tag.ID < nodes[j].Tag.ID })
}

func renderTagTree(b *strings.Builder, node *domain.TagNode, header string, last bool) {
	connector := "├──"
	childHeader := header + "│  "
	if last {
		connector = "└──"
		childHeader = header + "   "
	}

	description := ""
	if node.Tag.Description != nil {
		description = *node.Tag.Description
	}

	fmt.Fprintf(b, "%s%s%s\t%s\n", header, connector, node.Tag.Name, description)

	for i, child := range node.Children {
		renderTagTree(b, child, childHeader, i == len(node.Children)-1)
	}
}
