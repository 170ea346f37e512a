package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feastline/feastline-backend/pkg/db/models"
)

func variant(id uuid.UUID, parent *uuid.UUID, category, name, price string) models.ItemVariant {
	return models.ItemVariant{
		ID:       id,
		ParentID: parent,
		Category: category,
		Name:     name,
		Price:    decimal.RequireFromString(price),
	}
}

func TestBuildVariantTreeEmpty(t *testing.T) {
	assert.Nil(t, BuildVariantTree(nil))
}

func TestBuildVariantTreeSingleLevel(t *testing.T) {
	small := uuid.New()
	large := uuid.New()
	tree := BuildVariantTree([]models.ItemVariant{
		variant(small, nil, "Size", "Small", "99.00"),
		variant(large, nil, "Size", "Large", "149.00"),
	})

	require.Len(t, tree, 1)
	assert.Equal(t, "Size", tree[0].Category)
	require.Len(t, tree[0].Options, 2)
	assert.Equal(t, "Small", tree[0].Options[0].Name)
	assert.Nil(t, tree[0].Options[0].Children)
}

func TestBuildVariantTreeNested(t *testing.T) {
	small := uuid.New()
	large := uuid.New()
	thin := uuid.New()
	stuffed := uuid.New()

	tree := BuildVariantTree([]models.ItemVariant{
		variant(small, nil, "Size", "Small", "99.00"),
		variant(large, nil, "Size", "Large", "149.00"),
		variant(thin, &large, "Crust", "Thin", "0.00"),
		variant(stuffed, &large, "Crust", "Stuffed", "40.00"),
	})

	require.Len(t, tree, 1)
	require.Len(t, tree[0].Options, 2)

	smallOpt := tree[0].Options[0]
	assert.Empty(t, smallOpt.Children)

	largeOpt := tree[0].Options[1]
	require.Len(t, largeOpt.Children, 1)
	assert.Equal(t, "Crust", largeOpt.Children[0].Category)
	require.Len(t, largeOpt.Children[0].Options, 2)
}

func TestBuildVariantTreeCycleTerminates(t *testing.T) {
	// Corrupt data: a child pointing back into an already-included category
	// must not recurse forever.
	size := uuid.New()
	crust := uuid.New()
	loop := uuid.New()

	tree := BuildVariantTree([]models.ItemVariant{
		variant(size, nil, "Size", "Large", "149.00"),
		variant(crust, &size, "Crust", "Thin", "0.00"),
		variant(loop, &crust, "Size", "Small", "99.00"),
	})

	require.Len(t, tree, 1)
	largeOpt := tree[0].Options[0]
	require.Len(t, largeOpt.Children, 1)
	thinOpt := largeOpt.Children[0].Options[0]
	assert.Empty(t, thinOpt.Children, "repeated category should stop the walk")
}

func TestBuildVariantTreeMultipleRootCategories(t *testing.T) {
	base := uuid.New()
	milk := uuid.New()
	tree := BuildVariantTree([]models.ItemVariant{
		variant(base, nil, "Strength", "Double Shot", "20.00"),
		variant(milk, nil, "Milk", "Oat", "30.00"),
	})

	require.Len(t, tree, 2)
	assert.Equal(t, "Strength", tree[0].Category)
	assert.Equal(t, "Milk", tree[1].Category)
}
