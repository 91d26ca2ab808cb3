package preprocess

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/embedding"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/item"
)

func sampleItem(i int) *item.Item {
	return item.New(
		item.Text(fmt.Sprintf("Apple iPhone %d 64GB Rose Gold", i)),
		map[string]string{"Brand": "Apple", "Storage": fmt.Sprintf("%d GB", 16*i)},
		item.Text("Factory unlocked, 4.7 inch display."),
	)
}

func TestPreprocess(t *testing.T) {
	p := New(nil)
	it := sampleItem(6)
	p.Preprocess(it)

	assert.Equal(t, []string{"apple", "iphone", "6", "64gb", "rose", "gold"}, it.TitleTokens)
	assert.Equal(t, []string{"apple"}, it.SpecTokens["brand"])
	assert.Equal(t, []string{"96", "gb"}, it.SpecTokens["storage"])
	assert.True(t, it.ColourSet.Equal(item.NewSet("rose", "gold", "rose gold")))
	assert.True(t, it.NumeralSet.Has("6"))
	assert.True(t, it.NumeralSet.Has("64gb"))
	assert.True(t, it.NumeralSet.Has("96"))
	assert.True(t, it.NumeralSet.Has("4.7"))
	assert.Nil(t, it.TitleVector)
}

func TestPreprocessNullTitle(t *testing.T) {
	p := New(nil)
	it := item.New(nil, map[string]string{"model": "A1586"}, nil)
	p.Preprocess(it)

	assert.Nil(t, it.TitleTokens)
	assert.Nil(t, it.DescriptionTokens)
	assert.Nil(t, it.ColourSet)
	assert.True(t, it.NumeralSet.Equal(item.NewSet("a1586")))
}

func TestPreprocessBlankTitle(t *testing.T) {
	p := New(nil)
	it := item.New(item.Text("   "), map[string]string{" Model ": "A1586"}, nil)
	p.Preprocess(it)

	require.NotNil(t, it.TitleTokens)
	assert.Empty(t, it.TitleTokens)
	require.NotNil(t, it.ColourSet)
	assert.Empty(t, it.ColourSet)
	assert.Equal(t, []string{"a1586"}, it.SpecTokens["model"])
}

func TestPreprocessIdempotent(t *testing.T) {
	p := New(nil)
	it := sampleItem(7)
	p.Preprocess(it)
	first := *it
	titleTokens := it.TitleTokens

	p.Preprocess(it)
	assert.Equal(t, first.TitleTokens, it.TitleTokens)
	assert.Equal(t, first.SpecTokens, it.SpecTokens)
	assert.Equal(t, first.NumeralSet, it.NumeralSet)
	// already populated fields are not recomputed
	assert.Same(t, &titleTokens[0], &it.TitleTokens[0])
}

func TestPreprocessWordVectors(t *testing.T) {
	vecs, err := embedding.NewTable(2, map[string][]float64{
		"apple":  {1, 0},
		"iphone": {0, 1},
	})
	require.NoError(t, err)
	p := New(nil, WithWordVectors(vecs))

	it := item.New(item.Text("Apple iPhone X"), nil, nil)
	p.Preprocess(it)
	assert.Equal(t, []float64{0.5, 0.5}, it.TitleVector)
	assert.Equal(t, []string{"x"}, it.OOVTokens)

	none := item.New(item.Text("Zzz"), nil, nil)
	p.Preprocess(none)
	assert.Equal(t, []float64{0, 0}, none.TitleVector)
}

func TestPreprocessAllWorkerCountIndependent(t *testing.T) {
	p := New(nil)
	build := func() []*item.Item {
		items := make([]*item.Item, 2500)
		for i := range items {
			items[i] = sampleItem(i)
		}
		return items
	}

	serial := build()
	require.NoError(t, p.PreprocessAll(context.Background(), serial, 1))
	parallel := build()
	require.NoError(t, p.PreprocessAll(context.Background(), parallel, 7))

	for i := range serial {
		assert.Equal(t, serial[i].TitleTokens, parallel[i].TitleTokens)
		assert.Equal(t, serial[i].SpecTokens, parallel[i].SpecTokens)
		assert.Equal(t, serial[i].ColourSet, parallel[i].ColourSet)
		assert.Equal(t, serial[i].NumeralSet, parallel[i].NumeralSet)
	}
}

func TestPreprocessAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	items := []*item.Item{sampleItem(1)}
	err := New(nil).PreprocessAll(ctx, items, 2)
	assert.ErrorIs(t, err, context.Canceled)

	assert.NoError(t, New(nil).PreprocessAll(context.Background(), nil, 4))
}

func TestPreprocessExtraColours(t *testing.T) {
	it := item.New(item.Text("iPhone 13 Midnight"), nil, nil)
	New(nil, WithExtraColours([]string{"midnight"})).Preprocess(it)
	assert.True(t, it.ColourSet.Has("midnight"))

	plain := item.New(item.Text("iPhone 13 Midnight"), nil, nil)
	New(nil).Preprocess(plain)
	assert.False(t, plain.ColourSet.Has("midnight"))
}

func TestPreprocessCompoundColours(t *testing.T) {
	p := New(nil, WithExtraColours([]string{"# site", "Sierra Blue"}))

	it := item.New(item.Text("iPhone 13 Pro Sierra Blue 128GB"), nil, nil)
	p.Preprocess(it)
	assert.True(t, it.ColourSet.Equal(item.NewSet("sierra blue", "blue")))

	builtin := item.New(item.Text("Galaxy S8 Midnight Blue"), nil, nil)
	p.Preprocess(builtin)
	assert.True(t, builtin.ColourSet.Has("midnight blue"))
	assert.True(t, builtin.ColourSet.Has("blue"))
	assert.False(t, builtin.ColourSet.Has("midnight"))

	// the words of a phrase must be adjacent tokens
	apart := item.New(item.Text("Rose case, Gold trim"), nil, nil)
	p.Preprocess(apart)
	assert.False(t, apart.ColourSet.Has("rose gold"))
}
