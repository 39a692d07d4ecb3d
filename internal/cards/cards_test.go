package cards

import (
	"slices"
	"testing"

	"github.com/lox/setforbots/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClassicOracle(t *testing.T) *FeatureOracle {
	t.Helper()
	oracle, err := NewFeatureOracle(Classic)
	require.NoError(t, err)
	return oracle
}

func TestEncodingRoundTrip(t *testing.T) {
	t.Parallel()
	enc := Classic
	assert.Equal(t, 81, enc.DeckSize())
	for c := range enc.DeckSize() {
		card := Card(c)
		assert.Equal(t, card, enc.Card(enc.Features(card)))
	}
	assert.Equal(t, "2100", enc.Describe(Card(2+1*3)))
	assert.Equal(t, "-", enc.Describe(None))
}

func TestIsSet(t *testing.T) {
	t.Parallel()
	oracle := newClassicOracle(t)
	enc := oracle.Encoding()

	tests := []struct {
		name     string
		features [][]int
		want     bool
	}{
		{"all same except one feature all different", [][]int{{0, 0, 0, 0}, {1, 0, 0, 0}, {2, 0, 0, 0}}, true},
		{"every feature different", [][]int{{0, 1, 2, 0}, {1, 2, 0, 1}, {2, 0, 1, 2}}, true},
		{"one feature two and one", [][]int{{0, 0, 0, 0}, {0, 0, 0, 1}, {1, 0, 0, 2}}, false},
		{"two equal one different", [][]int{{0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 1}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := make([]Card, len(tt.features))
			for i, f := range tt.features {
				cs[i] = enc.Card(f)
			}
			got, err := oracle.IsSet(cs...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("wrong arity is not a set", func(t *testing.T) {
		got, err := oracle.IsSet(0, 1)
		require.NoError(t, err)
		assert.False(t, got)
	})

	t.Run("out of range card is an error", func(t *testing.T) {
		_, err := oracle.IsSet(0, 1, 81)
		require.ErrorIs(t, err, ErrInvalidCard)
	})
}

func TestFindSetsFullDeck(t *testing.T) {
	t.Parallel()
	oracle := newClassicOracle(t)

	all := make([]Card, 81)
	for i := range all {
		all[i] = Card(i)
	}
	sets, err := oracle.FindSets(all, 0)
	require.NoError(t, err)
	assert.Len(t, sets, 1080)

	for _, set := range sets[:50] {
		ok, err := oracle.IsSet(set...)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, slices.IsSorted(set))
	}

	limited, err := oracle.FindSets(all, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestFindSetsNoneAndDuplicates(t *testing.T) {
	t.Parallel()
	oracle := newClassicOracle(t)
	enc := oracle.Encoding()

	a := enc.Card([]int{0, 0, 0, 0})
	b := enc.Card([]int{1, 0, 0, 0})
	c := enc.Card([]int{2, 0, 0, 0})
	d := enc.Card([]int{0, 1, 0, 0})

	sets, err := oracle.FindSets([]Card{a, b, d}, 0)
	require.NoError(t, err)
	assert.Empty(t, sets)

	sets, err = oracle.FindSets([]Card{a, b, a, c, b}, 0)
	require.NoError(t, err)
	assert.Equal(t, [][]Card{{a, b, c}}, sets)
}

func TestCompleteMatchesIsSet(t *testing.T) {
	t.Parallel()
	oracle := newClassicOracle(t)
	for a := Card(0); a < 81; a += 7 {
		for b := a + 1; b < 81; b += 5 {
			third, ok := oracle.Complete([]Card{a, b})
			require.True(t, ok)
			isSet, err := oracle.IsSet(a, b, third)
			require.NoError(t, err)
			assert.True(t, isSet, "cards %d %d %d", a, b, third)
		}
	}
}

func TestNewFeatureOracleRejectsSmallFeatures(t *testing.T) {
	t.Parallel()
	_, err := NewFeatureOracle(Encoding{FeatureCount: 4, FeatureSize: 2})
	require.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestDeckDrawWithoutReplacement(t *testing.T) {
	t.Parallel()
	d := NewDeck(81, randutil.New(42))
	require.Equal(t, 81, d.Len())

	seen := make(map[Card]bool)
	for !d.IsEmpty() {
		c, ok := d.Draw()
		require.True(t, ok)
		require.False(t, seen[c], "card %d drawn twice", c)
		seen[c] = true
	}
	assert.Len(t, seen, 81)

	_, ok := d.Draw()
	assert.False(t, ok)

	d.Return(5)
	d.Return(9)
	d.Shuffle()
	assert.ElementsMatch(t, []Card{5, 9}, d.Cards())
}

func TestDeckIsDeterministicForSeed(t *testing.T) {
	t.Parallel()
	a := NewDeck(81, randutil.New(7))
	b := NewDeck(81, randutil.New(7))
	for range 12 {
		ca, _ := a.Draw()
		cb, _ := b.Draw()
		assert.Equal(t, ca, cb)
	}
}
