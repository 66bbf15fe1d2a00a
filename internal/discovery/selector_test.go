package discovery

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctr/internal/domain"
)

func sampleInventory() []domain.TestCase {
	gtest := domain.Executable{Path: "/t/unit", Name: "unit"}
	catch2 := domain.Executable{Path: "/t/spec", Name: "spec"}
	opaque := domain.Executable{Path: "/t/tool", Name: "tool"}
	return []domain.TestCase{
		{Name: "SuiteA.Test1", Executable: gtest, Framework: domain.GoogleTest},
		{Name: "SuiteA.Test2", Executable: gtest, Framework: domain.GoogleTest},
		{Name: "SuiteB.Test3", Executable: gtest, Framework: domain.GoogleTest},
		{Name: "vectors resize", Executable: catch2, Framework: domain.Catch2},
		{Name: "tool", Executable: opaque, Framework: domain.Opaque},
	}
}

func TestFilter_FilterByPattern(t *testing.T) {
	filter := NewFilter()
	inventory := sampleInventory()

	tests := []struct {
		name    string
		pattern string
		want    []string
	}{
		{name: "empty keeps all", pattern: "", want: caseNames(inventory)},
		{name: "anchored suite", pattern: `^SuiteA\.`, want: []string{"SuiteA.Test1", "SuiteA.Test2"}},
		{name: "unanchored", pattern: "Test[13]", want: []string{"SuiteA.Test1", "SuiteB.Test3"}},
		{name: "no match", pattern: "^Nothing$", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := filter.FilterByPattern(inventory, tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, caseNames(got))
		})
	}

	t.Run("invalid pattern", func(t *testing.T) {
		_, err := filter.FilterByPattern(inventory, "Suite(")
		require.Error(t, err)
		assert.True(t, domain.IsConfigurationError(err))
	})
}

type fakePicker struct {
	picked []int
	err    error
	labels []string
}

func (f *fakePicker) Pick(_ context.Context, labels []string) ([]int, error) {
	f.labels = labels
	return f.picked, f.err
}

func TestSelector_Select(t *testing.T) {
	ctx := context.Background()
	inventory := sampleInventory()

	t.Run("non-interactive keeps order", func(t *testing.T) {
		got, err := NewSelector(NewFilter(), nil).Select(ctx, inventory, "", false)
		require.NoError(t, err)
		assert.Equal(t, inventory, got)
	})

	t.Run("picker order wins", func(t *testing.T) {
		picker := &fakePicker{picked: []int{2, 0, 2}}
		got, err := NewSelector(NewFilter(), picker).Select(ctx, inventory, "^Suite", true)
		require.NoError(t, err)
		assert.Equal(t, []string{"SuiteB.Test3", "SuiteA.Test1"}, caseNames(got))
		assert.Equal(t, []string{"SuiteA.Test1  (unit)", "SuiteA.Test2  (unit)", "SuiteB.Test3  (unit)"}, picker.labels)
	})

	t.Run("empty pick", func(t *testing.T) {
		got, err := NewSelector(NewFilter(), &fakePicker{}).Select(ctx, inventory, "", true)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("picker not consulted when filter leaves nothing", func(t *testing.T) {
		picker := &fakePicker{picked: []int{0}}
		got, err := NewSelector(NewFilter(), picker).Select(ctx, inventory, "^Nothing$", true)
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.Nil(t, picker.labels)
	})

	t.Run("picker failure is fatal", func(t *testing.T) {
		picker := &fakePicker{err: errors.New("no terminal")}
		_, err := NewSelector(NewFilter(), picker).Select(ctx, inventory, "", true)
		require.Error(t, err)
		var fatal *domain.FatalError
		assert.ErrorAs(t, err, &fatal)
	})

	t.Run("out of range index", func(t *testing.T) {
		_, err := NewSelector(NewFilter(), &fakePicker{picked: []int{9}}).Select(ctx, inventory, "", true)
		require.Error(t, err)
	})

	t.Run("interactive without picker", func(t *testing.T) {
		_, err := NewSelector(NewFilter(), nil).Select(ctx, inventory, "", true)
		require.Error(t, err)
		assert.True(t, domain.IsConfigurationError(err))
	})
}

func TestLabel(t *testing.T) {
	inventory := sampleInventory()
	assert.Equal(t, "vectors resize  (spec)", Label(inventory[3]))
	assert.Equal(t, "tool", Label(inventory[4]))
}
