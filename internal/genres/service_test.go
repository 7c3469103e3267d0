package genres

import (
	"testing"

	"github.com/stretchr/testify/require"

	"finitefield.org/podcast-catalog/internal/podcasts"
)

func testDictionary() []podcasts.Genre {
	return []podcasts.Genre{
		{ID: 1, Title: "Personal Growth"},
		{ID: 2, Title: "Investigative Journalism"},
		{ID: 3, Title: "History"},
	}
}

func TestNamesResolvesKnownIDs(t *testing.T) {
	t.Parallel()

	svc := NewService(testDictionary())
	require.Equal(t, []string{"Personal Growth", "Investigative Journalism"}, svc.Names([]int{1, 2}))
}

func TestNamesPreservesLengthOrderAndDuplicates(t *testing.T) {
	t.Parallel()

	svc := NewService(testDictionary())

	tests := []struct {
		name string
		ids  []int
		want []string
	}{
		{name: "nil input", ids: nil, want: []string{}},
		{name: "empty input", ids: []int{}, want: []string{}},
		{name: "reverse order", ids: []int{3, 1}, want: []string{"History", "Personal Growth"}},
		{name: "duplicates kept", ids: []int{2, 2, 1}, want: []string{"Investigative Journalism", "Investigative Journalism", "Personal Growth"}},
		{name: "unknown falls back in place", ids: []int{1, 999, 3}, want: []string{"Personal Growth", Unknown, "History"}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := svc.Names(tc.ids)
			require.Len(t, got, len(tc.ids))
			require.Equal(t, tc.want, got)
		})
	}
}

func TestZeroAndNilServiceFallBack(t *testing.T) {
	t.Parallel()

	var nilSvc *Service
	require.Equal(t, []string{Unknown}, nilSvc.Names([]int{1}))
	require.Equal(t, Unknown, (&Service{}).Name(1))
}

func TestFirstTitleWinsForDuplicateIDs(t *testing.T) {
	t.Parallel()

	svc := NewService([]podcasts.Genre{{ID: 7, Title: "Fiction"}, {ID: 7, Title: "Drama"}})
	require.Equal(t, "Fiction", svc.Name(7))
}
