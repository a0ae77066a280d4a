package workflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"taskportal/internal/model"
)

func TestAllowedNextTable(t *testing.T) {
	cases := []struct {
		from model.Status
		want []model.Status
	}{
		{model.StatusPending, []model.Status{model.StatusInProgress}},
		{model.StatusInProgress, []model.Status{model.StatusCompleted}},
		{model.StatusCompleted, nil},
		{"archived", nil},
		{"", nil},
		{"PENDING", nil},
	}
	for _, tc := range cases {
		t.Run(string(tc.from), func(t *testing.T) {
			got := AllowedNext(tc.from)
			require.Equal(t, tc.want, got)
			require.LessOrEqual(t, len(got), 1)
		})
	}
}

func TestCompletedIsTerminal(t *testing.T) {
	require.Empty(t, AllowedNext(model.StatusCompleted))
	require.True(t, IsTerminal(model.StatusCompleted))
	require.False(t, IsTerminal(model.StatusPending))
	for _, to := range []model.Status{model.StatusPending, model.StatusInProgress, model.StatusCompleted} {
		require.False(t, CanTransition(model.StatusCompleted, to))
	}
}

func TestCheckTransition(t *testing.T) {
	require.NoError(t, CheckTransition(model.StatusPending, model.StatusInProgress))
	require.NoError(t, CheckTransition(model.StatusInProgress, model.StatusCompleted))

	// no skipping, no reversal, no self-loop
	for _, pair := range [][2]model.Status{
		{model.StatusPending, model.StatusCompleted},
		{model.StatusInProgress, model.StatusPending},
		{model.StatusCompleted, model.StatusInProgress},
		{model.StatusPending, model.StatusPending},
	} {
		err := CheckTransition(pair[0], pair[1])
		require.True(t, errors.Is(err, ErrInvalidTransition), "%s -> %s", pair[0], pair[1])

		var te *TransitionError
		require.True(t, errors.As(err, &te))
		require.Equal(t, pair[0], te.From)
		require.Equal(t, pair[1], te.To)
	}
}

func TestParseStatus(t *testing.T) {
	s, err := model.ParseStatus("in-progress")
	require.NoError(t, err)
	require.Equal(t, model.StatusInProgress, s)

	_, err = model.ParseStatus("done")
	require.Error(t, err)
}
