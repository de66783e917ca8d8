package wizard

import (
	"testing"

	"github.com/forklift-dev/forklift/internal/tui/testfixtures"
	"github.com/stretchr/testify/require"
)

func TestCreateBackNextButtons(t *testing.T) {
	t.Parallel()

	first := CreateBackNextButtons(true, false, "Next →")
	require.Equal(t, "Cancel", first[0].Label)
	require.Equal(t, ButtonDisabled, first[1].State)

	later := CreateBackNextButtons(false, true, "Create Job")
	require.Equal(t, "← Back", later[0].Label)
	require.Equal(t, "Create Job", later[1].Label)
	require.Equal(t, ButtonNormal, later[1].State)
}

func TestButtonBar_FocusSkipsDisabled(t *testing.T) {
	t.Parallel()

	bar := NewButtonBar(CreateBackNextButtons(false, false, "Next →"))
	_, ok := bar.FocusedButton()
	require.False(t, ok)

	require.True(t, bar.FocusFirst())
	require.False(t, bar.FocusNext(), "Next is disabled")
	btn, _ := bar.FocusedButton()
	require.Equal(t, ButtonBack, btn.ID)

	bar.SetButtons(CreateBackNextButtons(false, true, "Next →"))
	require.True(t, bar.FocusNext())
	btn, _ = bar.FocusedButton()
	require.Equal(t, ButtonNext, btn.ID)
	require.True(t, bar.FocusPrev())
	require.False(t, bar.FocusPrev())

	require.True(t, bar.FocusLast())
	bar.Blur()
	_, ok = bar.FocusedButton()
	require.False(t, ok)
}

func TestButtonBar_Render(t *testing.T) {
	t.Parallel()

	bar := NewButtonBar(CreateBackNextButtons(false, true, "Create Job"))
	bar.SetWidth(60)
	out := testfixtures.Plain(bar.Render())
	require.Contains(t, out, "← Back")
	require.Contains(t, out, "Create Job")
}

func TestListWindow(t *testing.T) {
	t.Parallel()

	w := listWindow{height: 3}
	for range 5 {
		w.down(10)
	}
	start, end := w.bounds(10)
	require.Equal(t, 5, w.cursor)
	require.Equal(t, 3, start)
	require.Equal(t, 6, end)

	for range 20 {
		w.down(10)
	}
	require.Equal(t, 9, w.cursor)
	start, end = w.bounds(10)
	require.Equal(t, 7, start)
	require.Equal(t, 10, end)

	// Shrinking the list pulls the cursor back in.
	start, end = w.bounds(2)
	require.Equal(t, 1, w.cursor)
	require.Equal(t, 0, start)
	require.Equal(t, 2, end)
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	require.Equal(t, "short", truncate("short", 10))
	require.Equal(t, "internal/…", truncate("internal/auth/login.go", 10))
	require.Equal(t, "abc", truncate("abc", 0))
}

func TestRenderHintBar(t *testing.T) {
	t.Parallel()

	require.Equal(t, "enter select • esc back", testfixtures.Plain(renderHintBar("enter", "select", "esc", "back")))
	require.Empty(t, renderHintBar("odd"))
}
