package converter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitTableRow(t *testing.T) {
	assert.Equal(t, []string{"", "Name", "Value", ""}, splitTableRow("^ Name ^ Value ^", '^'))
	assert.Equal(t, []string{"", "a", "", ""}, splitTableRow("| a || ", '|'))
}

func TestRenderTable(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, "", renderTable(nil))
	})

	t.Run("pads columns and underlines the first row", func(t *testing.T) {
		got := renderTable([][]string{
			{"", "Key", "Description", ""},
			{"", "a-long-key", "x", ""},
		})
		assert.Equal(t,
			" | Key        | Description | \n"+
				" | ---        | ----------- | \n"+
				" | a-long-key | x           | \n",
			got,
		)
	})

	t.Run("ragged rows", func(t *testing.T) {
		got := renderTable([][]string{
			{"A", "B"},
			{"one", "two", "three"},
		})
		assert.Equal(t,
			"A   | B  \n"+
				"-   | -  \n"+
				"one | two | three\n",
			got,
		)
	})

	t.Run("ragged rows widen every column they reach", func(t *testing.T) {
		rows := [][]string{
			{"A", "B"},
			{"one", "two", "three"},
			{"x", "y"},
		}
		assert.Equal(t, []int{3, 3, 5}, columnWidths(rows))

		lines := strings.Split(strings.TrimSuffix(renderTable(rows), "\n"), "\n")
		assert.Equal(t, []string{
			"A   | B  ",
			"-   | -  ",
			"one | two | three",
			"x   | y  ",
		}, lines)
	})

	t.Run("wide characters use display width", func(t *testing.T) {
		got := renderTable([][]string{
			{"名前", "x"},
			{"ab", "y"},
		})
		assert.Equal(t,
			"名前 | x\n"+
				"---- | -\n"+
				"ab   | y\n",
			got,
		)
	})
}
