package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInlineMarkupKeepsRowsAndData(t *testing.T) {
	markup := inlineMarkup(Keyboard{
		{{Text: "1", Data: "rate_t_1"}, {Text: "2", Data: "rate_t_2"}},
		{{Text: "Finish", Data: "finish_t"}},
	})

	require.Len(t, markup.InlineKeyboard, 2)
	require.Len(t, markup.InlineKeyboard[0], 2)
	assert.Equal(t, "2", markup.InlineKeyboard[0][1].Text)
	require.NotNil(t, markup.InlineKeyboard[1][0].CallbackData)
	assert.Equal(t, "finish_t", *markup.InlineKeyboard[1][0].CallbackData)
}
