package bot

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/orfobot/pkg/models"
)

func TestCallbackRoundTrip(t *testing.T) {
	handle := uuid.NewString()
	cases := []Callback{
		{Kind: CallbackMainMenu},
		{Kind: CallbackTraining},
		{Kind: CallbackCategory, Category: models.CategoryStress},
		{Kind: CallbackCategory, Category: models.CategoryMixed},
		{Kind: CallbackCount, Category: models.CategoryNeParticle, Count: 50},
		{Kind: CallbackAnswer, Handle: handle, Number: 1, Index: 2},
		{Kind: CallbackAnswer, Handle: handle, Number: 50, Index: 0},
		{Kind: CallbackFinish, Handle: handle},
		{Kind: CallbackErrors},
		{Kind: CallbackMastered, Category: models.CategoryMixed},
		{Kind: CallbackStats, Days: 30},
		{Kind: CallbackStats, Days: 0},
		{Kind: CallbackNotifications, Enabled: true},
		{Kind: CallbackNotifications, Enabled: false},
		{Kind: CallbackAdminList, Category: models.CategoryRoots},
		{Kind: CallbackDraftCategory, Category: models.CategoryDoubleN},
		{Kind: CallbackDraftExplanation, Enabled: true},
		{Kind: CallbackCancel},
	}

	for _, want := range cases {
		data := want.Encode()
		t.Run(data, func(t *testing.T) {
			assert.LessOrEqual(t, len(data), maxCallbackData)
			got, err := ParseCallback(data)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestParseCallbackRejectsForeignData(t *testing.T) {
	handle := uuid.NewString()
	cases := []string{
		"",
		"start_learning",
		"menu:extra",
		"cat:unknown",
		"cnt:roots",
		"cnt:roots:0",
		"cnt:roots:x",
		"ans:not-a-uuid:1",
		"ans:" + handle + ":-1",
		"ans:" + handle + ":1:-1",
		"ans:" + handle + ":0:1",
		"ans:" + handle + ":x:1",
		"ans:" + handle + ":1",
		"ans:" + handle,
		"fin:",
		"st:-7",
		"ntf:yes",
		"dcat:mixed",
		"cat:roots:" + handle + ":" + handle,
	}

	for _, data := range cases {
		t.Run(data, func(t *testing.T) {
			_, err := ParseCallback(data)
			assert.ErrorIs(t, err, ErrBadCallback)
		})
	}
}

func TestKeyboardsFitCallbackLimit(t *testing.T) {
	var rows [][]MenuButton
	rows = append(rows, mainMenuButtons(true)...)
	rows = append(rows, adminButtons()...)
	rows = append(rows, categoryButtons(CallbackCategory, backToMenu)...)
	rows = append(rows, categoryButtons(CallbackDraftCategory, nil)...)
	rows = append(rows, countButtons(models.CategorySpelling, DefaultConfig().WordCounts)...)
	rows = append(rows, statsButtons(DefaultConfig().StatsPeriods)...)
	rows = append(rows, explanationButtons()...)

	for _, row := range rows {
		for _, button := range row {
			data := button.Callback.Encode()
			assert.LessOrEqual(t, len(data), maxCallbackData, button.Text)
			_, err := ParseCallback(data)
			assert.NoError(t, err, button.Text)
		}
	}
}
