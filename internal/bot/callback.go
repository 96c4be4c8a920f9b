package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/example/orfobot/pkg/models"
)

// CallbackKind is the command carried by an inline button
type CallbackKind string

const (
	CallbackMainMenu      CallbackKind = "menu"
	CallbackTraining      CallbackKind = "train" // Category menu
	CallbackCategory      CallbackKind = "cat"   // Category picked, ask for the word count
	CallbackCount         CallbackKind = "cnt"   // Category and word count picked
	CallbackAnswer        CallbackKind = "ans"   // Choice answer by question number and option index
	CallbackFinish        CallbackKind = "fin"
	CallbackErrors        CallbackKind = "err"
	CallbackMastered      CallbackKind = "mst"
	CallbackStats         CallbackKind = "st"
	CallbackDictionary    CallbackKind = "dict"
	CallbackTop           CallbackKind = "top"
	CallbackSettings      CallbackKind = "set"
	CallbackNotifications CallbackKind = "ntf"
	CallbackHelp          CallbackKind = "help"

	CallbackAdmin            CallbackKind = "adm"
	CallbackAdminAdd         CallbackKind = "aadd"
	CallbackAdminList        CallbackKind = "alist"
	CallbackAdminDelete      CallbackKind = "adel"
	CallbackAdminStats       CallbackKind = "astat"
	CallbackAdminImport      CallbackKind = "aimp"
	CallbackDraftCategory    CallbackKind = "dcat"
	CallbackDraftExplanation CallbackKind = "dexp"
	CallbackCancel           CallbackKind = "cancel"
)

// maxCallbackData is Telegram's limit on callback_data
const maxCallbackData = 64

// ErrBadCallback is returned for callback data this bot did not produce
var ErrBadCallback = errors.New("malformed callback data")

// Callback is a decoded button press
type Callback struct {
	Kind     CallbackKind
	Category models.Category
	Count    int    // Words for CallbackCount
	Days     int    // Period for CallbackStats, 0 for all time
	Number   int    // Question for CallbackAnswer, 1-based
	Index    int    // Option for CallbackAnswer
	Enabled  bool   // Flag for CallbackNotifications and CallbackDraftExplanation
	Handle   string // Session for CallbackAnswer and CallbackFinish
}

// Encode renders the callback as button data
func (c Callback) Encode() string {
	parts := []string{string(c.Kind)}
	switch c.Kind {
	case CallbackCategory, CallbackMastered, CallbackAdminList, CallbackDraftCategory:
		parts = append(parts, string(c.Category))
	case CallbackCount:
		parts = append(parts, string(c.Category), strconv.Itoa(c.Count))
	case CallbackAnswer:
		parts = append(parts, c.Handle, strconv.Itoa(c.Number), strconv.Itoa(c.Index))
	case CallbackFinish:
		parts = append(parts, c.Handle)
	case CallbackStats:
		parts = append(parts, strconv.Itoa(c.Days))
	case CallbackNotifications, CallbackDraftExplanation:
		parts = append(parts, boolFlag(c.Enabled))
	}
	return strings.Join(parts, ":")
}

// ParseCallback decodes button data produced by Encode
func ParseCallback(data string) (Callback, error) {
	if data == "" || len(data) > maxCallbackData {
		return Callback{}, ErrBadCallback
	}
	parts := strings.Split(data, ":")
	c := Callback{Kind: CallbackKind(parts[0])}
	args := parts[1:]

	bad := func() (Callback, error) {
		return Callback{}, fmt.Errorf("%w: %q", ErrBadCallback, data)
	}

	switch c.Kind {
	case CallbackMainMenu, CallbackTraining, CallbackErrors, CallbackDictionary, CallbackTop,
		CallbackSettings, CallbackHelp, CallbackAdmin, CallbackAdminAdd, CallbackAdminDelete,
		CallbackAdminStats, CallbackAdminImport, CallbackCancel:
		if len(args) != 0 {
			return bad()
		}

	case CallbackCategory, CallbackMastered, CallbackAdminList:
		if len(args) != 1 || !selectable(models.Category(args[0])) {
			return bad()
		}
		c.Category = models.Category(args[0])

	case CallbackDraftCategory:
		if len(args) != 1 || !models.Category(args[0]).Valid() {
			return bad()
		}
		c.Category = models.Category(args[0])

	case CallbackCount:
		if len(args) != 2 || !selectable(models.Category(args[0])) {
			return bad()
		}
		n, err := strconv.Atoi(args[1])
		if err != nil || n <= 0 {
			return bad()
		}
		c.Category, c.Count = models.Category(args[0]), n

	case CallbackAnswer:
		if len(args) != 3 {
			return bad()
		}
		if _, err := uuid.Parse(args[0]); err != nil {
			return bad()
		}
		number, err := strconv.Atoi(args[1])
		if err != nil || number <= 0 {
			return bad()
		}
		n, err := strconv.Atoi(args[2])
		if err != nil || n < 0 {
			return bad()
		}
		c.Handle, c.Number, c.Index = args[0], number, n

	case CallbackFinish:
		if len(args) != 1 {
			return bad()
		}
		if _, err := uuid.Parse(args[0]); err != nil {
			return bad()
		}
		c.Handle = args[0]

	case CallbackStats:
		if len(args) != 1 {
			return bad()
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return bad()
		}
		c.Days = n

	case CallbackNotifications, CallbackDraftExplanation:
		if len(args) != 1 || (args[0] != "0" && args[0] != "1") {
			return bad()
		}
		c.Enabled = args[0] == "1"

	default:
		return bad()
	}
	return c, nil
}

// selectable reports whether c can be picked in a menu, mixed included
func selectable(c models.Category) bool {
	return c == models.CategoryMixed || c.Valid()
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
