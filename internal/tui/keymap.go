package tui

// Two 12-key blocks, one per side of the keyboard. Slot i of human player p
// is bound to keyRows[p][i].
var keyRows = [][]string{
	{"q", "w", "e", "r", "a", "s", "d", "f", "z", "x", "c", "v"},
	{"u", "i", "o", "p", "j", "k", "l", ";", "m", ",", ".", "/"},
}

// MaxKeyboardPlayers is how many human players can share one keyboard.
const MaxKeyboardPlayers = 2

// KeyTarget is the player and slot a key stands for.
type KeyTarget struct {
	Player int
	Slot   int
}

// Keymap maps key names, as reported by bubbletea, to slots.
type Keymap map[string]KeyTarget

// NewKeymap binds keys for the first humans players. Slots beyond the
// twelfth and players beyond MaxKeyboardPlayers get no key.
func NewKeymap(humans, tableSize int) Keymap {
	km := make(Keymap)
	for p := range min(humans, MaxKeyboardPlayers) {
		for slot := range min(tableSize, len(keyRows[p])) {
			km[keyRows[p][slot]] = KeyTarget{Player: p, Slot: slot}
		}
	}
	return km
}

// KeyFor returns the key bound to slot for player, if any.
func (k Keymap) KeyFor(player, slot int) (string, bool) {
	if player < 0 || player >= len(keyRows) || slot < 0 || slot >= len(keyRows[player]) {
		return "", false
	}
	key := keyRows[player][slot]
	if t, ok := k[key]; !ok || t.Player != player {
		return "", false
	}
	return key, true
}
