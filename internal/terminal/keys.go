package terminal

import tea "github.com/charmbracelet/bubbletea"

// sequences maps non-printable keys to the bytes an xterm sends for them.
var sequences = map[tea.KeyType]string{
	tea.KeyEnter:     "\r",
	tea.KeyBackspace: "\x7f",
	tea.KeyTab:       "\t",
	tea.KeyEsc:       "\x1b",
	tea.KeySpace:     " ",

	tea.KeyUp:    "\x1b[A",
	tea.KeyDown:  "\x1b[B",
	tea.KeyRight: "\x1b[C",
	tea.KeyLeft:  "\x1b[D",

	tea.KeyHome:   "\x1b[H",
	tea.KeyEnd:    "\x1b[F",
	tea.KeyPgUp:   "\x1b[5~",
	tea.KeyPgDown: "\x1b[6~",
	tea.KeyDelete: "\x1b[3~",
	tea.KeyInsert: "\x1b[2~",

	tea.KeyShiftTab:   "\x1b[Z",
	tea.KeyCtrlUp:     "\x1b[1;5A",
	tea.KeyCtrlDown:   "\x1b[1;5B",
	tea.KeyCtrlRight:  "\x1b[1;5C",
	tea.KeyCtrlLeft:   "\x1b[1;5D",
	tea.KeyShiftUp:    "\x1b[1;2A",
	tea.KeyShiftDown:  "\x1b[1;2B",
	tea.KeyShiftRight: "\x1b[1;2C",
	tea.KeyShiftLeft:  "\x1b[1;2D",

	tea.KeyF1:  "\x1bOP",
	tea.KeyF2:  "\x1bOQ",
	tea.KeyF3:  "\x1bOR",
	tea.KeyF4:  "\x1bOS",
	tea.KeyF5:  "\x1b[15~",
	tea.KeyF6:  "\x1b[17~",
	tea.KeyF7:  "\x1b[18~",
	tea.KeyF8:  "\x1b[19~",
	tea.KeyF9:  "\x1b[20~",
	tea.KeyF10: "\x1b[21~",
	tea.KeyF11: "\x1b[23~",
	tea.KeyF12: "\x1b[24~",
}

// KeyBytes converts a Bubble Tea key message back to the raw bytes a
// terminal would have sent. It returns nil for keys it cannot encode.
func KeyBytes(msg tea.KeyMsg) []byte {
	if msg.Alt {
		inner := KeyBytes(tea.KeyMsg{Type: msg.Type, Runes: msg.Runes, Paste: msg.Paste})
		if inner == nil {
			return nil
		}
		return append([]byte{0x1b}, inner...)
	}

	if msg.Type == tea.KeyRunes {
		if msg.Paste {
			return []byte("\x1b[200~" + string(msg.Runes) + "\x1b[201~")
		}
		return []byte(string(msg.Runes))
	}
	if seq, ok := sequences[msg.Type]; ok {
		return []byte(seq)
	}

	// Ctrl+key: C0 control codes (0-31)
	if t := int(msg.Type); t >= 0 && t <= 31 {
		return []byte{byte(t)}
	}
	return nil
}
