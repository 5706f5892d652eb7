package term

import "github.com/charmbracelet/bubbles/key"

// moveStep is how far one arrow press drags the focused window.
const moveStep = 20

type keyMap struct {
	Settings     key.Binding
	ClickThrough key.Binding
	Minimize     key.Binding
	Updates      key.Binding
	NextWindow   key.Binding
	CloseWindow  key.Binding
	Up           key.Binding
	Down         key.Binding
	Left         key.Binding
	Right        key.Binding
	Tray         key.Binding
	Help         key.Binding
	Quit         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Settings: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "settings"),
		),
		ClickThrough: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "click-through"),
		),
		Minimize: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "minimize"),
		),
		Updates: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "check updates"),
		),
		NextWindow: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "focus next"),
		),
		CloseWindow: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "close window"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "move down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "move left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "move right"),
		),
		Tray: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "tray"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "exit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Settings, k.NextWindow, k.CloseWindow, k.Tray, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Settings, k.ClickThrough, k.Minimize, k.Updates},
		{k.NextWindow, k.CloseWindow, k.Tray},
		{k.Up, k.Down, k.Left, k.Right},
		{k.Help, k.Quit},
	}
}

// reservedKeys lists every key the host binds itself. Hotkeys may not
// shadow them.
var reservedKeys = func() []string {
	k := defaultKeyMap()
	var keys []string
	for _, b := range []key.Binding{
		k.Settings, k.ClickThrough, k.Minimize, k.Updates, k.NextWindow, k.CloseWindow,
		k.Up, k.Down, k.Left, k.Right, k.Tray, k.Help, k.Quit,
	} {
		keys = append(keys, b.Keys()...)
	}
	return keys
}()
