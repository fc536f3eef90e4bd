package interaction

// Action is a player command bound to a key.
type Action int

const (
	ActionNone Action = iota
	ActionToggle
	ActionSeekBack
	ActionSeekForward
	ActionSpeedOption
	ActionToggleSkip
	ActionPrevious
	ActionNext
	ActionTogglePrevious
	ActionToggleNext
	ActionPopup
	ActionHelp
	ActionTag
	ActionQuit
)

// Command is a resolved key press. Index is the speed option for
// ActionSpeedOption.
type Command struct {
	Action Action
	Index  int
}

// Binding documents one key for the help overlay.
type Binding struct {
	Keys        string
	Description string
}

// Bindings lists the key map in display order.
var Bindings = []Binding{
	{Keys: "space", Description: "play / pause"},
	{Keys: "←/→", Description: "seek 5s"},
	{Keys: "1-4", Description: "speed option"},
	{Keys: "s", Description: "skip inactive"},
	{Keys: "p/n", Description: "previous / next activity"},
	{Keys: "P/N", Description: "lock previous / next"},
	{Keys: "t", Description: "add tag"},
	{Keys: "o", Description: "options popup"},
	{Keys: "h", Description: "help"},
	{Keys: "q", Description: "quit"},
}

// Resolve maps a key event to a command.
func Resolve(ev KeyEvent) Command {
	switch ev.Type {
	case KeyLeft:
		return Command{Action: ActionSeekBack}
	case KeyRight:
		return Command{Action: ActionSeekForward}
	case KeyEscape:
		return Command{Action: ActionQuit}
	case KeyChar:
	default:
		return Command{}
	}

	switch ev.Key {
	case ' ':
		return Command{Action: ActionToggle}
	case '1', '2', '3', '4':
		return Command{Action: ActionSpeedOption, Index: int(ev.Key - '1')}
	case 's', 'S':
		return Command{Action: ActionToggleSkip}
	case 'p':
		return Command{Action: ActionPrevious}
	case 'n':
		return Command{Action: ActionNext}
	case 'P':
		return Command{Action: ActionTogglePrevious}
	case 'N':
		return Command{Action: ActionToggleNext}
	case 'o', 'O':
		return Command{Action: ActionPopup}
	case 'h', 'H', '?':
		return Command{Action: ActionHelp}
	case 't', 'T':
		return Command{Action: ActionTag}
	case 'q', 'Q', 3: // Ctrl+C
		return Command{Action: ActionQuit}
	}
	return Command{}
}
