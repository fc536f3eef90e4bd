package model

// ControlState holds the UI affordance toggles. None of them affect playback.
type ControlState struct {
	DisablePrevious bool `json:"disablePrevious"`
	DisableNext     bool `json:"disableNext"`
	PopupHidden     bool `json:"popupHidden"`
	ShowHelp        bool `json:"showHelp"`
}

// SourceEvent is an event handed over by a live ingestion source.
type SourceEvent struct {
	Source string
	Event  Event
	Err    error
}
