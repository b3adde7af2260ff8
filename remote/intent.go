package remote

// ActionPipControl names the signal carrying a PiP control code.
const ActionPipControl = "vidplay.PIP_CONTROL"

// ExtraActionType is the single integer field of the wire contract.
const ExtraActionType = "pip_action_type"

// Intent is one signal delivered over the channel.
type Intent struct {
	Action string         `json:"action"`
	Extras map[string]int `json:"extras,omitempty"`
}

// NewIntent builds the signal for a PiP control button.
func NewIntent(code Code) Intent {
	return Intent{
		Action: ActionPipControl,
		Extras: map[string]int{ExtraActionType: int(code)},
	}
}

// CodeFrom extracts the action code from an intent. Signals for other
// actions, missing extras and unknown codes all report false.
func CodeFrom(intent Intent) (Code, bool) {
	if intent.Action != ActionPipControl || intent.Extras == nil {
		return 0, false
	}

	raw, ok := intent.Extras[ExtraActionType]
	if !ok {
		return 0, false
	}

	code := Code(raw)
	if !code.Valid() {
		return 0, false
	}
	return code, true
}
