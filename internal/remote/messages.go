// ABOUTME: JSON messages exchanged on the remote trigger websocket
// ABOUTME: Clients send play and list requests; the server answers with ok, samples or error
package remote

// Message types
const (
	TypeHello   = "hello"
	TypePlay    = "play"
	TypeList    = "list"
	TypeOK      = "ok"
	TypeSamples = "samples"
	TypeError   = "error"
)

// Message is the single envelope used in both directions
type Message struct {
	Type string `json:"type"`

	// play request
	Sample string   `json:"sample,omitempty"`
	Gain   *float64 `json:"gain,omitempty"`
	Pitch  *float64 `json:"pitch,omitempty"`

	// replies
	Samples []string `json:"samples,omitempty"`
	Error   string   `json:"error,omitempty"`

	// hello
	ConnectionID string `json:"connection_id,omitempty"`
	Server       string `json:"server,omitempty"`
	Version      string `json:"version,omitempty"`
}

// gainOrDefault returns the requested gain, 1.0 when omitted
func (m Message) gainOrDefault() float64 {
	if m.Gain == nil {
		return 1.0
	}
	return *m.Gain
}

// pitchOrDefault returns the requested pitch, 1.0 when omitted
func (m Message) pitchOrDefault() float64 {
	if m.Pitch == nil {
		return 1.0
	}
	return *m.Pitch
}
