package moderation

// Kind is the raw content kind of an inbound message, as seen on the wire.
type Kind int

const (
	KindOther Kind = iota
	KindText
	KindPhoto
	KindVideo
	KindSticker
	KindVoice
	KindAudio
	KindDocument
	KindPoll
)

// Message is a transport-agnostic view of one inbound group message.
// The telegram adapter builds it from the wire type.
type Message struct {
	ChatID       int64
	ChatTitle    string
	ChatUsername string
	MessageID    int
	UserID       int64
	Username     string
	UnixTime     int64
	IsGroup      bool

	Kind         Kind
	Text         string
	HasLink      bool
	AudioTitle   string
	DocumentName string
}
