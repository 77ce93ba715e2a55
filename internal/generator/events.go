package generator

// Event is one progress notification from a streaming generation run. The
// set of implementations is closed: a run emits exactly one DayNumberEvent
// first, zero or more ContentChunkEvents, one TitleEvent, one ExcerptEvent,
// then exactly one of CompleteEvent or ErrorEvent, after which the channel
// is closed. Nothing is re-ordered, duplicated, or emitted after a terminal
// event.
type Event interface {
	// EventName is the wire name used by the push transport.
	EventName() string
	isEvent()
}

// DayNumberEvent announces the sequence number assigned to the invocation.
type DayNumberEvent struct {
	DayNumber int `json:"day_number"`
}

// ContentChunkEvent carries one streamed body fragment, in arrival order.
type ContentChunkEvent struct {
	Chunk string `json:"chunk"`
}

// TitleEvent carries the derived title.
type TitleEvent struct {
	Title string `json:"title"`
}

// ExcerptEvent carries the derived excerpt.
type ExcerptEvent struct {
	Excerpt string `json:"excerpt"`
}

// CompleteEvent is the successful terminal event with the assembled entry.
type CompleteEvent struct {
	Success   bool   `json:"success"`
	DayNumber int    `json:"day_number"`
	Title     string `json:"title"`
	Excerpt   string `json:"excerpt"`
	Content   string `json:"content"`
}

// ErrorEvent is the failing terminal event.
type ErrorEvent struct {
	Message string `json:"error"`
}

// EventName implements Event.
func (DayNumberEvent) EventName() string    { return "day_number" }
func (ContentChunkEvent) EventName() string { return "content_chunk" }
func (TitleEvent) EventName() string        { return "title" }
func (ExcerptEvent) EventName() string      { return "excerpt" }
func (CompleteEvent) EventName() string     { return "complete" }
func (ErrorEvent) EventName() string        { return "error" }

func (DayNumberEvent) isEvent()    {}
func (ContentChunkEvent) isEvent() {}
func (TitleEvent) isEvent()        {}
func (ExcerptEvent) isEvent()      {}
func (CompleteEvent) isEvent()     {}
func (ErrorEvent) isEvent()        {}
