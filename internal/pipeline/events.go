package pipeline

// EventType identifies a server-sent event emitted during story generation.
type EventType string

const (
	EventConnection   EventType = "connection"
	EventProgress     EventType = "progress"
	EventImagePreview EventType = "image_preview"
	EventComplete     EventType = "complete"
	EventError        EventType = "error"
)

// Step names the generation phase a progress event refers to.
type Step string

const (
	StepValidating   Step = "validating"
	StepWriting      Step = "writing"
	StepIllustrating Step = "illustrating"
	StepSaving       Step = "saving"
)

// Event is a single message on the progress stream.
type Event struct {
	Type EventType
	Data any
}

// ConnectionData confirms the stream is established.
type ConnectionData struct {
	Status string `json:"status"`
}

// IllustrationProgress reports advancement through the pages.
type IllustrationProgress struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Detail  string `json:"detail,omitempty"`
}

// ProgressData reports a step starting, finishing, or advancing.
type ProgressData struct {
	Step                 Step                  `json:"step"`
	Status               string                `json:"status"`
	Message              string                `json:"message"`
	IllustrationProgress *IllustrationProgress `json:"illustrationProgress,omitempty"`
}

// ImagePreviewData carries an inline preview of a freshly generated page
// illustration, before the durable URL exists.
type ImagePreviewData struct {
	PageIndex  int    `json:"pageIndex"`
	PreviewURL string `json:"previewUrl"`
}

// CompleteData is the terminal success payload.
type CompleteData struct {
	StoryID string `json:"storyId"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// ErrorData is the terminal failure payload.
type ErrorData struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
