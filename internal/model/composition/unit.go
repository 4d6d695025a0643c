package composition

// ArtifactRef identifies a generated or merged video: an opaque backend id
// plus a resolvable URL.
type ArtifactRef struct {
	ID  string `bson:"id" json:"id"`
	URL string `bson:"url" json:"url"`
}

// ClipRef points at an uploaded source clip in storage.
type ClipRef struct {
	Key         string `bson:"key" json:"key"`                   // storage object key
	URL         string `bson:"url" json:"url"`                   // resolvable URL
	ContentType string `bson:"content_type" json:"content_type"` // declared media type (video/mp4)
	Size        int64  `bson:"size" json:"size"`                 // bytes
	Filename    string `bson:"filename,omitempty" json:"filename,omitempty"`
}

// DialogUnit is one line of the composed video: one character, one content
// source, one generation result.
type DialogUnit struct {
	Index      int            `bson:"index" json:"index"` // stable 1-based identity, never reused in a session
	Character  Character      `bson:"character,omitempty" json:"character,omitempty"`
	Background Background     `bson:"background,omitempty" json:"background,omitempty"`
	Mode       GenerationMode `bson:"generation_mode,omitempty" json:"generation_mode,omitempty"`
	Dialog     string         `bson:"dialog,omitempty" json:"dialog,omitempty"` // required for text_to_video
	Clip       *ClipRef       `bson:"clip,omitempty" json:"clip,omitempty"`     // required for video_to_video
	Result     *ArtifactRef   `bson:"result,omitempty" json:"result,omitempty"`
	Status     UnitStatus     `bson:"status" json:"status"`
	LastError  string         `bson:"last_error,omitempty" json:"last_error,omitempty"`
}

// ValidationError is a user-correctable precondition failure. The message is
// shown to the operator as-is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// User-facing validation messages (the product speaks Spanish).
const (
	MsgBackgroundRequired = "Escenario requerido para generación de video"
	MsgCharacterRequired  = "Personaje requerido para generación de video"
	MsgClipRequired       = "Video requerido para generación de video"
	MsgDialogRequired     = "Diálogo requerido para generación de video"
	MsgModeRequired       = "Modo de generación requerido"
	MsgInvalidClip        = "Por favor selecciona un archivo de video MP4 válido"
)

// ValidateForGeneration checks the unit's generation preconditions in a fixed
// order; the first failure wins. No other place in the service decides which
// field combinations are generatable.
func (u *DialogUnit) ValidateForGeneration(requireBackground bool) error {
	if requireBackground && u.Background == "" {
		return &ValidationError{Message: MsgBackgroundRequired}
	}
	if u.Character == "" {
		return &ValidationError{Message: MsgCharacterRequired}
	}
	switch u.Mode {
	case ModeVideoToVideo:
		if u.Clip == nil {
			return &ValidationError{Message: MsgClipRequired}
		}
	case ModeTextToVideo:
		if u.Dialog == "" {
			return &ValidationError{Message: MsgDialogRequired}
		}
	default:
		return &ValidationError{Message: MsgModeRequired}
	}
	return nil
}

// IsReady reports whether the unit holds a successful result.
func (u *DialogUnit) IsReady() bool {
	return u.Status == UnitStatusReady && u.Result != nil && u.LastError == ""
}

// Clone returns a deep copy. The store hands out copies only, so callers can
// never mutate shared state behind the lock.
func (u *DialogUnit) Clone() DialogUnit {
	out := *u
	if u.Clip != nil {
		clip := *u.Clip
		out.Clip = &clip
	}
	if u.Result != nil {
		ref := *u.Result
		out.Result = &ref
	}
	return out
}
