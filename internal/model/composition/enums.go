package composition

// Character is the persona speaking a dialog unit. Empty is a valid transient
// value while the operator is still editing.
type Character string

const (
	CharacterNarrador    Character = "Narrador"
	CharacterProgresista Character = "Progresista"
	CharacterConservador Character = "Conservador"
)

// Valid reports whether c is one of the known personas.
func (c Character) Valid() bool {
	switch c {
	case CharacterNarrador, CharacterProgresista, CharacterConservador:
		return true
	}
	return false
}

// String returns the character name.
func (c Character) String() string {
	return string(c)
}

// Background is the scene tag behind a unit. Optional; some product variants
// omit it entirely.
type Background string

const (
	BackgroundCityHall   Background = "cityhall"
	BackgroundHome       Background = "home"
	BackgroundNewscast   Background = "newscast"
	BackgroundPodcast    Background = "podcast"
	BackgroundStreet     Background = "street"
	BackgroundUniversity Background = "university"
)

// Valid reports whether b is one of the known scenes.
func (b Background) Valid() bool {
	switch b {
	case BackgroundCityHall, BackgroundHome, BackgroundNewscast,
		BackgroundPodcast, BackgroundStreet, BackgroundUniversity:
		return true
	}
	return false
}

// String returns the scene tag.
func (b Background) String() string {
	return string(b)
}

// GenerationMode selects the backend and the required content for a unit.
// Empty means the operator has not chosen yet.
type GenerationMode string

const (
	ModeTextToVideo  GenerationMode = "text_to_video"  // Hedra-style backend, needs dialog text
	ModeVideoToVideo GenerationMode = "video_to_video" // Runway-style backend, needs a source clip
)

// Valid reports whether m is a known mode.
func (m GenerationMode) Valid() bool {
	return m == ModeTextToVideo || m == ModeVideoToVideo
}

// String returns the mode name.
func (m GenerationMode) String() string {
	return string(m)
}

// UnitStatus is the per-unit generation state.
type UnitStatus string

const (
	UnitStatusIdle       UnitStatus = "idle"
	UnitStatusProcessing UnitStatus = "processing"
	UnitStatusReady      UnitStatus = "ready"
	UnitStatusFailed     UnitStatus = "failed"
)

// String returns the status name.
func (s UnitStatus) String() string {
	return string(s)
}

// MergeStatus is the composite merge state.
type MergeStatus string

const (
	MergeStatusIdle    MergeStatus = "idle"
	MergeStatusMerging MergeStatus = "merging"
	MergeStatusReady   MergeStatus = "ready"
	MergeStatusFailed  MergeStatus = "failed"
)

// String returns the status name.
func (s MergeStatus) String() string {
	return string(s)
}

// PublishStatus is the publish state of a merged composite.
type PublishStatus string

const (
	PublishStatusIdle       PublishStatus = "idle"
	PublishStatusPublishing PublishStatus = "publishing"
	PublishStatusReady      PublishStatus = "ready"
	PublishStatusFailed     PublishStatus = "failed"
)

// String returns the status name.
func (s PublishStatus) String() string {
	return string(s)
}
