package gre

import "encoding/json"

// tagSet maps protocol string tags to a closed enumeration. Index 0 of
// names is the unknown variant and renders as "".
type tagSet[T ~int] struct {
	names  []string
	byName map[string]T
}

func newTagSet[T ~int](names ...string) tagSet[T] {
	m := make(map[string]T, len(names))
	for i, n := range names {
		if i > 0 {
			m[n] = T(i)
		}
	}
	return tagSet[T]{names: names, byName: m}
}

// decode never fails: non-string and unrecognized values map to unknown.
func (s tagSet[T]) decode(b []byte) T {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return 0
	}
	return s.byName[name]
}

func (s tagSet[T]) name(v T) string {
	if int(v) <= 0 || int(v) >= len(s.names) {
		return ""
	}
	return s.names[v]
}

// MessageType is the GREMessageType_* tag of a Message.
type MessageType int

const (
	MessageUnknown MessageType = iota
	MessageConnectResp
	MessageGameStateMessage
	MessageQueuedGameStateMessage
	MessageGetSettingsResp
	MessageSetSettingsResp
	MessageDieRollResultsResp
	MessageMulliganReq
	MessagePromptReq
	MessageTimerStateMessage
	MessageUIMessage
	MessageActionsAvailableReq
	MessageIntermissionReq
)

var messageTypes = newTagSet[MessageType](
	"",
	"GREMessageType_ConnectResp",
	"GREMessageType_GameStateMessage",
	"GREMessageType_QueuedGameStateMessage",
	"GREMessageType_GetSettingsResp",
	"GREMessageType_SetSettingsResp",
	"GREMessageType_DieRollResultsResp",
	"GREMessageType_MulliganReq",
	"GREMessageType_PromptReq",
	"GREMessageType_TimerStateMessage",
	"GREMessageType_UIMessage",
	"GREMessageType_ActionsAvailableReq",
	"GREMessageType_IntermissionReq",
)

func (t *MessageType) UnmarshalJSON(b []byte) error {
	*t = messageTypes.decode(b)
	return nil
}

func (t MessageType) String() string { return messageTypes.name(t) }

// ZoneType is the ZoneType_* tag of a Zone.
type ZoneType int

const (
	ZoneUnknown ZoneType = iota
	ZoneHand
	ZoneLibrary
	ZoneMainDeck
	ZoneSideboard
	ZoneBattlefield
	ZoneStack
	ZoneGraveyard
	ZoneExile
	ZoneLimbo
	ZoneRevealed
	ZonePending
	ZoneCommand
	ZoneSuppressed
	ZonePhasedOut
)

var zoneTypes = newTagSet[ZoneType](
	"",
	"ZoneType_Hand",
	"ZoneType_Library",
	"ZoneType_MainDeck",
	"ZoneType_Sideboard",
	"ZoneType_Battlefield",
	"ZoneType_Stack",
	"ZoneType_Graveyard",
	"ZoneType_Exile",
	"ZoneType_Limbo",
	"ZoneType_Revealed",
	"ZoneType_Pending",
	"ZoneType_Command",
	"ZoneType_Suppressed",
	"ZoneType_PhasedOut",
)

func (t *ZoneType) UnmarshalJSON(b []byte) error {
	*t = zoneTypes.decode(b)
	return nil
}

func (t ZoneType) String() string { return zoneTypes.name(t) }

// Visibility is the Visibility_* tag of a Zone or GameObject.
type Visibility int

const (
	VisibilityUnknown Visibility = iota
	VisibilityPublic
	VisibilityPrivate
	VisibilityHidden
)

var visibilities = newTagSet[Visibility](
	"",
	"Visibility_Public",
	"Visibility_Private",
	"Visibility_Hidden",
)

func (v *Visibility) UnmarshalJSON(b []byte) error {
	*v = visibilities.decode(b)
	return nil
}

func (v Visibility) String() string { return visibilities.name(v) }

// AnnotationType is the AnnotationType_* tag of an Annotation.
type AnnotationType int

const (
	AnnotationUnknown AnnotationType = iota
	AnnotationZoneTransfer
	AnnotationTappedUntappedPermanent
	AnnotationObjectIDChanged
	AnnotationResolutionStart
	AnnotationResolutionComplete
	AnnotationUserActionTaken
	AnnotationManaPaid
	AnnotationPhaseOrStepModified
	AnnotationNewTurnStarted
	AnnotationDamageDealt
	AnnotationModifiedLife
	AnnotationEnteredZoneThisTurn
)

var annotationTypes = newTagSet[AnnotationType](
	"",
	"AnnotationType_ZoneTransfer",
	"AnnotationType_TappedUntappedPermanent",
	"AnnotationType_ObjectIdChanged",
	"AnnotationType_ResolutionStart",
	"AnnotationType_ResolutionComplete",
	"AnnotationType_UserActionTaken",
	"AnnotationType_ManaPaid",
	"AnnotationType_PhaseOrStepModified",
	"AnnotationType_NewTurnStarted",
	"AnnotationType_DamageDealt",
	"AnnotationType_ModifiedLife",
	"AnnotationType_EnteredZoneThisTurn",
)

func (t *AnnotationType) UnmarshalJSON(b []byte) error {
	*t = annotationTypes.decode(b)
	return nil
}

func (t AnnotationType) String() string { return annotationTypes.name(t) }
