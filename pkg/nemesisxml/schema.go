package nemesisxml

// classSchema is the closed, build-time table of Havok class names this
// parser recognises, each mapped to its fixed field set — the same
// "deliberately small, representative subset" simplification
// pkg/behaviorpath's CanonicalTemplates and pkg/animcatalog's schema already
// apply, not an exhaustive transcription of the real behavior graph's
// class/field catalog.
var classSchema = map[string][]string{
	"hkbObject":                  {"userData"},
	"hkbBehaviorGraphStringData": {"eventNames", "variableNames"},
	"hkbStateMachine":            {"enable", "startStateId", "returnToPreviousStateEventId"},
	"hkbFootIkControlsModifier":  {"contactEvent", "enable"},
}

func classKnown(class string) bool {
	_, ok := classSchema[class]
	return ok
}

func fieldKnown(class, field string) bool {
	for _, f := range classSchema[class] {
		if f == field {
			return true
		}
	}
	return false
}
