package requirements

// Summarize counts required records and how many of them are ready.
func Summarize(reqs []Requirement) Summary {
	s := Summary{MissingRequired: []Requirement{}}
	for _, r := range reqs {
		if !r.Required {
			continue
		}
		s.RequiredCount++
		if r.Ready {
			s.RequiredReadyCount++
			continue
		}
		s.MissingRequired = append(s.MissingRequired, r)
	}
	return s
}

// StateOf reports how a requirement should be labeled.
func StateOf(r Requirement) State {
	switch {
	case r.Ready:
		return StateReady
	case r.Required:
		return StateMissing
	default:
		return StateOptional
	}
}
