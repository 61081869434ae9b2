package domain

// Tool is the closed set of functions exposed to the language model.
// Dispatch is by exhaustive switch; anything outside the set parses to
// ToolUnknown, which the orchestrator treats as an unrecoverable turn.
type Tool int

const (
	ToolUnknown Tool = iota
	ToolSearchHotels
	ToolSearchFlights
	ToolSearchExperiences
	ToolReturnAdvice
)

// Wire names of the tools, as declared to the model.
const (
	ToolNameSearchHotels      = "search_hotels"
	ToolNameSearchFlights     = "search_flights"
	ToolNameSearchExperiences = "search_experiences"
	ToolNameReturnAdvice      = "return_advice"
)

// ParseTool maps a model-supplied function name onto the closed tool set.
func ParseTool(name string) Tool {
	switch name {
	case ToolNameSearchHotels:
		return ToolSearchHotels
	case ToolNameSearchFlights:
		return ToolSearchFlights
	case ToolNameSearchExperiences:
		return ToolSearchExperiences
	case ToolNameReturnAdvice:
		return ToolReturnAdvice
	default:
		return ToolUnknown
	}
}

func (t Tool) String() string {
	switch t {
	case ToolSearchHotels:
		return ToolNameSearchHotels
	case ToolSearchFlights:
		return ToolNameSearchFlights
	case ToolSearchExperiences:
		return ToolNameSearchExperiences
	case ToolReturnAdvice:
		return ToolNameReturnAdvice
	default:
		return "unknown"
	}
}

// Kind returns the catalogue kind a search tool targets.
func (t Tool) Kind() (Kind, bool) {
	switch t {
	case ToolSearchHotels:
		return KindHotels, true
	case ToolSearchFlights:
		return KindFlights, true
	case ToolSearchExperiences:
		return KindExperiences, true
	default:
		return "", false
	}
}
