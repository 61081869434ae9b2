package openai

import (
	"encoding/json"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/travel-assistant/internal/domain"
)

// searchParams is the shared JSON schema for the three catalogue search tools.
var searchParams = json.RawMessage(`{
	"type": "object",
	"properties": {
		"query": {"type": "string", "description": "Search keywords"},
		"city": {"type": "string", "description": "Target city for search"},
		"k": {
			"type": "integer",
			"minimum": 1,
			"maximum": 5,
			"default": 3,
			"description": "Number of results to return"
		}
	},
	"required": ["query"]
}`)

// adviceParams is the TravelAdvice schema presented to the model as the
// terminal return_advice tool.
var adviceParams = json.RawMessage(`{
	"type": "object",
	"properties": {
		"destination": {"type": "string", "description": "Recommended destination city"},
		"reason": {"type": "string", "description": "Why this destination fits the request"},
		"budget": {"type": "string", "description": "Indicative budget level"},
		"tips": {
			"type": "array",
			"items": {"type": "string"},
			"description": "Practical travel tips"
		},
		"hotel": {"type": "object", "description": "Selected hotel from the catalogue"},
		"flight": {"type": "object", "description": "Selected flight from the catalogue"},
		"experience": {"type": "object", "description": "Selected experience from the catalogue"}
	},
	"required": ["destination", "reason", "budget", "tips"]
}`)

func tool(name, description string, params json.RawMessage) openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        name,
			Description: description,
			Parameters:  params,
		},
	}
}

// toolCatalogue is the fixed tool set offered on every model turn.
var toolCatalogue = []openai.Tool{
	tool(domain.ToolNameSearchHotels, "Search hotels in our catalogue", searchParams),
	tool(domain.ToolNameSearchFlights, "Search available flights", searchParams),
	tool(domain.ToolNameSearchExperiences, "Search travel experiences and activities", searchParams),
	tool(domain.ToolNameReturnAdvice, "Return final structured travel advice", adviceParams),
}
