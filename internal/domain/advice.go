package domain

import (
	"encoding/json"
	"fmt"
)

// TravelAdvice is the validated structured result of one advisory conversation.
// It is only ever constructed through ParseAdvice or one of the fallback
// constructors, so callers never see a structurally invalid instance.
type TravelAdvice struct {
	Destination string   `json:"destination"`
	Reason      string   `json:"reason"`
	Budget      string   `json:"budget"`
	Tips        []string `json:"tips"`
	Hotel       Row      `json:"hotel,omitempty"`
	Flight      Row      `json:"flight,omitempty"`
	Experience  Row      `json:"experience,omitempty"`
}

// ParseAdvice decodes and validates raw return_advice arguments.
// Type mismatches (e.g. a non-string tip) fail the decode; missing required
// fields fail Validate. Both are reported as ErrInvalidAdvice so the
// orchestrator can feed the message back to the model.
func ParseAdvice(raw []byte) (TravelAdvice, error) {
	var a TravelAdvice
	if err := json.Unmarshal(raw, &a); err != nil {
		return TravelAdvice{}, fmt.Errorf("%w: %v", ErrInvalidAdvice, err)
	}
	if err := a.Validate(); err != nil {
		return TravelAdvice{}, err
	}
	return a, nil
}

// Validate checks the required result fields.
func (a TravelAdvice) Validate() error {
	if a.Destination == "" {
		return fmt.Errorf("%w: destination is required", ErrInvalidAdvice)
	}
	if a.Reason == "" {
		return fmt.Errorf("%w: reason is required", ErrInvalidAdvice)
	}
	if a.Budget == "" {
		return fmt.Errorf("%w: budget is required", ErrInvalidAdvice)
	}
	if len(a.Tips) == 0 {
		return fmt.Errorf("%w: tips must not be empty", ErrInvalidAdvice)
	}
	for i, tip := range a.Tips {
		if tip == "" {
			return fmt.Errorf("%w: tips[%d] is empty", ErrInvalidAdvice, i)
		}
	}
	return nil
}

// GenericDestination is used when no catalogue city can be attached to advice.
const GenericDestination = "Various destinations"

// FallbackAdvice is returned when the model never produces a structured
// result: zero tool calls, an unknown tool, or an exhausted turn budget.
func FallbackAdvice() TravelAdvice {
	return TravelAdvice{
		Destination: GenericDestination,
		Reason: "We apologize, but we couldn't find specific information for your request. " +
			"Please try again with more details.",
		Budget: "Varies",
		Tips: []string{
			"Consider refining your search criteria",
			"Try a different destination or time frame",
			"Contact our support for more personalized assistance",
		},
	}
}

// RetryAdvice is the terminal result after all conversation attempts failed.
func RetryAdvice() TravelAdvice {
	return TravelAdvice{
		Destination: "Multiple destinations available",
		Reason:      "Please refine your query for more specific recommendations",
		Budget:      "Varies",
		Tips:        []string{"Try being more specific with your request"},
	}
}

// UnserviceableAdvice is the short-circuit result for destinations outside the
// service network. The reason deliberately carries an apology keyword.
func UnserviceableAdvice() TravelAdvice {
	return TravelAdvice{
		Destination: GenericDestination,
		Reason: "We're sorry, but that destination is currently unavailable in our network. " +
			"We are unable to arrange travel there.",
		Budget: "Varies",
		Tips: []string{
			"Browse our catalogue of serviced cities",
			"Try a destination we fly to",
			"Contact support for route updates",
		},
	}
}
