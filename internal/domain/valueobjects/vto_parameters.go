package valueobjects

import (
	"fmt"
)

type PersonGeneration string
type SafetySetting string

const (
	AllowAdult PersonGeneration = "allow_adult"
	AllowAll   PersonGeneration = "allow_all"
	DontAllow  PersonGeneration = "dont_allow"
)

const (
	BlockMediumAndAbove SafetySetting = "block_medium_and_above"
	BlockLowAndAbove    SafetySetting = "block_low_and_above"
	BlockOnlyHigh       SafetySetting = "block_only_high"
	BlockNone           SafetySetting = "block_none"
)

// VTOParameters configures the Vertex virtual try-on predict backend.
// They are resolved once from configuration; callers of the orchestrator never see them.
type VTOParameters struct {
	baseSteps        int
	personGeneration PersonGeneration
	safetySetting    SafetySetting
	sampleCount      int
	outputFormat     ImageFormat
}

func NewVTOParameters(
	baseSteps int,
	personGeneration PersonGeneration,
	safetySetting SafetySetting,
	sampleCount int,
	outputFormat ImageFormat,
) (*VTOParameters, error) {
	if baseSteps < 1 || baseSteps > 100 {
		return nil, fmt.Errorf("baseSteps must be between 1 and 100, got %d", baseSteps)
	}

	if sampleCount < 1 || sampleCount > 4 {
		return nil, fmt.Errorf("sampleCount must be between 1 and 4, got %d", sampleCount)
	}

	switch personGeneration {
	case AllowAdult, AllowAll, DontAllow:
	default:
		return nil, fmt.Errorf("unsupported personGeneration %q", personGeneration)
	}

	if outputFormat != PNG && outputFormat != JPEG {
		return nil, fmt.Errorf("outputFormat must be png or jpeg, got %q", outputFormat)
	}

	return &VTOParameters{
		baseSteps:        baseSteps,
		personGeneration: personGeneration,
		safetySetting:    safetySetting,
		sampleCount:      sampleCount,
		outputFormat:     outputFormat,
	}, nil
}

func DefaultVTOParameters() *VTOParameters {
	params, _ := NewVTOParameters(
		32,
		AllowAdult,
		BlockMediumAndAbove,
		1,
		PNG,
	)
	return params
}

func (p *VTOParameters) BaseSteps() int {
	return p.baseSteps
}

func (p *VTOParameters) PersonGeneration() PersonGeneration {
	return p.personGeneration
}

func (p *VTOParameters) SafetySetting() SafetySetting {
	return p.safetySetting
}

func (p *VTOParameters) SampleCount() int {
	return p.sampleCount
}

func (p *VTOParameters) OutputFormat() ImageFormat {
	return p.outputFormat
}
