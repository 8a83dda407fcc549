package model

// VirtualTryOnRequest is the predict payload of the Virtual Try-On API.
type VirtualTryOnRequest struct {
	Instances  []Instance `json:"instances"`
	Parameters Parameters `json:"parameters"`
}

type Instance struct {
	PersonImage   ImageInput   `json:"personImage"`
	ProductImages []ImageInput `json:"productImages"`
}

type ImageInput struct {
	Image EncodedImage `json:"image"`
}

type EncodedImage struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
}

type Parameters struct {
	BaseSteps        int           `json:"baseSteps"`
	PersonGeneration string        `json:"personGeneration"`
	SafetySetting    string        `json:"safetySetting"`
	SampleCount      int           `json:"sampleCount"`
	OutputOptions    OutputOptions `json:"outputOptions"`
}

type OutputOptions struct {
	MimeType string `json:"mimeType"`
	// 0 の場合は送信しない（PNG指定時はAPIが受け付けない）
	CompressionQuality int `json:"compressionQuality,omitempty"`
}
