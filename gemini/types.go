package gemini

import "encoding/json"

// Wire types of the Gemini REST API (v1beta). Only the fields this package
// reads or writes are declared.

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text             string            `json:"text,omitempty"`
	Thought          bool              `json:"thought,omitempty"`
	ThoughtSignature string            `json:"thoughtSignature,omitempty"`
	InlineData       *blob             `json:"inlineData,omitempty"`
	FileData         *fileData         `json:"fileData,omitempty"`
	FunctionCall     *functionCall     `json:"functionCall,omitempty"`
	FunctionResponse *functionResponse `json:"functionResponse,omitempty"`
}

type blob struct {
	MimeType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

type fileData struct {
	MimeType string `json:"mimeType,omitempty"`
	FileURI  string `json:"fileUri"`
}

type functionCall struct {
	ID   string          `json:"id,omitempty"`
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

type functionResponse struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

type functionDeclaration struct {
	Name                 string          `json:"name"`
	Description          string          `json:"description,omitempty"`
	ParametersJSONSchema json.RawMessage `json:"parametersJsonSchema,omitempty"`
}

type dynamicRetrievalConfig struct {
	Mode             string  `json:"mode"`
	DynamicThreshold float64 `json:"dynamicThreshold"`
}

type googleSearchRetrieval struct {
	DynamicRetrievalConfig dynamicRetrievalConfig `json:"dynamicRetrievalConfig"`
}

type fileSearch struct {
	FileSearchStoreNames []string `json:"fileSearchStoreNames"`
}

type tool struct {
	FunctionDeclarations  []functionDeclaration  `json:"functionDeclarations,omitempty"`
	GoogleSearch          *struct{}              `json:"googleSearch,omitempty"`
	GoogleSearchRetrieval *googleSearchRetrieval `json:"googleSearchRetrieval,omitempty"`
	URLContext            *struct{}              `json:"urlContext,omitempty"`
	FileSearch            *fileSearch            `json:"fileSearch,omitempty"`
}

type toolConfig struct {
	FunctionCallingConfig *functionCallingConfig `json:"functionCallingConfig,omitempty"`
}

type functionCallingConfig struct {
	Mode                 string   `json:"mode"`
	AllowedFunctionNames []string `json:"allowedFunctionNames,omitempty"`
}

type thinkingConfig struct {
	ThinkingBudget  *int `json:"thinkingBudget,omitempty"`
	IncludeThoughts bool `json:"includeThoughts,omitempty"`
}

type speechConfig struct {
	VoiceConfig struct {
		PrebuiltVoiceConfig struct {
			VoiceName string `json:"voiceName"`
		} `json:"prebuiltVoiceConfig"`
	} `json:"voiceConfig"`
}

type generationConfig struct {
	Temperature        *float64        `json:"temperature,omitempty"`
	TopP               *float64        `json:"topP,omitempty"`
	MaxOutputTokens    *int            `json:"maxOutputTokens,omitempty"`
	StopSequences      []string        `json:"stopSequences,omitempty"`
	Seed               *int            `json:"seed,omitempty"`
	PresencePenalty    *float64        `json:"presencePenalty,omitempty"`
	FrequencyPenalty   *float64        `json:"frequencyPenalty,omitempty"`
	ResponseMimeType   string          `json:"responseMimeType,omitempty"`
	ResponseJSONSchema json.RawMessage `json:"responseJsonSchema,omitempty"`
	ResponseModalities []string        `json:"responseModalities,omitempty"`
	SpeechConfig       *speechConfig   `json:"speechConfig,omitempty"`
	ThinkingConfig     *thinkingConfig `json:"thinkingConfig,omitempty"`
}

type generateContentRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	Tools             []tool            `json:"tools,omitempty"`
	ToolConfig        *toolConfig       `json:"toolConfig,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
	CachedContent     string            `json:"cachedContent,omitempty"`
}

type usageMetadata struct {
	PromptTokenCount        int `json:"promptTokenCount"`
	CandidatesTokenCount    int `json:"candidatesTokenCount"`
	TotalTokenCount         int `json:"totalTokenCount"`
	CachedContentTokenCount int `json:"cachedContentTokenCount"`
	ThoughtsTokenCount      int `json:"thoughtsTokenCount"`
}

// GroundingChunk is one source of a grounded answer.
type GroundingChunk struct {
	Web *struct {
		URI   string `json:"uri"`
		Title string `json:"title"`
	} `json:"web,omitempty"`
	RetrievedContext *struct {
		URI   string `json:"uri"`
		Title string `json:"title"`
		Text  string `json:"text"`
	} `json:"retrievedContext,omitempty"`
}

// GroundingMetadata is attached to responses that used search, grounding or
// file search. It is exposed in ChatResponse.Extra["grounding_metadata"].
type GroundingMetadata struct {
	WebSearchQueries  []string          `json:"webSearchQueries,omitempty"`
	GroundingChunks   []GroundingChunk  `json:"groundingChunks,omitempty"`
	GroundingSupports []json.RawMessage `json:"groundingSupports,omitempty"`
	SearchEntryPoint  *struct {
		RenderedContent string `json:"renderedContent"`
	} `json:"searchEntryPoint,omitempty"`
}

// URLContextMetadata reports which URLs the url_context tool fetched. It is
// exposed in ChatResponse.Extra["url_context_metadata"].
type URLContextMetadata struct {
	URLMetadata []struct {
		RetrievedURL       string `json:"retrievedUrl"`
		URLRetrievalStatus string `json:"urlRetrievalStatus"`
	} `json:"urlMetadata"`
}

type candidate struct {
	Content            *content            `json:"content,omitempty"`
	FinishReason       string              `json:"finishReason,omitempty"`
	GroundingMetadata  *GroundingMetadata  `json:"groundingMetadata,omitempty"`
	URLContextMetadata *URLContextMetadata `json:"urlContextMetadata,omitempty"`
}

type generateContentResponse struct {
	Candidates     []candidate `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
	UsageMetadata *usageMetadata `json:"usageMetadata,omitempty"`
	ModelVersion  string         `json:"modelVersion,omitempty"`
	ResponseID    string         `json:"responseId,omitempty"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Details []struct {
			Type       string `json:"@type"`
			Reason     string `json:"reason,omitempty"`
			RetryDelay string `json:"retryDelay,omitempty"`
		} `json:"details,omitempty"`
	} `json:"error"`
}
