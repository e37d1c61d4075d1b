package dto

type CorrectTextRequest struct {
	Text string `json:"text" validate:"required"`
}

type TranslateTextRequest struct {
	Text     string `json:"text" validate:"required"`
	Language string `json:"language" validate:"required"`
}

type TextResponse struct {
	Text string `json:"text"`
}
