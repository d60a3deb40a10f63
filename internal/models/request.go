package models

import (
	"strconv"
	"strings"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Messages []Message `json:"messages"`
	Mode     string    `json:"mode"`
	Level    string    `json:"level"`
	// Type is sent by older clients and ignored.
	Type string `json:"type,omitempty"`
}

// implements the Validator interface
func (r *ChatRequest) Validate() error {
	mode, ok := ParseMode(r.Mode)
	if !ok {
		return &ErrorResponse{
			Code:    "invalid_mode",
			Message: "Mode must be one of: " + strings.Join(ModesList(), ", "),
		}
	}
	level, ok := ParseLevel(r.Level)
	if !ok {
		return &ErrorResponse{
			Code:    "invalid_level",
			Message: "Level must be one of: " + strings.Join(LevelsList(), ", "),
		}
	}
	r.Mode = string(mode)
	r.Level = string(level)

	var details []ValidationErrorDetail
	for i, msg := range r.Messages {
		if msg.Role != RoleUser && msg.Role != RoleAssistant {
			details = append(details, ValidationErrorDetail{
				Field:  "messages[" + strconv.Itoa(i) + "].role",
				Reason: "must be user or assistant",
			})
		}
	}
	if len(details) > 0 {
		return &ErrorResponse{
			Code:    "invalid_role",
			Message: "Message roles must be user or assistant",
			Details: details,
		}
	}
	return nil
}

// RecordRequest is the body of a completed interview submission.
type RecordRequest struct {
	Mode  string `json:"mode"`
	Level string `json:"level"`
	Score *int   `json:"score,omitempty"`
}

func (r *RecordRequest) Validate() error {
	mode, ok := ParseMode(r.Mode)
	if !ok {
		return &ErrorResponse{Code: "invalid_mode", Message: "Mode must be one of: " + strings.Join(ModesList(), ", ")}
	}
	level, ok := ParseLevel(r.Level)
	if !ok {
		return &ErrorResponse{Code: "invalid_level", Message: "Level must be one of: " + strings.Join(LevelsList(), ", ")}
	}
	if r.Score != nil && (*r.Score < 0 || *r.Score > 10) {
		return &ErrorResponse{Code: "invalid_score", Message: "Score must be between 0 and 10"}
	}
	r.Mode = string(mode)
	r.Level = string(level)
	return nil
}
