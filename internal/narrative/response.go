package narrative

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/LavishGent/breedbase/internal/types"
)

// Response is the decoded reply of the generative API: Structured or FreeText.
type Response interface {
	markdown() string
}

// Structured is a JSON reply carrying the image as an encyclopedia file name.
type Structured struct {
	Markdown      string
	ImageFileName string
}

// FreeText is a plain Markdown reply.
type FreeText struct {
	Content string
}

func (s Structured) markdown() string { return s.Markdown }
func (f FreeText) markdown() string   { return f.Content }

type structuredReply struct {
	Markdown  string `json:"markdown"`
	ImageFile string `json:"image_file"`
}

// decodeResponse turns raw reply content into a Response. A structured reply
// that is not a JSON object with a markdown field is a ParseError.
func decodeResponse(content string, structured bool) (Response, error) {
	if !structured {
		return FreeText{Content: strings.TrimSpace(content)}, nil
	}

	var reply structuredReply
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &reply); err != nil {
		// The model may answer the marker in plain text even in JSON mode.
		if IsMissing(content) {
			return FreeText{Content: strings.TrimSpace(content)}, nil
		}
		return nil, types.NewParseError(op, err)
	}
	if strings.TrimSpace(reply.Markdown) == "" {
		return nil, types.NewParseError(op, errors.New("structured reply has no markdown"))
	}
	return Structured{
		Markdown:      strings.TrimSpace(reply.Markdown),
		ImageFileName: strings.TrimSpace(reply.ImageFile),
	}, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
