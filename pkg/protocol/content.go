package protocol

import (
	"encoding/json"
	"fmt"
)

// ContentBlockType discriminates the content block variants
type ContentBlockType string

const (
	ContentTypeText     ContentBlockType = "text"
	ContentTypeImage    ContentBlockType = "image"
	ContentTypeAudio    ContentBlockType = "audio"
	ContentTypeResource ContentBlockType = "resource"
)

// ContentBlock is a tagged payload variant carried in push events, channel
// messages, and context injections. The wire form is discriminated by a
// "type" field; only the fields belonging to the active variant are emitted.
type ContentBlock struct {
	Type ContentBlockType `json:"type"`

	// Text variant
	Text string `json:"text,omitempty"`

	// Image and audio variants
	Data     string `json:"data,omitempty"`
	MimeType string `json:"mimeType,omitempty"`

	// Image, audio, and resource variants
	URI string `json:"uri,omitempty"`
}

// TextContent creates a text content block
func TextContent(text string) ContentBlock {
	return ContentBlock{Type: ContentTypeText, Text: text}
}

// ImageContent creates an image content block carrying inline base64 data
func ImageContent(data, mimeType string) ContentBlock {
	return ContentBlock{Type: ContentTypeImage, Data: data, MimeType: mimeType}
}

// AudioContent creates an audio content block carrying inline base64 data
func AudioContent(data, mimeType string) ContentBlock {
	return ContentBlock{Type: ContentTypeAudio, Data: data, MimeType: mimeType}
}

// ResourceContent creates a resource reference content block
func ResourceContent(uri string) ContentBlock {
	return ContentBlock{Type: ContentTypeResource, URI: uri}
}

// Validate checks that the block carries a known type and the fields its
// variant requires
func (c ContentBlock) Validate() error {
	switch c.Type {
	case ContentTypeText:
		return nil
	case ContentTypeImage, ContentTypeAudio:
		if c.Data == "" && c.URI == "" {
			return fmt.Errorf("%s content requires data or uri", c.Type)
		}
		return nil
	case ContentTypeResource:
		if c.URI == "" {
			return fmt.Errorf("resource content requires a uri")
		}
		return nil
	default:
		return fmt.Errorf("unknown content block type %q", c.Type)
	}
}

// UnmarshalJSON implements json.Unmarshaler, rejecting unknown variants
func (c *ContentBlock) UnmarshalJSON(data []byte) error {
	type alias ContentBlock
	var block alias
	if err := json.Unmarshal(data, &block); err != nil {
		return err
	}
	switch block.Type {
	case ContentTypeText, ContentTypeImage, ContentTypeAudio, ContentTypeResource:
		*c = ContentBlock(block)
		return nil
	default:
		return fmt.Errorf("unknown content block type %q", block.Type)
	}
}
