package ipc

import (
	"encoding/json"
	"fmt"
)

// ProtocolVersion is the wire protocol version spoken between pickerd and
// the Lumocast app. Both sides reject frames with a different version.
const ProtocolVersion = 1

// ResponseKind discriminates the app's answer to a selection query.
type ResponseKind int

const (
	// KindSelection means the user has a confirmed capture source.
	KindSelection ResponseKind = iota
	// KindNoSelection means no source has been picked yet.
	KindNoSelection
	// KindError means the app hit an internal failure.
	KindError
)

// Geometry is the sub-rectangle of a region selection, in monitor
// coordinates.
type Geometry struct {
	X      int32  `json:"x"`
	Y      int32  `json:"y"`
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
}

// Selection describes what the user picked in the Lumocast app.
// Geometry is non-nil only for region selections.
type Selection struct {
	SourceType string    `json:"source_type"`
	SourceID   string    `json:"source_id"`
	Geometry   *Geometry `json:"geometry,omitempty"`
}

// Response is the decoded answer to a selection query. Exactly one of the
// three kinds applies; Selection is set only for KindSelection and Message
// only for KindError.
type Response struct {
	Kind      ResponseKind
	Selection *Selection
	Message   string
}

// wire frames; newline-delimited JSON on the unix socket

type requestFrame struct {
	Version int    `json:"version"`
	Method  string `json:"method"`
}

type responseFrame struct {
	Version    int       `json:"version"`
	Result     string    `json:"result"`
	SourceType string    `json:"source_type,omitempty"`
	SourceID   string    `json:"source_id,omitempty"`
	Geometry   *Geometry `json:"geometry,omitempty"`
	Message    string    `json:"message,omitempty"`
}

const methodGetSelection = "get_selection"

// decodeResponse parses one wire frame into a Response. Anything the frame
// grammar does not allow is an error so the caller can treat it as a
// transport failure.
func decodeResponse(data []byte) (*Response, error) {
	var frame responseFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, fmt.Errorf("malformed response frame: %w", err)
	}
	if frame.Version != ProtocolVersion {
		return nil, fmt.Errorf("unsupported protocol version %d", frame.Version)
	}

	switch frame.Result {
	case "selection":
		if frame.SourceID == "" {
			return nil, fmt.Errorf("selection frame missing source_id")
		}
		return &Response{
			Kind: KindSelection,
			Selection: &Selection{
				SourceType: frame.SourceType,
				SourceID:   frame.SourceID,
				Geometry:   frame.Geometry,
			},
		}, nil
	case "none":
		return &Response{Kind: KindNoSelection}, nil
	case "error":
		return &Response{Kind: KindError, Message: frame.Message}, nil
	default:
		return nil, fmt.Errorf("unknown result tag %q", frame.Result)
	}
}
