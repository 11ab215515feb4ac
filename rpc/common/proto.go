package common

import (
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// General fields
	Name     string `json:"name,omitempty"`     // Used for: Acquire (request and response)
	Token    string `json:"token,omitempty"`    // Used for: Update, Release (request), Acquire (response)
	Validity uint64 `json:"validity,omitempty"` // Lease validity in seconds. Used for: Acquire, Update
	Timeout  uint64 `json:"timeout,omitempty"`  // Acquire wait timeout in seconds, 0 means fail fast

	// Response only fields
	Ok  bool   `json:"ok,omitempty"`  // Used for: Acquire, Update, Release responses
	Err string `json:"err,omitempty"` // Empty if no error, otherwise contains the error message

	// Meta information
	Meta []byte `json:"meta,omitempty"` // Used for: Statistics response payload
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewAcquireRequest creates a new Acquire request
func NewAcquireRequest(name string, validity, timeout uint64) *Message {
	return &Message{
		MsgType:  MsgTAcquire,
		Name:     name,
		Validity: validity,
		Timeout:  timeout,
	}
}

// NewAcquireResponse creates a new Acquire response
func NewAcquireResponse(ok bool, name, token string) *Message {
	return &Message{
		MsgType: MsgTAcquire,
		Ok:      ok,
		Name:    name,
		Token:   token,
	}
}

// NewUpdateRequest creates a new Update request
func NewUpdateRequest(token string, validity uint64) *Message {
	return &Message{
		MsgType:  MsgTUpdate,
		Token:    token,
		Validity: validity,
	}
}

// NewUpdateResponse creates a new Update response
func NewUpdateResponse(ok bool) *Message {
	return &Message{
		MsgType: MsgTUpdate,
		Ok:      ok,
	}
}

// NewReleaseRequest creates a new Release request
func NewReleaseRequest(token string) *Message {
	return &Message{
		MsgType: MsgTRelease,
		Token:   token,
	}
}

// NewReleaseResponse creates a new Release response
func NewReleaseResponse(ok bool) *Message {
	return &Message{
		MsgType: MsgTRelease,
		Ok:      ok,
	}
}

// NewStatisticsRequest creates a new Statistics request
func NewStatisticsRequest() *Message {
	return &Message{
		MsgType: MsgTStatistics,
	}
}

// NewStatisticsResponse creates a new Statistics response.
// The meta payload carries the JSON encoded snapshot.
func NewStatisticsResponse(meta []byte, err error) *Message {
	msg := &Message{
		MsgType: MsgTStatistics,
		Ok:      true,
		Meta:    meta,
	}
	if err != nil {
		msg.Ok = false
		msg.Err = err.Error()
	}
	return msg
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Err:     err,
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTAcquire:
		return "acquire"
	case MsgTUpdate:
		return "update"
	case MsgTRelease:
		return "release"
	case MsgTStatistics:
		return "statistics"
	case MsgTError:
		return "error"
	case MsgTSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	// Convert string back to MessageType
	switch s {
	case "acquire":
		*t = MsgTAcquire
	case "update":
		*t = MsgTUpdate
	case "release":
		*t = MsgTRelease
	case "statistics":
		*t = MsgTStatistics
	case "error":
		*t = MsgTError
	case "success":
		*t = MsgTSuccess
	default:
		return fmt.Errorf("unknown message type: %s", s)
	}

	return nil
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTSuccess             // Indicates a successful operation
	MsgTError               // Indicates an error occurred

	// ILocksmith operations

	MsgTAcquire    // Acquire a lease on a named lock
	MsgTUpdate     // Extend the validity of a held lease
	MsgTRelease    // Release a held lease
	MsgTStatistics // Read the operation statistics
)
