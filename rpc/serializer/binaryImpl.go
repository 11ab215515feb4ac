package serializer

import (
	"encoding/binary"
	"fmt"

	"github.com/locksmith-go/locksmith/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasName     byte = 1 << 0
	hasToken    byte = 1 << 1
	hasValidity byte = 1 << 2
	hasTimeout  byte = 1 << 3
	hasOk       byte = 1 << 4
	hasErr      byte = 1 << 5
	hasMeta     byte = 1 << 6
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	// Calculate total size needed
	totalSize := b.sizeBytes(msg)
	result := make([]byte, totalSize)

	// Write message type
	result[0] = byte(msg.MsgType)

	// Initialize flags byte
	var flags byte = 0

	// Set position for writing
	pos := 2 // Start after MsgType and flags

	// Handle Name
	if msg.Name != "" {
		flags |= hasName
		nameBytes := []byte(msg.Name)
		nameLen := len(nameBytes)

		// Write name length
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(nameLen))
		pos += 4

		// Write name data
		copy(result[pos:pos+nameLen], nameBytes)
		pos += nameLen
	}

	// Handle Token
	if msg.Token != "" {
		flags |= hasToken
		tokenBytes := []byte(msg.Token)
		tokenLen := len(tokenBytes)

		// Write token length
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(tokenLen))
		pos += 4

		// Write token data
		copy(result[pos:pos+tokenLen], tokenBytes)
		pos += tokenLen
	}

	// Handle Validity
	if msg.Validity > 0 {
		flags |= hasValidity
		binary.BigEndian.PutUint64(result[pos:pos+8], msg.Validity)
		pos += 8
	}

	// Handle Timeout
	if msg.Timeout > 0 {
		flags |= hasTimeout
		binary.BigEndian.PutUint64(result[pos:pos+8], msg.Timeout)
		pos += 8
	}

	// Handle Ok
	if msg.Ok {
		flags |= hasOk
		result[pos] = 1
		pos += 1
	}

	// Handle Err
	if msg.Err != "" {
		flags |= hasErr
		errBytes := []byte(msg.Err)
		errLen := len(errBytes)

		// Write error length
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(errLen))
		pos += 4

		// Write error data
		copy(result[pos:pos+errLen], errBytes)
		pos += errLen
	}

	// Handle Meta
	if msg.Meta != nil {
		flags |= hasMeta
		metaLen := len(msg.Meta)

		// Write meta length
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(metaLen))
		pos += 4

		// Write meta data
		if metaLen > 0 {
			copy(result[pos:pos+metaLen], msg.Meta)
			pos += metaLen
		}
	}

	// Set flags byte after knowing which fields are present
	result[1] = flags

	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	// Check minimum size (MsgType + flags)
	if len(data) < 2 {
		return fmt.Errorf("data too short for message header")
	}

	// Read message type
	msg.MsgType = common.MessageType(data[0])

	// Read flags
	flags := data[1]

	// Initialize read position
	pos := 2

	// Read Name if present
	if flags&hasName != 0 {
		if pos+4 > len(data) {
			return fmt.Errorf("data too short for name length")
		}

		// Read name length
		nameLen := binary.BigEndian.Uint32(data[pos : pos+4])
		pos += 4

		if pos+int(nameLen) > len(data) {
			return fmt.Errorf("data too short for name data")
		}

		// Read name data
		msg.Name = string(data[pos : pos+int(nameLen)])
		pos += int(nameLen)
	} else {
		msg.Name = ""
	}

	// Read Token if present
	if flags&hasToken != 0 {
		if pos+4 > len(data) {
			return fmt.Errorf("data too short for token length")
		}

		// Read token length
		tokenLen := binary.BigEndian.Uint32(data[pos : pos+4])
		pos += 4

		if pos+int(tokenLen) > len(data) {
			return fmt.Errorf("data too short for token data")
		}

		// Read token data
		msg.Token = string(data[pos : pos+int(tokenLen)])
		pos += int(tokenLen)
	} else {
		msg.Token = ""
	}

	// Read Validity if present
	if flags&hasValidity != 0 {
		if pos+8 > len(data) {
			return fmt.Errorf("data too short for Validity")
		}

		msg.Validity = binary.BigEndian.Uint64(data[pos : pos+8])
		pos += 8
	} else {
		msg.Validity = 0
	}

	// Read Timeout if present
	if flags&hasTimeout != 0 {
		if pos+8 > len(data) {
			return fmt.Errorf("data too short for Timeout")
		}

		msg.Timeout = binary.BigEndian.Uint64(data[pos : pos+8])
		pos += 8
	} else {
		msg.Timeout = 0
	}

	// Read Ok if present
	if flags&hasOk != 0 {
		if pos+1 > len(data) {
			return fmt.Errorf("data too short for Ok flag")
		}

		msg.Ok = data[pos] != 0
		pos += 1
	} else {
		msg.Ok = false
	}

	// Read Err if present
	if flags&hasErr != 0 {
		if pos+4 > len(data) {
			return fmt.Errorf("data too short for error length")
		}

		// Read error length
		errLen := binary.BigEndian.Uint32(data[pos : pos+4])
		pos += 4

		if pos+int(errLen) > len(data) {
			return fmt.Errorf("data too short for error data")
		}

		// Read error data
		msg.Err = string(data[pos : pos+int(errLen)])
		pos += int(errLen)
	} else {
		msg.Err = ""
	}

	// Read Meta if present
	if flags&hasMeta != 0 {
		if pos+4 > len(data) {
			return fmt.Errorf("data too short for meta length")
		}

		// Read meta length
		metaLen := binary.BigEndian.Uint32(data[pos : pos+4])
		pos += 4

		if pos+int(metaLen) > len(data) {
			return fmt.Errorf("data too short for meta data")
		}

		// Read meta data - create an empty slice (not nil) if length is 0
		// Allocate only if needed
		if msg.Meta == nil || cap(msg.Meta) < int(metaLen) {
			msg.Meta = make([]byte, metaLen)
		} else {
			msg.Meta = msg.Meta[:metaLen]
		}

		if metaLen > 0 {
			copy(msg.Meta, data[pos:pos+int(metaLen)])
		}
		pos += int(metaLen)
	} else {
		msg.Meta = nil
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// sizeBytes calculates the total size needed for serialization
func (b binarySerializerImpl) sizeBytes(msg common.Message) int {
	// 1 byte for MsgType + 1 byte for flags
	size := 2

	// Add sizes for fields that require length encoding
	if msg.Name != "" {
		size += 4 + len(msg.Name) // 4 bytes for length + name string
	}
	if msg.Token != "" {
		size += 4 + len(msg.Token) // 4 bytes for length + token string
	}
	if msg.Validity > 0 {
		size += 8 // uint64
	}
	if msg.Timeout > 0 {
		size += 8 // uint64
	}
	if msg.Ok {
		size += 1 // 1 byte for boolean
	}
	if msg.Err != "" {
		size += 4 + len(msg.Err) // 4 bytes for length + error string
	}
	if msg.Meta != nil {
		size += 4 + len(msg.Meta) // 4 bytes for length + meta bytes
	}

	return size
}
