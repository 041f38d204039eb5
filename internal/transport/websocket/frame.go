package websocket

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var errConnectionClosed = errors.New("connection closed by client")

func (that *Server) sendMessage(bufrw *bufio.ReadWriter, action string, payload ResponsePayload) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	response := Message{
		Action:  action,
		Payload: payloadBytes,
	}
	responseBytes, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	f := frame{
		isFin:   true,
		opCode:  opText,
		length:  uint64(len(responseBytes)),
		payload: responseBytes,
	}

	return writeFrame(bufrw, f)
}

func writeFrame(bufrw *bufio.ReadWriter, frameData frame) error {
	buf := make([]byte, 2, 2+8+len(frameData.payload))
	buf[0] |= frameData.opCode

	if frameData.isFin {
		buf[0] |= 0x80
	}

	switch {
	case frameData.length < 126:
		buf[1] |= byte(frameData.length)
	case frameData.length < 1<<16:
		buf[1] |= 126
		size := make([]byte, 2)
		binary.BigEndian.PutUint16(size, uint16(frameData.length))
		buf = append(buf, size...)
	default:
		buf[1] |= 127
		size := make([]byte, 8)
		binary.BigEndian.PutUint64(size, frameData.length)
		buf = append(buf, size...)
	}

	buf = append(buf, frameData.payload...)

	if _, err := bufrw.Write(buf); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}

	if err := bufrw.Flush(); err != nil {
		return fmt.Errorf("failed to flush buffer: %w", err)
	}

	return nil
}

// readFrame - reads one client frame, unmasking the payload.
// Returns errConnectionClosed on a close frame.
func readFrame(bufrw *bufio.ReadWriter) (*frame, error) {
	header := make([]byte, 2)
	if _, err := io.ReadFull(bufrw, header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	frameData := &frame{
		isFin:  header[0]&0x80 != 0,
		opCode: header[0] & 0x0f,
	}

	if frameData.opCode == opClose {
		return nil, errConnectionClosed
	}

	masked := header[1]&0x80 != 0

	length, err := readPayloadLength(bufrw, header[1]&0x7f)
	if err != nil {
		return nil, err
	}
	frameData.length = length

	var mask [4]byte
	if masked {
		if _, err = io.ReadFull(bufrw, mask[:]); err != nil {
			return nil, fmt.Errorf("failed to read mask: %w", err)
		}
	}

	frameData.payload = make([]byte, length)
	if _, err = io.ReadFull(bufrw, frameData.payload); err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}

	if masked {
		for i := range frameData.payload {
			frameData.payload[i] ^= mask[i%4]
		}
	}

	return frameData, nil
}

func readPayloadLength(bufrw *bufio.ReadWriter, payloadLen byte) (uint64, error) {
	if payloadLen < 126 {
		return uint64(payloadLen), nil
	}

	if payloadLen == 126 {
		length := make([]byte, 2)
		if _, err := io.ReadFull(bufrw, length); err != nil {
			return 0, fmt.Errorf("failed to read payload length: %w", err)
		}
		return uint64(binary.BigEndian.Uint16(length)), nil
	}

	length := make([]byte, 8)
	if _, err := io.ReadFull(bufrw, length); err != nil {
		return 0, fmt.Errorf("failed to read payload length: %w", err)
	}
	return binary.BigEndian.Uint64(length), nil
}
