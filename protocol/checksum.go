package protocol

// Checksum returns the XOR of the message ID and all payload bytes
func Checksum(msg *Message) byte {
	sum := msg.ID
	for _, b := range msg.Payload {
		sum ^= b
	}
	return sum
}
