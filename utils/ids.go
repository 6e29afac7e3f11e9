package utils

import (
	"strconv"

	"github.com/sony/sonyflake"
)

var flake = sonyflake.NewSonyflake(sonyflake.Settings{})

// NextReceiptID returns a monotonic, process-unique receipt id for gateway
// order creation.
func NextReceiptID() (string, error) {
	id, err := flake.NextID()
	if err != nil {
		return "", err
	}
	return "rcpt_" + strconv.FormatUint(id, 10), nil
}
